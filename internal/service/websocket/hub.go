package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"palletkiosk/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 2 * time.Second

	// maxPending bounds the reliable queue while Run is not draining it.
	maxPending = 256
)

type registration struct {
	client  *websocket.Conn
	welcome []byte
}

// HubService fans kiosk events out to every connected display. All writes to
// client connections happen on the Run goroutine.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan registration
	unregister chan *websocket.Conn
	done       chan struct{}
	wake       chan struct{}
	pending    [][]byte // Reliable messages, guarded by mutex
	count      atomic.Int32
	dropped    atomic.Uint64
	mutex      sync.Mutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan registration),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		wake:       make(chan struct{}, 1),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then closes all clients.
func (h *HubService) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			h.count.Store(0)
			return

		case reg := <-h.register:
			h.mutex.Lock()
			h.clients[reg.client] = true
			h.mutex.Unlock()
			h.count.Add(1)
			if reg.welcome != nil {
				h.send(reg.client, reg.welcome)
			}
			h.logger.Info("Display connected. Total: %d", h.count.Load())

		case client := <-h.unregister:
			h.remove(client)
			h.logger.Info("Display disconnected. Total: %d", h.count.Load())

		case <-h.wake:
			h.mutex.Lock()
			messages := h.pending
			h.pending = nil
			h.mutex.Unlock()

			for _, message := range messages {
				h.sendAll(message)
			}

		case message := <-h.broadcast:
			h.sendAll(message)
		}
	}
}

func (h *HubService) sendAll(message []byte) {
	h.mutex.Lock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		h.send(client, message)
	}
}

// send writes one message and drops the client on failure.
func (h *HubService) send(client *websocket.Conn, message []byte) {
	client.SetWriteDeadline(time.Now().Add(writeWait))
	if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
		h.logger.Error("Error sending message: %v", err)
		h.remove(client)
	}
}

func (h *HubService) remove(client *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.Close()
		h.count.Add(-1)
	}
}

// Register adds a display; welcome, when non-nil, is sent to it first.
func (h *HubService) Register(client *websocket.Conn, welcome []byte) {
	select {
	case h.register <- registration{client: client, welcome: welcome}:
	case <-h.done:
		client.Close()
	}
}

func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for all displays. It never blocks: when the
// queue is full the message is dropped.
func (h *HubService) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		if h.dropped.Add(1) == 1 {
			h.logger.Warning("Display queue full - dropping events")
		}
	}
}

// BroadcastReliable queues a message that must not be lost to a full
// broadcast queue, such as a lock or its release. It never blocks.
func (h *HubService) BroadcastReliable(message []byte) {
	h.mutex.Lock()
	if len(h.pending) >= maxPending {
		h.pending = h.pending[1:]
		h.logger.Warning("Reliable display queue full - dropping oldest event")
	}
	h.pending = append(h.pending, message)
	h.mutex.Unlock()

	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *HubService) GetClientCount() int {
	return int(h.count.Load())
}
