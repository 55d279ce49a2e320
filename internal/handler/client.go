package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"palletkiosk/internal/dto"
	"palletkiosk/internal/logger"
	"palletkiosk/internal/service"
	hub "palletkiosk/internal/service/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// KioskWebsocketHandler connects a kiosk display. The display first receives the
// current state, then every event; it may send camera selection and reset commands.
func KioskWebsocketHandler(manager *service.Manager, hub *hub.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		hub.Register(connection, manager.Welcome())
		defer hub.Unregister(connection)

		for {
			_, data, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Display disconnected normally")
				} else {
					logger.Error("Display disconnected with error: %v", err)
				}
				break
			}
			handleCommand(manager, logger, data)
		}
	}
}

func handleCommand(manager *service.Manager, logger *logger.Logger, data []byte) {
	var cmd dto.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		logger.Warning("Ignoring malformed display command: %v", err)
		return
	}

	switch cmd.Action {
	case dto.CommandSelectCamera:
		if err := manager.SwitchCamera(cmd.Camera); err != nil {
			logger.Error("Camera switch to %q failed: %v", cmd.Camera, err)
		}
	case dto.CommandReset:
		manager.Reset()
	default:
		logger.Warning("Unknown display command %q", cmd.Action)
	}
}
