package route

import (
	"net/http"
	"os"
	"path/filepath"

	"palletkiosk/internal/config"
	"palletkiosk/internal/handler"
	"palletkiosk/internal/logger"
	"palletkiosk/internal/middleware"
	"palletkiosk/internal/service"
	"palletkiosk/internal/service/websocket"
)

// dynamicHTMLHandler serves /path as <static>/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" {
			path = "/index"
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+path)+".html")

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers the kiosk display routes, the operator API behind the
// authentication middleware, and static file serving.
func SetupRoutes(manager *service.Manager, hub *websocket.HubService, preview http.Handler,
	auth *middleware.Auth, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()
	admin := func(h http.HandlerFunc) http.Handler { return auth.Require(h) }

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDirectory))))

	// Kiosk display
	mux.HandleFunc("GET /ws", handler.KioskWebsocketHandler(manager, hub, logger))
	if preview != nil {
		mux.Handle("GET /stream", preview)
	}
	mux.HandleFunc("GET /api/status", handler.StatusHandler(manager, logger))
	mux.HandleFunc("GET /api/cameras", handler.GetCamerasHandler(manager, logger))

	// Operator endpoints
	mux.Handle("POST /api/cameras/select", admin(handler.SelectCameraHandler(manager, logger)))
	mux.Handle("POST /api/reset", admin(handler.ResetHandler(manager, logger)))
	mux.Handle("GET /admin", admin(dynamicHTMLHandler(cfg.StaticDirectory)))

	// Log endpoints
	mux.Handle("GET /logs/{level}", admin(handler.ShowLogsHandler(logger)))
	mux.Handle("POST /logs/{level}/clear", admin(handler.ClearLogsHandler(logger)))

	// Auth endpoints
	mux.HandleFunc("POST /auth/login", handler.LoginHandler(cfg, auth, logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler)

	// Automatic HTML handler mapping for example: /login -> <static>/login.html
	mux.HandleFunc("GET /", dynamicHTMLHandler(cfg.StaticDirectory))

	return mux
}
