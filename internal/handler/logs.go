package handler

import (
	"net/http"
	"os"

	"palletkiosk/internal/logger"
)

// ShowLogsHandler serves the log file of the {level} path value as text/plain.
func ShowLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level := r.PathValue("level")
		if !logger.HasLevel(level) {
			http.NotFound(w, r)
			return
		}

		filePath := logger.Path(level)
		if _, err := os.Stat(filePath); filePath == "" || os.IsNotExist(err) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Log file not found: " + level + ".log"))
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")

		http.ServeFile(w, r, filePath)
	}
}

// ClearLogsHandler truncates the log file of the {level} path value.
func ClearLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level := r.PathValue("level")
		if !logger.HasLevel(level) {
			http.NotFound(w, r)
			return
		}

		if err := logger.CleanLogs(level); err != nil {
			logger.Error("Failed to clear %s log: %v", level, err)
			http.Error(w, "Failed to clear log", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
