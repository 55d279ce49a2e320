package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"palletkiosk/internal/config"
	"palletkiosk/internal/logger"
	"palletkiosk/internal/service"
	"palletkiosk/internal/service/capture"
)

type camerasResponse struct {
	Selected string          `json:"selected"`
	Cameras  []config.Camera `json:"cameras"`
}

// GetCamerasHandler lists configured cameras. Stream URLs are never exposed.
func GetCamerasHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := camerasResponse{
			Selected: manager.Status().Camera,
			Cameras:  manager.Cameras().Cameras,
		}
		writeJSON(w, http.StatusOK, data, logger)
	}
}

// SelectCameraHandler handles POST /api/cameras/select?name=... by switching acquisition.
func SelectCameraHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "Camera name required", http.StatusBadRequest)
			return
		}

		err := manager.SwitchCamera(name)
		switch {
		case errors.Is(err, config.ErrUnknownCamera):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case errors.Is(err, capture.ErrInvalidEndpoint):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		case err != nil:
			logger.Error("Camera switch failed: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, manager.Status(), logger)
	}
}

// StatusHandler returns the kiosk status.
func StatusHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, manager.Status(), logger)
	}
}

// ResetHandler releases an active lock.
func ResetHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		released := manager.Reset()
		if released {
			logger.Info("Indicator reset by operator")
		}
		writeJSON(w, http.StatusOK, map[string]bool{"released": released}, logger)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
