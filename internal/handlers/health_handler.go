package handlers

import (
	"net/http"
	"time"

	"cashvelo/internal/webutil"
)

// Health reports that the server is up
func Health(w http.ResponseWriter, r *http.Request) {
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
