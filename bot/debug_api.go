package bot

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"guildgreeter/domain/sessions"
)

// DebugResponse represents the response of a debug endpoint
type DebugResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SessionStats is the live session count served by /debug/sessions
type SessionStats struct {
	Total  int            `json:"total"`
	ByGame map[string]int `json:"by_game"`
}

// StartDebugAPI starts an internal HTTP API exposing health and live
// session counts
func (b *Bot) StartDebugAPI(addr string) *http.Server {
	server := &http.Server{
		Addr:         addr,
		Handler:      debugHandler(b.casino.Sessions()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Debug API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Debug API server error: %v", err)
		}
	}()
	return server
}

func debugHandler(manager *sessions.Manager) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/debug/sessions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondWithError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		stats := SessionStats{Total: manager.Len(), ByGame: make(map[string]int)}
		for game, n := range manager.CountByGame() {
			stats.ByGame[string(game)] = n
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DebugResponse{Success: true, Data: stats})
	})

	return mux
}

func respondWithError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(DebugResponse{
		Success: false,
		Error:   message,
	})
}
