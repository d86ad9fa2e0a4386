package api

import (
	"net/http"

	"cloud-drive/internal/auth"
	"cloud-drive/internal/websocket"
)

// ServeWsHandler upgrades to a websocket that receives this user's
// export_progress and nodes_changed events. Browsers cannot set headers on
// the handshake, so the access token comes in ?token=.
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	if s.wsHub == nil {
		http.Error(w, "Event stream unavailable", http.StatusServiceUnavailable)
		return
	}

	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		http.Error(w, "token query parameter required", http.StatusUnauthorized)
		return
	}

	claims, err := auth.VerifyJWT(tokenString, s.config.JWT.Secret)
	if err != nil {
		log.Debug("ws connection attempt with invalid token", "error", err)
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn, claims.UserID)
	s.wsHub.Register <- client

	go client.ReadPump()
	go client.WritePump()
}
