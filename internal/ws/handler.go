package ws

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"guildcache/internal/live"
)

const writeWait = 10 * time.Second

func deadline() time.Time {
	return time.Now().Add(writeWait)
}

// TokenVerifier resolves a bearer token to a user ID.
type TokenVerifier interface {
	UserID(token string) (string, error)
}

// Opener builds the live query a stream serves for an authenticated user.
type Opener[T any] func(r *http.Request, userID string) (*live.Query[T], error)

type wsAuthError struct {
	status int
	msg    string
}

func (e wsAuthError) Error() string {
	return e.msg
}

// frame is the envelope of every message sent on a stream.
type frame struct {
	Type    string `json:"type"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}
	if _, ok := allowed["*"]; ok {
		return func(r *http.Request) bool {
			return true
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			// Native clients do not send an Origin header.
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractTokenFromWSRequest(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		if token != "" {
			return token, nil
		}
	}

	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			token := parts[1]
			if token != "" {
				return token, nil
			}
		}
	}

	return "", wsAuthError{status: http.StatusUnauthorized, msg: "missing bearer token"}
}

// Stream returns a handler that upgrades to a websocket and pushes a
// snapshot frame every time the live query of the caller changes. Clients
// authenticate with a bearer token in the Authorization header or as the
// second Sec-WebSocket-Protocol value after "bearer". The stream ends when the
// client goes away, the query fails or the hub is closed.
func Stream[T any](
	hub *Hub,
	tokens TokenVerifier,
	allowedOrigins []string,
	log *zap.Logger,
	open Opener[T],
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
		Subprotocols: []string{
			"bearer",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		tokenStr, err := extractTokenFromWSRequest(r)
		if err != nil {
			if authErr, ok := err.(wsAuthError); ok {
				http.Error(w, authErr.msg, authErr.status)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		userID, err := tokens.UserID(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		query, err := open(r, userID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hub.Register(userID, conn)
		defer hub.Unregister(userID, conn)

		sub := query.Subscribe(r.Context())
		defer sub.Close()

		// Incoming frames are ignored; the read loop only notices the client
		// going away.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		l := log.With(zap.String("user_id", userID), zap.String("path", r.URL.Path))
		l.Debug("stream opened")
		for {
			select {
			case snap, ok := <-sub.Updates():
				if !ok {
					if err := sub.Err(); err != nil {
						l.Warn("stream query failed", zap.Error(err))
						_ = conn.SetWriteDeadline(deadline())
						_ = conn.WriteJSON(frame{Type: "error", Message: "query failed"})
					}
					return
				}
				_ = conn.SetWriteDeadline(deadline())
				if err := conn.WriteJSON(frame{Type: "snapshot", Data: snap}); err != nil {
					l.Debug("stream write failed", zap.Error(err))
					return
				}
			case <-gone:
				l.Debug("stream closed by client")
				return
			}
		}
	}
}
