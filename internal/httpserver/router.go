package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"guildcache/internal/domain"
	"guildcache/internal/live"
	"guildcache/internal/service"
	"guildcache/internal/ws"
)

// LiveSource provides the live queries served over websocket streams.
type LiveSource interface {
	WatchGroupChat(groupID string) *live.Query[[]*domain.ChatMessage]
	WatchInboxConversations(userID string) *live.Query[[]*domain.InboxConversation]
	WatchGroupMemberships(userID string) *live.Query[[]*domain.GroupMembership]
}

// Deps are the collaborators of the HTTP API.
type Deps struct {
	AppName     string
	CORSOrigins []string

	Sync    *service.SyncService
	Social  *service.SocialService
	Live    LiveSource
	Tokens  TokenVerifier
	Streams *ws.Hub
	Log     *zap.Logger
}

// handler bundles what the route handlers share.
type handler struct {
	sync     *service.SyncService
	social   *service.SocialService
	validate *validator.Validate
	log      *zap.Logger
}

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	h := &handler{
		sync:     d.Sync,
		social:   d.Social,
		validate: validator.New(),
		log:      d.Log,
	}

	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "app": d.AppName})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(AuthMiddleware(d.Tokens, d.Log))

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.handleListGroups())
			r.Put("/", h.handleSyncGroups())
			r.Get("/public", h.handleListPublicGuilds())

			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", h.handleGetGroup())
				r.Get("/exists", h.handleGroupExists())
				r.Get("/chat", h.handleGroupChat())
				r.Put("/chat", h.handleSyncGroupChat())
				r.Get("/members", h.handleGroupMembers())
				r.Put("/members", h.handleSyncGroupMembers())
				r.Delete("/quest", h.handleRemoveQuest())
				r.Put("/quest/active", h.handleSetQuestActivity())
			})
		})

		r.Route("/memberships", func(r chi.Router) {
			r.Get("/", h.handleListMemberships())
			r.Put("/", h.handleSyncMemberships())
			r.Get("/{groupID}", h.handleGetMembership())
			r.Put("/{groupID}", h.handleUpdateMembership())
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/", h.handleGetMe())
			r.Put("/", h.handleSaveMe())
			r.Get("/groups", h.handleUserGroups())
			r.Put("/quest/rsvp", h.handleUpdateRSVP())
			r.Delete("/invitations/{groupID}", h.handleRejectInvitation())
		})

		r.Route("/inbox", func(r chi.Router) {
			r.Get("/conversations", h.handleListConversations())
			r.Put("/conversations", h.handleSyncConversations())
			r.Get("/{partnerID}/messages", h.handleInboxMessages())
			r.Put("/{partnerID}/messages", h.handleSyncInboxMessages())
		})

		r.Route("/messages/{messageID}", func(r chi.Router) {
			r.Get("/", h.handleGetMessage())
			r.Delete("/", h.handleDeleteMessage())
			r.Put("/like", h.handleLikeMessage())
		})
	})

	// WebSocket live streams
	r.Route("/ws", func(r chi.Router) {
		r.Get("/groups/{groupID}/chat", ws.Stream(d.Streams, d.Tokens, d.CORSOrigins, d.Log,
			func(r *http.Request, _ string) (*live.Query[[]*domain.ChatMessage], error) {
				return d.Live.WatchGroupChat(chi.URLParam(r, "groupID")), nil
			}))
		r.Get("/inbox/conversations", ws.Stream(d.Streams, d.Tokens, d.CORSOrigins, d.Log,
			func(_ *http.Request, userID string) (*live.Query[[]*domain.InboxConversation], error) {
				return d.Live.WatchInboxConversations(userID), nil
			}))
		r.Get("/memberships", ws.Stream(d.Streams, d.Tokens, d.CORSOrigins, d.Log,
			func(_ *http.Request, userID string) (*live.Query[[]*domain.GroupMembership], error) {
				return d.Live.WatchGroupMemberships(userID), nil
			}))
	})

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain sentinel errors to status codes.
func (h *handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		h.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody decodes a JSON body into dst and validates it.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
