package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guildcache/internal/domain"
)

type rsvpRequest struct {
	Needed *bool `json:"needed" validate:"required"`
}

func (h *handler) handleGetMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := h.social.User(r.Context(), CurrentUserID(r))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// handleSaveMe stores the profile of the caller. The id in the body is
// ignored in favour of the token subject.
func (h *handler) handleSaveMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u domain.User
		u.ID = CurrentUserID(r)
		if !h.decodeBody(w, r, &u) {
			return
		}
		u.ID = CurrentUserID(r)
		if err := h.sync.SaveUser(r.Context(), &u); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, &u)
	}
}

func (h *handler) handleUserGroups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := h.social.UserGroups(r.Context(), CurrentUserID(r), r.URL.Query().Get("type"))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

func (h *handler) handleUpdateRSVP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rsvpRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		if err := h.social.UpdateRSVPNeeded(r.Context(), CurrentUserID(r), *req.Needed); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *handler) handleRejectInvitation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.social.RejectGroupInvitation(r.Context(), CurrentUserID(r), chi.URLParam(r, "groupID")); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
