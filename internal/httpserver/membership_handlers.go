package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guildcache/internal/domain"
)

type syncMembershipsRequest struct {
	Memberships []*domain.GroupMembership `json:"memberships" validate:"dive,required"`
}

type membershipRequest struct {
	Member *bool `json:"member" validate:"required"`
}

func (h *handler) handleListMemberships() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ms, err := h.social.GroupMemberships(r.Context(), CurrentUserID(r))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ms)
	}
}

func (h *handler) handleSyncMemberships() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prune, err := pruneParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var req syncMembershipsRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		res, err := h.sync.SyncMemberships(r.Context(), CurrentUserID(r), prune, req.Memberships)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *handler) handleGetMembership() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := h.social.GroupMembership(r.Context(), CurrentUserID(r), chi.URLParam(r, "groupID"))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (h *handler) handleUpdateMembership() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req membershipRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		if err := h.social.UpdateMembership(r.Context(), CurrentUserID(r), chi.URLParam(r, "groupID"), *req.Member); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
