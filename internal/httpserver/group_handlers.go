package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guildcache/internal/domain"
)

type syncGroupsRequest struct {
	Groups []*domain.Group `json:"groups" validate:"dive,required"`
}

type syncMembersRequest struct {
	Members []*domain.Member `json:"members" validate:"dive,required"`
}

type questActivityRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *handler) handleListGroups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := h.social.Groups(r.Context(), r.URL.Query().Get("type"))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

func (h *handler) handleSyncGroups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req syncGroupsRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		res, err := h.sync.SyncGroups(r.Context(), req.Groups)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *handler) handleListPublicGuilds() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := h.social.PublicGuilds(r.Context())
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

func (h *handler) handleGetGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := h.social.Group(r.Context(), chi.URLParam(r, "groupID"))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func (h *handler) handleGroupExists() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exists, err := h.social.DoesGroupExist(r.Context(), chi.URLParam(r, "groupID"))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
	}
}

func (h *handler) handleGroupMembers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := h.social.GroupMembers(r.Context(), chi.URLParam(r, "groupID"))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, members)
	}
}

func (h *handler) handleSyncGroupMembers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prune, err := pruneParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var req syncMembersRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		res, err := h.sync.SyncGroupMembers(r.Context(), chi.URLParam(r, "groupID"), prune, req.Members)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *handler) handleRemoveQuest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.social.RemoveQuest(r.Context(), chi.URLParam(r, "groupID")); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *handler) handleSetQuestActivity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questActivityRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		if err := h.social.SetQuestActivity(r.Context(), chi.URLParam(r, "groupID"), *req.Active); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
