package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guildcache/internal/domain"
)

type syncMessagesRequest struct {
	Messages []*domain.ChatMessage `json:"messages" validate:"dive,required"`
}

type syncConversationsRequest struct {
	Conversations []*domain.InboxConversation `json:"conversations" validate:"dive,required"`
}

type likeRequest struct {
	Liked *bool `json:"liked" validate:"required"`
}

func (h *handler) handleGroupChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := h.social.GroupChat(r.Context(), chi.URLParam(r, "groupID"))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

func (h *handler) handleSyncGroupChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prune, err := pruneParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var req syncMessagesRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		res, err := h.sync.SyncGroupChat(r.Context(), chi.URLParam(r, "groupID"), prune, req.Messages)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *handler) handleGetMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := h.social.ChatMessage(r.Context(), chi.URLParam(r, "messageID"))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

func (h *handler) handleDeleteMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.social.DeleteMessage(r.Context(), chi.URLParam(r, "messageID")); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *handler) handleLikeMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req likeRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		msg, err := h.social.LikeMessage(r.Context(), chi.URLParam(r, "messageID"), CurrentUserID(r), *req.Liked)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

func (h *handler) handleInboxMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := h.social.InboxMessages(r.Context(), CurrentUserID(r), chi.URLParam(r, "partnerID"))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

func (h *handler) handleSyncInboxMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var req syncMessagesRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		res, err := h.sync.SyncInboxMessages(r.Context(), CurrentUserID(r), chi.URLParam(r, "partnerID"), page, req.Messages)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *handler) handleListConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convs, err := h.social.InboxConversations(r.Context(), CurrentUserID(r))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, convs)
	}
}

func (h *handler) handleSyncConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req syncConversationsRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		res, err := h.sync.SyncInboxConversations(r.Context(), CurrentUserID(r), req.Conversations)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
