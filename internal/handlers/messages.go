package handlers

import (
	"net/http"
	"time"

	"github.com/pliu/socialboard/internal/apierror"
	"github.com/pliu/socialboard/internal/middleware"
	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
	"github.com/pliu/socialboard/internal/ws"
)

type SendMessageRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type MarkReadRequest struct {
	FromID string `json:"fromId"`
}

type MessageHandler struct {
	Store store.Store
	Hub   Broadcaster
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.Store.ListMessages(storeCtx(r), middleware.UserID(r.Context()))
	if err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// Send stores a message to the user named by "to" and pushes it to the rooms of
// both parties.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.Write(w, err)
		return
	}

	ctx := storeCtx(r)
	sender, err := currentUser(ctx, h.Store, r)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	recipient, err := h.Store.GetUserByUsername(ctx, req.To)
	if err != nil {
		apierror.Write(w, lookupError(err, "Recipient not found"))
		return
	}
	if req.Message == "" {
		apierror.Write(w, apierror.BadRequest("Message is required"))
		return
	}

	senderID := sender.ID
	msg := &models.Message{
		FromID:    senderID,
		ToID:      recipient.ID,
		Message:   req.Message,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.CreateMessage(ctx, msg); err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}

	sent, err := h.Store.GetMessage(ctx, msg.ID)
	if err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}

	h.Hub.Emit(recipient.ID, ws.EventReceiveMessage, sent)
	h.Hub.Emit(senderID, ws.EventReceiveMessage, sent)

	writeJSON(w, http.StatusOK, sent)
}

// MarkRead flags every unread message from fromId to the caller as read.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req MarkReadRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.Write(w, err)
		return
	}

	if _, err := h.Store.MarkRead(storeCtx(r), req.FromID, middleware.UserID(r.Context())); err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}
	apierror.WriteMessage(w, http.StatusOK, "Messages marked as read")
}
