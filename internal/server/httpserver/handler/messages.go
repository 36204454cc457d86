package handler

import (
	"net/http"
	"strconv"

	"github.com/yndnr/petyard-go/internal/core/domain"
	"github.com/yndnr/petyard-go/internal/core/service"
	"github.com/yndnr/petyard-go/pkg/crypto/adaptive"
)

// handleSendMessage handles POST /users/{user}/messages/{peer}.
// The plaintext is sealed before it enters the store.
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := h.decode(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	sealed, err := adaptive.Seal(h.cipher, req.Message)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var msg domain.DirectMessage
	err = h.update(r, func(repo *service.Repository) error {
		m, err := repo.SendMessage(r.PathValue("user"), r.PathValue("peer"), sealed)
		msg = m
		return err
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, MessageResponse{DirectMessage: msg})
}

// handleMessages handles GET /users/{user}/messages/{peer}.
// With ?decrypt=true every payload is opened; a payload that fails to open
// fails the whole request with 422.
func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	decrypt, _ := strconv.ParseBool(r.URL.Query().Get("decrypt"))

	var msgs []domain.DirectMessage
	err := h.view(r, func(repo *service.Repository) error {
		m, err := repo.Messages(r.PathValue("user"), r.PathValue("peer"))
		msgs = m
		return err
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = MessageResponse{DirectMessage: m}
		if !decrypt {
			continue
		}
		var text string
		if err := adaptive.Open(h.cipher, m.Payload, &text); err != nil {
			h.handleServiceError(w, r, domain.ErrDecrypt.WithCause(err))
			return
		}
		out[i].Text = &text
	}
	h.writeJSON(w, r, http.StatusOK, out)
}
