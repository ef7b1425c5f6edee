package handler

import (
	"net/http"

	"github.com/go-mail-verify/internal/application/mail"
	"github.com/go-mail-verify/internal/domain"
)

// EmailHandler serves the direct send endpoints.
type EmailHandler struct {
	svc mail.Service
}

func NewEmailHandler(svc mail.Service) *EmailHandler { return &EmailHandler{svc: svc} }

func (h *EmailHandler) SendCustom(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomEmail
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SendCustomEmail(r.Context(), req); err != nil {
		httpError(w, r, err, "failed to send email")
		return
	}
	writeJSON(w, http.StatusOK, SuccessEnvelope{Success: true})
}

func (h *EmailHandler) SendTemplate(w http.ResponseWriter, r *http.Request) {
	var req domain.TemplateEmail
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SendTemplateEmail(r.Context(), req); err != nil {
		httpError(w, r, err, "failed to send template email")
		return
	}
	writeJSON(w, http.StatusOK, SuccessEnvelope{Success: true})
}
