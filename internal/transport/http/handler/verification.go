package handler

import (
	"net/http"

	"github.com/go-mail-verify/internal/application/verification"
	"github.com/go-mail-verify/internal/domain"
	"github.com/go-mail-verify/internal/pkg/validate"
)

// VerificationHandler serves the send-code and verify-code endpoints.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueCodesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "a list of recipients is required")
		return
	}
	res, err := h.svc.IssueCodes(r.Context(), req.Recipients)
	if err != nil {
		httpError(w, r, err, "failed to send verification codes")
		return
	}
	writeJSON(w, http.StatusOK, IssueEnvelope{
		Success:        true,
		EmailsSent:     res.EmailsSent,
		ExistingEmails: res.ExistingEmails,
	})
}

func (h *VerificationHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req domain.RedeemCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "both recipient and code are required")
		return
	}
	res, err := h.svc.RedeemCode(r.Context(), req.Recipient, req.Code)
	if err != nil {
		httpError(w, r, err, "failed to verify code")
		return
	}
	writeJSON(w, http.StatusOK, RedeemEnvelope{Success: true, UserID: res.UserID, Token: res.Token})
}
