package handler

import (
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SuccessEnvelope acknowledges a completed send.
type SuccessEnvelope struct {
	Success bool `json:"success"`
}

// IssueEnvelope is the send-code response.
type IssueEnvelope struct {
	Success        bool     `json:"success"`
	EmailsSent     []string `json:"emailsSent"`
	ExistingEmails []string `json:"existingEmails"`
}

// RedeemEnvelope is the verify-code response. Token is set only when signing is configured.
type RedeemEnvelope struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
	Token   string `json:"token,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decodeJSON reads a single JSON object from the body, rejecting unknown trailing data.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}
