// Package mailer is a development mail sink. It accepts the messages the
// booking notifier sends, logs them and keeps the most recent ones in memory
// for inspection.
package mailer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"sync"
	"time"
)

const defaultCapacity = 100

type Message struct {
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sentAt"`
}

type Handler struct {
	logger *slog.Logger

	mu       sync.Mutex
	sent     []Message
	capacity int
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		capacity: defaultCapacity,
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := mail.ParseAddress(req.To); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid recipient")
		return
	}
	if strings.TrimSpace(req.Subject) == "" {
		h.writeError(w, http.StatusBadRequest, "subject is required")
		return
	}

	h.record(Message{To: req.To, Subject: req.Subject, Body: req.Body, SentAt: time.Now().UTC()})
	h.logger.Info("email sent", "to", req.To, "subject", req.Subject)

	h.writeJSON(w, http.StatusOK, sendResponse{Status: "sent"})
}

// HandleSent lists captured messages, newest first.
func (h *Handler) HandleSent(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	out := make([]Message, len(h.sent))
	for i, m := range h.sent {
		out[len(h.sent)-1-i] = m
	}
	h.mu.Unlock()

	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) record(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sent = append(h.sent, m)
	if len(h.sent) > h.capacity {
		h.sent = h.sent[len(h.sent)-h.capacity:]
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
