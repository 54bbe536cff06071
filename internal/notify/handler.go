// Package notify turns order.created events into booking confirmation mails.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/lessons-booking/internal/domain"
)

type NotificationHandler struct {
	emailServiceURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewNotificationHandler(emailServiceURL string, client *http.Client, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		emailServiceURL: strings.TrimRight(emailServiceURL, "/"),
		httpClient:      client,
		logger:          logger,
	}
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Handle processes one order.created payload. Orders placed without an
// email address are acknowledged without sending anything.
func (h *NotificationHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	if event.Email == "" {
		h.logger.Info("order has no email, skipping confirmation", "order_id", event.OrderID)
		return nil
	}

	if err := h.sendEmail(ctx, confirmation(event)); err != nil {
		h.logger.Error("failed to send booking confirmation", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send booking confirmation: %w", err)
	}

	h.logger.Info("booking confirmation sent", "order_id", event.OrderID, "items", len(event.Items))
	return nil
}

func confirmation(event domain.OrderCreatedEvent) emailRequest {
	spaces := 0
	for _, item := range event.Items {
		spaces += item.Spaces
	}

	return emailRequest{
		To:      event.Email,
		Subject: "Booking Confirmation: " + event.OrderID,
		Body: fmt.Sprintf("Hi %s, your booking %s for %d space(s) across %d lesson(s) has been received.",
			event.Name, event.OrderID, spaces, len(event.Items)),
	}
}

func (h *NotificationHandler) sendEmail(ctx context.Context, body emailRequest) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
