package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/lessons-booking/internal/coerce"
	"github.com/joao-fontenele/lessons-booking/internal/domain"
)

var meter = otel.Meter("orders")

// OrderStore is implemented by *OrderRepository.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

// EventPublisher is implemented by *messaging.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Handler struct {
	store     OrderStore
	publisher EventPublisher
	logger    *slog.Logger
	created   metric.Int64Counter
	now       func() time.Time
}

// NewHandler builds the order endpoints. publisher may be nil, in which case
// no order.created events are emitted.
func NewHandler(store OrderStore, publisher EventPublisher, logger *slog.Logger) (*Handler, error) {
	created, err := meter.Int64Counter("orders.created",
		metric.WithDescription("Number of orders created"),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		store:     store,
		publisher: publisher,
		logger:    logger,
		created:   created,
		now:       time.Now,
	}, nil
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}

	order, err := NewOrder(req, h.now())
	if err != nil {
		h.writeFailure(w, err, "invalid order")
		return
	}

	if err := h.store.Create(r.Context(), order); err != nil {
		h.writeFailure(w, err, "failed to create order")
		return
	}

	h.created.Add(r.Context(), 1, metric.WithAttributes(attribute.Int("items", len(order.Items))))

	if h.publisher != nil {
		event := domain.OrderCreatedEvent{
			OrderID:   order.ID,
			Name:      order.Name,
			Email:     order.Email,
			Items:     order.Items,
			Timestamp: order.CreatedAt,
		}
		if err := h.publisher.Publish(r.Context(), order.ID, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order created", "order_id", order.ID, "items", len(order.Items))
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := coerce.ObjectID("id", r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, err, "invalid order id")
		return
	}

	order, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.writeFailure(w, err, "failed to get order", "order_id", id.Hex())
		return
	}

	h.logger.Info("order retrieved", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.List(r.Context())
	if err != nil {
		h.writeFailure(w, err, "failed to list orders")
		return
	}

	h.logger.Info("orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
}

const (
	codeValidation = "validation_error"
	codeInvalidID  = "invalid_id"
	codeNotFound   = "not_found"
	codeInternal   = "internal_error"
)

func (h *Handler) writeFailure(w http.ResponseWriter, err error, msg string, attrs ...any) {
	var idErr *domain.InvalidIDError
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &idErr):
		h.writeError(w, http.StatusBadRequest, codeInvalidID, idErr.Error())
	case errors.As(err, &vErr):
		h.writeError(w, http.StatusBadRequest, codeValidation, vErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, codeNotFound, "order not found")
	default:
		h.logger.Error(msg, append([]any{"error", err}, attrs...)...)
		h.writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, map[string]string{"error": message, "code": code})
}
