package lessons

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/lessons-booking/internal/coerce"
	"github.com/joao-fontenele/lessons-booking/internal/domain"
)

var meter = otel.Meter("lessons")

// LessonStore is the persistence the lesson endpoints need.
// *LessonRepository satisfies it.
type LessonStore interface {
	ListAll(ctx context.Context) ([]domain.Lesson, error)
	Search(ctx context.Context, query string) ([]domain.Lesson, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error)
	Update(ctx context.Context, id primitive.ObjectID, patch Patch) (*domain.Lesson, error)
	Reserve(ctx context.Context, id primitive.ObjectID, n int) (*domain.Lesson, error)
}

type Handler struct {
	store    LessonStore
	logger   *slog.Logger
	searches metric.Int64Counter
	updates  metric.Int64Counter
}

func NewHandler(store LessonStore, logger *slog.Logger) (*Handler, error) {
	searches, err := meter.Int64Counter("lessons.searches",
		metric.WithDescription("Number of lesson searches"),
	)
	if err != nil {
		return nil, err
	}

	updates, err := meter.Int64Counter("lessons.updates",
		metric.WithDescription("Number of lesson updates and reservations"),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		store:    store,
		logger:   logger,
		searches: searches,
		updates:  updates,
	}, nil
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.store.ListAll(r.Context())
	if err != nil {
		h.writeFailure(w, err, "failed to list lessons")
		return
	}

	h.logger.Info("lessons listed", "count", len(lessons))
	h.writeJSON(w, http.StatusOK, lessons)
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := NormalizeQuery(r.URL.Query().Get("q"))

	lessons, err := h.store.Search(r.Context(), q)
	if err != nil {
		h.writeFailure(w, err, "failed to search lessons", "q", q)
		return
	}

	h.searches.Add(r.Context(), 1, metric.WithAttributes(attribute.Bool("empty_query", q == "")))
	h.logger.Info("lessons searched", "q", q, "count", len(lessons))
	h.writeJSON(w, http.StatusOK, lessons)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := coerce.ObjectID("id", r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, err, "invalid lesson id")
		return
	}

	lesson, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.writeFailure(w, err, "failed to get lesson", "lesson_id", id.Hex())
		return
	}

	h.writeJSON(w, http.StatusOK, lesson)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := coerce.ObjectID("id", r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, err, "invalid lesson id")
		return
	}

	var patch Patch
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}

	lesson, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		h.writeFailure(w, err, "failed to update lesson", "lesson_id", id.Hex())
		return
	}

	h.updates.Add(r.Context(), 1, metric.WithAttributes(attribute.String("kind", "patch")))
	h.logger.Info("lesson updated", "lesson_id", lesson.ID, "spaces", lesson.Spaces)
	h.writeJSON(w, http.StatusOK, lesson)
}

type reserveRequest struct {
	Spaces any `json:"spaces"`
}

func (h *Handler) HandleReserve(w http.ResponseWriter, r *http.Request) {
	id, err := coerce.ObjectID("id", r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, err, "invalid lesson id")
		return
	}

	var req reserveRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}

	n, err := coerce.Count("spaces", req.Spaces)
	if err == nil && n == 0 {
		err = domain.NewValidationError("spaces", "must be at least 1")
	}
	if err != nil {
		h.writeFailure(w, err, "invalid reservation")
		return
	}

	lesson, err := h.store.Reserve(r.Context(), id, n)
	if err != nil {
		h.writeFailure(w, err, "failed to reserve lesson spaces", "lesson_id", id.Hex(), "spaces", n)
		return
	}

	h.updates.Add(r.Context(), 1, metric.WithAttributes(attribute.String("kind", "reserve")))
	h.logger.Info("lesson spaces reserved", "lesson_id", lesson.ID, "reserved", n, "remaining", lesson.Spaces)
	h.writeJSON(w, http.StatusOK, lesson)
}

const (
	codeValidation   = "validation_error"
	codeInvalidID    = "invalid_id"
	codeNotFound     = "not_found"
	codeInsufficient = "insufficient_spaces"
	codeInternal     = "internal_error"
)

// writeFailure maps an error onto the response taxonomy. Only store and
// infrastructure failures are logged.
func (h *Handler) writeFailure(w http.ResponseWriter, err error, msg string, attrs ...any) {
	var idErr *domain.InvalidIDError
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &idErr):
		h.writeError(w, http.StatusBadRequest, codeInvalidID, idErr.Error())
	case errors.As(err, &vErr):
		h.writeError(w, http.StatusBadRequest, codeValidation, vErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, codeNotFound, "lesson not found")
	case errors.Is(err, domain.ErrInsufficientSpaces):
		h.writeError(w, http.StatusConflict, codeInsufficient, "insufficient spaces")
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
