package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joao-fontenele/lessons-booking/internal/coerce"
	"github.com/joao-fontenele/lessons-booking/internal/domain"
)

type createOrderRequest struct {
	Name  string          `json:"name"`
	Phone string          `json:"phone"`
	Email string          `json:"email"`
	Items json.RawMessage `json:"items"`
}

// NewOrder validates a booking request and builds the order to persist.
// Lesson availability is not checked here; spaces are taken separately
// through the lesson endpoints.
func NewOrder(req createOrderRequest, now time.Time) (*domain.Order, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, domain.NewValidationError("phone", "is required")
	}

	rawItems, err := decodeItems(req.Items)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(rawItems))
	for i, raw := range rawItems {
		item, err := parseItem(i, raw)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &domain.Order{
		Name:      name,
		Phone:     phone,
		Email:     strings.TrimSpace(req.Email),
		Items:     items,
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}, nil
}

func decodeItems(data json.RawMessage) ([]map[string]any, error) {
	invalid := domain.NewValidationError("items", "must be a non-empty array")

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, invalid
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var items []map[string]any
	if err := dec.Decode(&items); err != nil || len(items) == 0 {
		return nil, invalid
	}
	return items, nil
}

// parseItem reads one line item. The space count comes from "spaces", or
// from the older "quantity" field, and is 0 when neither is sent.
func parseItem(i int, raw map[string]any) (domain.OrderItem, error) {
	if raw == nil {
		return domain.OrderItem{}, domain.NewValidationError(fmt.Sprintf("items[%d]", i), "must be an object")
	}

	lessonID, err := coerce.ObjectID(fmt.Sprintf("items[%d].lessonId", i), raw["lessonId"])
	if err != nil {
		return domain.OrderItem{}, err
	}

	var spaces int
	if v, ok := raw["spaces"]; ok && v != nil {
		spaces, err = coerce.Count(fmt.Sprintf("items[%d].spaces", i), v)
	} else if v, ok := raw["quantity"]; ok && v != nil {
		spaces, err = coerce.Count(fmt.Sprintf("items[%d].quantity", i), v)
	}
	if err != nil {
		return domain.OrderItem{}, err
	}

	return domain.OrderItem{LessonID: lessonID.Hex(), Spaces: spaces}, nil
}
