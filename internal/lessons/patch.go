package lessons

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/joao-fontenele/lessons-booking/internal/coerce"
	"github.com/joao-fontenele/lessons-booking/internal/domain"
)

// Patch is a partial set of lesson fields, applied as a merge: only the
// keys present are written.
type Patch map[string]any

// legacyFields maps old field names onto the canonical ones they are stored
// under. A canonical key in the same patch takes precedence.
var legacyFields = map[string]string{
	"topic": "subject",
	"space": "spaces",
}

// SetDocument validates the patch and returns the $set document for it.
// Identifier keys are dropped, spaces and price are coerced to numbers and
// text fields must be strings or null.
func (p Patch) SetDocument() (bson.M, error) {
	set := bson.M{}
	for key, value := range p {
		if key == "_id" || key == "id" {
			continue
		}
		if err := checkKey(key); err != nil {
			return nil, err
		}

		field := key
		if canonical, ok := legacyFields[key]; ok {
			if _, both := p[canonical]; both {
				continue
			}
			field = canonical
		}

		switch field {
		case "spaces":
			n, err := coerce.Count(key, value)
			if err != nil {
				return nil, err
			}
			set[field] = n
		case "price":
			n, err := coerce.Number(key, value)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, domain.NewValidationError(key, "must not be negative")
			}
			set[field] = n
		case "subject", "location", "description", "image":
			switch value.(type) {
			case string, nil:
				set[field] = value
			default:
				return nil, domain.NewValidationError(key, "must be a string")
			}
		default:
			set[field] = coerce.JSONValue(value)
		}
	}

	if len(set) == 0 {
		return nil, domain.NewValidationError("", "no lesson fields to update")
	}
	return set, nil
}

// checkKey rejects names the store would treat as operators or paths.
func checkKey(key string) error {
	switch {
	case key == "":
		return domain.NewValidationError(key, "field name must not be empty")
	case strings.HasPrefix(key, "$"):
		return domain.NewValidationError(key, "field name must not start with $")
	case strings.Contains(key, "."):
		return domain.NewValidationError(key, "field name must not contain a dot")
	}
	return nil
}
