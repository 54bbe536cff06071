package lessons

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joao-fontenele/lessons-booking/internal/domain"
)

// lessonDocument mirrors a stored lesson, including the legacy field names
// older documents were written with.
type lessonDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Subject     bson.RawValue      `bson:"subject,omitempty"`
	Topic       bson.RawValue      `bson:"topic,omitempty"`
	Location    bson.RawValue      `bson:"location,omitempty"`
	Price       bson.RawValue      `bson:"price,omitempty"`
	Spaces      bson.RawValue      `bson:"spaces,omitempty"`
	Space       bson.RawValue      `bson:"space,omitempty"`
	Description bson.RawValue      `bson:"description,omitempty"`
	Image       bson.RawValue      `bson:"image,omitempty"`
}

// toLesson is the single mapping from stored documents to the response
// shape. Canonical fields win over legacy ones when both are present.
func (d lessonDocument) toLesson() domain.Lesson {
	lesson := domain.Lesson{
		ID:          d.ID.Hex(),
		Location:    rawString(d.Location),
		Description: rawString(d.Description),
		Image:       rawString(d.Image),
		AddedAt:     d.ID.Timestamp().UTC(),
	}

	if d.Subject.Type == bson.TypeString {
		lesson.Subject = d.Subject.StringValue()
	} else {
		lesson.Subject = rawString(d.Topic)
	}

	if price, ok := rawNumber(d.Price); ok {
		lesson.Price = price
	}

	if spaces, ok := rawNumber(d.Spaces); ok {
		lesson.Spaces = int(spaces)
	} else if space, ok := rawNumber(d.Space); ok {
		lesson.Spaces = int(space)
	}

	return lesson
}

func toLessons(docs []lessonDocument) []domain.Lesson {
	out := make([]domain.Lesson, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toLesson())
	}
	return out
}

// rawString returns v when it holds a string. Other types read as empty so
// one malformed document cannot fail a whole listing.
func rawString(v bson.RawValue) string {
	if v.Type == bson.TypeString {
		return v.StringValue()
	}
	return ""
}

// rawNumber reads a numeric value regardless of the BSON type it was stored
// with. Strings are accepted because documents written before spaces were
// coerced may hold "4" instead of 4.
func rawNumber(v bson.RawValue) (float64, bool) {
	switch v.Type {
	case bson.TypeDouble:
		return v.Double(), true
	case bson.TypeInt32:
		return float64(v.Int32()), true
	case bson.TypeInt64:
		return float64(v.Int64()), true
	case bson.TypeDecimal128:
		f, err := strconv.ParseFloat(v.Decimal128().String(), 64)
		return f, err == nil
	case bson.TypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.StringValue()), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
