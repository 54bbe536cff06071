package lessons

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	textFields    = []string{"subject", "topic", "location", "description"}
	numericFields = []string{"price", "spaces", "space"}
)

// NormalizeQuery trims and lowercases a raw search token.
func NormalizeQuery(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// SearchFilter builds the lesson filter for a raw search token. An empty
// token yields an empty filter that matches every lesson.
//
// Text fields match on a case-insensitive substring. When the token is a
// number, exact equality on price and spaces is OR-ed in as well.
func SearchFilter(raw string) bson.D {
	q := NormalizeQuery(raw)
	if q == "" {
		return bson.D{}
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}

	clauses := bson.A{}
	for _, field := range textFields {
		clauses = append(clauses, bson.D{{Key: field, Value: pattern}})
	}

	if n, ok := parseNumber(q); ok {
		for _, field := range numericFields {
			clauses = append(clauses, bson.D{{Key: field, Value: n}})
		}
	}

	return bson.D{{Key: "$or", Value: clauses}}
}

func parseNumber(q string) (float64, bool) {
	n, err := strconv.ParseFloat(q, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
