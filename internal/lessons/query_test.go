package lessons

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func orClauses(t *testing.T, filter bson.D) bson.A {
	t.Helper()

	if len(filter) != 1 || filter[0].Key != "$or" {
		t.Fatalf("expected a single $or filter, got %v", filter)
	}
	clauses, ok := filter[0].Value.(bson.A)
	if !ok {
		t.Fatalf("expected $or value to be bson.A, got %T", filter[0].Value)
	}
	return clauses
}

func TestSearchFilter(t *testing.T) {
	t.Run("empty and blank tokens match everything", func(t *testing.T) {
		for _, q := range []string{"", "   ", "\t"} {
			if filter := SearchFilter(q); len(filter) != 0 {
				t.Errorf("SearchFilter(%q): expected empty filter, got %v", q, filter)
			}
		}
	})

	t.Run("text token matches text fields case-insensitively", func(t *testing.T) {
		clauses := orClauses(t, SearchFilter("  Music "))

		if len(clauses) != len(textFields) {
			t.Fatalf("expected %d clauses, got %d", len(textFields), len(clauses))
		}
		for i, field := range textFields {
			want := bson.D{{Key: field, Value: primitive.Regex{Pattern: "music", Options: "i"}}}
			if !reflect.DeepEqual(clauses[i], want) {
				t.Errorf("clause %d: expected %v, got %v", i, want, clauses[i])
			}
		}
	})

	t.Run("case does not change the filter", func(t *testing.T) {
		if !reflect.DeepEqual(SearchFilter("MUSIC"), SearchFilter("music")) {
			t.Error("expected identical filters for MUSIC and music")
		}
	})

	t.Run("numeric token adds exact matches on price and spaces", func(t *testing.T) {
		clauses := orClauses(t, SearchFilter("100"))

		if len(clauses) != len(textFields)+len(numericFields) {
			t.Fatalf("expected %d clauses, got %d", len(textFields)+len(numericFields), len(clauses))
		}
		for i, field := range numericFields {
			want := bson.D{{Key: field, Value: 100.0}}
			if got := clauses[len(textFields)+i]; !reflect.DeepEqual(got, want) {
				t.Errorf("expected %v, got %v", want, got)
			}
		}
	})

	t.Run("regex metacharacters are matched literally", func(t *testing.T) {
		clauses := orClauses(t, SearchFilter("c++ (intro)"))

		want := primitive.Regex{Pattern: `c\+\+ \(intro\)`, Options: "i"}
		if got := clauses[0].(bson.D)[0].Value; got != want {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("non-finite numbers are treated as text", func(t *testing.T) {
		for _, q := range []string{"nan", "inf"} {
			if clauses := orClauses(t, SearchFilter(q)); len(clauses) != len(textFields) {
				t.Errorf("SearchFilter(%q): expected text clauses only, got %d", q, len(clauses))
			}
		}
	})
}
