package lessons

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func decodeLesson(t *testing.T, doc bson.M) lessonDocument {
	t.Helper()

	data, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal document: %v", err)
	}

	var out lessonDocument
	if err := bson.Unmarshal(data, &out); err != nil {
		t.Fatalf("failed to unmarshal document: %v", err)
	}
	return out
}

func TestLessonDocument_ToLesson(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("legacy and canonical documents render identically", func(t *testing.T) {
		canonical := decodeLesson(t, bson.M{
			"_id": id, "subject": "Music", "location": "Hendon", "price": 100,
			"spaces": int32(5), "description": "Piano basics", "image": "images/music.png",
		})
		legacy := decodeLesson(t, bson.M{
			"_id": id, "topic": "Music", "location": "Hendon", "price": 100.0,
			"space": int64(5), "description": "Piano basics", "image": "images/music.png",
		})

		if got, want := legacy.toLesson(), canonical.toLesson(); got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("canonical fields win over legacy ones", func(t *testing.T) {
		doc := decodeLesson(t, bson.M{
			"_id": id, "subject": "Art", "topic": "Old Art", "spaces": 2, "space": 9,
		})

		lesson := doc.toLesson()
		if lesson.Subject != "Art" {
			t.Errorf("expected subject Art, got %s", lesson.Subject)
		}
		if lesson.Spaces != 2 {
			t.Errorf("expected spaces 2, got %d", lesson.Spaces)
		}
	})

	t.Run("derives id and creation time from the identifier", func(t *testing.T) {
		lesson := decodeLesson(t, bson.M{"_id": id, "subject": "Chess"}).toLesson()

		if lesson.ID != id.Hex() {
			t.Errorf("expected id %s, got %s", id.Hex(), lesson.ID)
		}
		if !lesson.AddedAt.Equal(id.Timestamp()) {
			t.Errorf("expected addedAt %v, got %v", id.Timestamp(), lesson.AddedAt)
		}
	})

	t.Run("reads numeric strings", func(t *testing.T) {
		lesson := decodeLesson(t, bson.M{"_id": id, "price": "80.5", "spaces": "4"}).toLesson()

		if lesson.Price != 80.5 {
			t.Errorf("expected price 80.5, got %v", lesson.Price)
		}
		if lesson.Spaces != 4 {
			t.Errorf("expected spaces 4, got %d", lesson.Spaces)
		}
	})

	t.Run("tolerates non-string text fields", func(t *testing.T) {
		lesson := decodeLesson(t, bson.M{
			"_id": id, "subject": int32(5), "topic": "Pottery", "location": int64(5),
			"description": true, "image": bson.M{"a": 1}, "spaces": 3,
		}).toLesson()

		if lesson.Subject != "Pottery" {
			t.Errorf("expected fallback to topic, got %q", lesson.Subject)
		}
		if lesson.Location != "" || lesson.Description != "" || lesson.Image != "" {
			t.Errorf("expected empty text fields, got %+v", lesson)
		}
		if lesson.Spaces != 3 {
			t.Errorf("expected spaces 3, got %d", lesson.Spaces)
		}
	})

	t.Run("null subject falls back to topic", func(t *testing.T) {
		lesson := decodeLesson(t, bson.M{"_id": id, "subject": nil, "topic": "Chess"}).toLesson()

		if lesson.Subject != "Chess" {
			t.Errorf("expected subject Chess, got %q", lesson.Subject)
		}
	})
}
