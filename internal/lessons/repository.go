package lessons

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/joao-fontenele/lessons-booking/internal/domain"
)

const CollectionName = "lessons"

type LessonRepository struct {
	coll *mongo.Collection
}

func NewLessonRepository(db *mongo.Database) *LessonRepository {
	return &LessonRepository{coll: db.Collection(CollectionName)}
}

func (r *LessonRepository) ListAll(ctx context.Context) ([]domain.Lesson, error) {
	return r.find(ctx, bson.D{})
}

func (r *LessonRepository) Search(ctx context.Context, query string) ([]domain.Lesson, error) {
	return r.find(ctx, SearchFilter(query))
}

func (r *LessonRepository) find(ctx context.Context, filter bson.D) ([]domain.Lesson, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find lessons: %w", err)
	}

	var docs []lessonDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode lessons: %w", err)
	}

	return toLessons(docs), nil
}

func (r *LessonRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error) {
	var doc lessonDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find lesson %s: %w", id.Hex(), err)
	}

	lesson := doc.toLesson()
	return &lesson, nil
}

// Update applies the patch with $set and returns the lesson as stored after
// the update. Unknown ids report domain.ErrNotFound; nothing is upserted.
func (r *LessonRepository) Update(ctx context.Context, id primitive.ObjectID, patch Patch) (*domain.Lesson, error) {
	set, err := patch.SetDocument()
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(false)

	var doc lessonDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update lesson %s: %w", id.Hex(), err)
	}

	lesson := doc.toLesson()
	return &lesson, nil
}

// Reserve decrements the lesson's spaces by n in a single conditional
// update. It fails with domain.ErrInsufficientSpaces when fewer than n
// spaces remain. Legacy documents keep their count in "space"; the result is
// always written to "spaces" as a number, including for counts that were
// stored as numeric strings.
func (r *LessonRepository) Reserve(ctx context.Context, id primitive.ObjectID, n int) (*domain.Lesson, error) {
	current := availableSpaces()

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "$expr", Value: bson.D{{Key: "$gte", Value: bson.A{current, n}}}},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "spaces", Value: bson.D{{Key: "$subtract", Value: bson.A{current, n}}}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc lessonDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		lesson := doc.toLesson()
		return &lesson, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("reserve lesson %s: %w", id.Hex(), err)
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrInsufficientSpaces
}

// availableSpaces evaluates a lesson's space count as a long, reading the
// legacy field when the canonical one is missing. Values that do not convert
// evaluate to null, which never satisfies a $gte against a number.
func availableSpaces() bson.D {
	raw := bson.D{{Key: "$ifNull", Value: bson.A{"$spaces", "$space"}}}
	asDouble := bson.D{{Key: "$convert", Value: bson.D{
		{Key: "input", Value: raw},
		{Key: "to", Value: "double"},
		{Key: "onError", Value: nil},
		{Key: "onNull", Value: nil},
	}}}
	return bson.D{{Key: "$convert", Value: bson.D{
		{Key: "input", Value: asDouble},
		{Key: "to", Value: "long"},
		{Key: "onError", Value: nil},
		{Key: "onNull", Value: nil},
	}}}
}

// DeleteAll removes every lesson and reports how many were removed.
func (r *LessonRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("delete lessons: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *LessonRepository) InsertMany(ctx context.Context, lessons []domain.NewLesson) (int, error) {
	if len(lessons) == 0 {
		return 0, nil
	}

	docs := make([]any, 0, len(lessons))
	for _, lesson := range lessons {
		docs = append(docs, lesson)
	}

	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert lessons: %w", err)
	}
	return len(res.InsertedIDs), nil
}
