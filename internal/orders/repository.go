package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/joao-fontenele/lessons-booking/internal/domain"
)

const CollectionName = "orders"

type orderItemDocument struct {
	LessonID primitive.ObjectID `bson:"lessonId"`
	Spaces   int                `bson:"spaces"`
}

type orderDocument struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Name      string              `bson:"name"`
	Phone     string              `bson:"phone"`
	Email     string              `bson:"email"`
	Items     []orderItemDocument `bson:"items"`
	CreatedAt time.Time           `bson:"createdAt"`
}

func (d orderDocument) toOrder() domain.Order {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.OrderItem{LessonID: item.LessonID.Hex(), Spaces: item.Spaces})
	}

	return domain.Order{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Phone:     d.Phone,
		Email:     d.Email,
		Items:     items,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(CollectionName)}
}

// Create inserts the order and sets its ID.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	doc := orderDocument{
		Name:      order.Name,
		Phone:     order.Phone,
		Email:     order.Email,
		Items:     make([]orderItemDocument, 0, len(order.Items)),
		CreatedAt: order.CreatedAt,
	}
	for _, item := range order.Items {
		lessonID, err := primitive.ObjectIDFromHex(item.LessonID)
		if err != nil {
			return &domain.InvalidIDError{Field: "lessonId", Value: item.LessonID}
		}
		doc.Items = append(doc.Items, orderItemDocument{LessonID: lessonID, Spaces: item.Spaces})
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert order: unexpected id type %T", res.InsertedID)
	}
	order.ID = id.Hex()
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	var doc orderDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find order %s: %w", id.Hex(), err)
	}

	order := doc.toOrder()
	return &order, nil
}

// List returns orders newest first.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.toOrder())
	}
	return orders, nil
}
