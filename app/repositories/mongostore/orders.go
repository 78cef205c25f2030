package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
)

var orderSortKeys = map[string]string{
	"createdAt":   "createdAt",
	"updatedAt":   "updatedAt",
	"totalAmount": "totalAmount",
	"status":      "status",
}

type orderRepo struct {
	col *mongo.Collection
}

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	defer observe("orders.insert")()
	id := primitive.NewObjectID()
	t := now()
	o.CreatedAt, o.UpdatedAt = t, t
	doc, err := orderToDoc(o, id)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongostore: create order: %w", err)
	}
	o.ID = id.Hex()
	return nil
}

func (r *orderRepo) Update(ctx context.Context, o *models.Order) error {
	defer observe("orders.update")()
	oid, err := objectID(o.ID)
	if err != nil {
		return err
	}
	o.UpdatedAt = now()
	doc, err := orderToDoc(o, oid)
	if err != nil {
		return err
	}
	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"products":        doc.Products,
		"totalAmount":     doc.TotalAmount,
		"status":          doc.Status,
		"paymentStatus":   doc.PaymentStatus,
		"paymentMethod":   doc.PaymentMethod,
		"shippingAddress": doc.ShippingAddress,
		"updatedAt":       doc.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("mongostore: update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	defer observe("orders.delete")()
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongostore: delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*models.Order, error) {
	defer observe("orders.select")()
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc orderDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	o := doc.model()
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, f repositories.OrderFilter, s repositories.Sort, p repositories.Page) ([]models.Order, int64, error) {
	defer observe("orders.list")()

	filter := bson.M{}
	if f.UserID != "" {
		user, err := objectID(f.UserID)
		if err != nil {
			return []models.Order{}, 0, nil
		}
		filter["user"] = user
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Search != "" {
		re := containsRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"shippingAddress.street": re},
			bson.M{"shippingAddress.city": re},
			bson.M{"shippingAddress.state": re},
			bson.M{"shippingAddress.country": re},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("mongostore: count orders: %w", err)
	}
	cur, err := r.col.Find(ctx, filter, findOptions(sortDoc(s.Field, s.Desc, orderSortKeys), p))
	if err != nil {
		return nil, 0, fmt.Errorf("mongostore: list orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("mongostore: decode orders: %w", err)
	}

	out := make([]models.Order, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, total, nil
}

func (r *orderRepo) All(ctx context.Context) ([]models.Order, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongostore: all orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongostore: decode orders: %w", err)
	}
	out := make([]models.Order, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}
