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

var productSortKeys = map[string]string{
	"createdAt": "createdAt",
	"updatedAt": "updatedAt",
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
	"category":  "category",
}

type productRepo struct {
	col *mongo.Collection
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	defer observe("products.insert")()
	id := primitive.NewObjectID()
	t := now()
	p.CreatedAt, p.UpdatedAt = t, t
	if _, err := r.col.InsertOne(ctx, productToDoc(p, id)); err != nil {
		return fmt.Errorf("mongostore: create product: %w", err)
	}
	p.ID = id.Hex()
	return nil
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	defer observe("products.update")()
	oid, err := objectID(p.ID)
	if err != nil {
		return err
	}
	p.UpdatedAt = now()
	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"price":       toDecimal128(p.Price),
		"category":    p.Category,
		"stock":       p.Stock,
		"imageUrl":    p.ImageURL,
		"updatedAt":   p.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("mongostore: update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	defer observe("products.delete")()
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongostore: delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*models.Product, error) {
	defer observe("products.select")()
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	p := doc.model()
	return &p, nil
}

// FindByIDs skips malformed ids; they cannot exist.
func (r *productRepo) FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(ids))
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return out, nil
	}
	defer observe("products.select_in")()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("mongostore: find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongostore: decode products: %w", err)
	}
	for _, d := range docs {
		out[d.ID.Hex()] = d.model()
	}
	return out, nil
}

func (r *productRepo) List(ctx context.Context, f repositories.ProductFilter, s repositories.Sort, p repositories.Page) ([]models.Product, int64, error) {
	defer observe("products.list")()

	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		re := containsRegex(f.Search)
		filter["$or"] = bson.A{bson.M{"name": re}, bson.M{"description": re}}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("mongostore: count products: %w", err)
	}
	cur, err := r.col.Find(ctx, filter, findOptions(sortDoc(s.Field, s.Desc, productSortKeys), p))
	if err != nil {
		return nil, 0, fmt.Errorf("mongostore: list products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("mongostore: decode products: %w", err)
	}

	out := make([]models.Product, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, total, nil
}

func (r *productRepo) All(ctx context.Context) ([]models.Product, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongostore: all products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongostore: decode products: %w", err)
	}
	out := make([]models.Product, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}
