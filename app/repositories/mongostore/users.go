package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
)

type userRepo struct {
	col *mongo.Collection
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	defer observe("users.insert")()
	id := primitive.NewObjectID()
	t := now()
	u.CreatedAt, u.UpdatedAt = t, t

	// The unique index is authoritative; the lookup covers databases where
	// EnsureIndexes has not run yet.
	if n, err := r.col.CountDocuments(ctx, bson.M{"email": u.Email}); err == nil && n > 0 {
		return repositories.ErrDuplicate
	}
	if _, err := r.col.InsertOne(ctx, userToDoc(u, id)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("mongostore: create user: %w", err)
	}
	u.ID = id.Hex()
	return nil
}

func (r *userRepo) Update(ctx context.Context, u *models.User) error {
	defer observe("users.update")()
	oid, err := objectID(u.ID)
	if err != nil {
		return err
	}
	if n, err := r.col.CountDocuments(ctx, bson.M{"email": u.Email, "_id": bson.M{"$ne": oid}}); err == nil && n > 0 {
		return repositories.ErrDuplicate
	}

	u.UpdatedAt = now()
	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"name":        u.Name,
		"email":       u.Email,
		"password":    u.PasswordHash,
		"role":        string(u.Role),
		"profile":     u.Profile,
		"preferences": u.Preferences,
		"updatedAt":   u.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("mongostore: update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	defer observe("users.delete")()
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongostore: delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	defer observe("users.select")()
	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	u := doc.model()
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	defer observe("users.list")()
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("mongostore: list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongostore: decode users: %w", err)
	}
	out := make([]models.User, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}
