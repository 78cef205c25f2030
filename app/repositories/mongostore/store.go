// Package mongostore implements the repository contracts on MongoDB. Ids
// are ObjectIDs rendered as hex strings and money is stored as Decimal128.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/pkg/metrics"
)

// Store holds the three collections of one database.
type Store struct {
	client   *mongo.Client
	products *mongo.Collection
	orders   *mongo.Collection
	users    *mongo.Collection
}

// New binds to database on client. Call EnsureIndexes once at startup.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:   client,
		products: db.Collection("products"),
		orders:   db.Collection("orders"),
		users:    db.Collection("users"),
	}
}

func (s *Store) Products() repositories.ProductRepository { return &productRepo{col: s.products} }
func (s *Store) Orders() repositories.OrderRepository     { return &orderRepo{col: s.orders} }
func (s *Store) Users() repositories.UserRepository       { return &userRepo{col: s.users} }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the lookup, sort and uniqueness indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		col    *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.orders, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		}},
		{s.products, []mongo.IndexModel{
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
		}},
		{s.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
	}
	for _, spec := range specs {
		if _, err := spec.col.Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("mongostore: indexes on %s: %w", spec.col.Name(), err)
		}
	}
	return nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

var (
	clockMu sync.Mutex
	last    time.Time
)

// now is strictly increasing at millisecond precision, which is what BSON
// dates keep.
func now() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()
	t := time.Now().UTC().Truncate(time.Millisecond)
	if !t.After(last) {
		t = last.Add(time.Millisecond)
	}
	last = t
	return t
}

// objectID parses a hex id. Malformed ids can never match, so they map to
// ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repositories.ErrNotFound
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	return err
}

// containsRegex is a case-insensitive substring match on literal q.
func containsRegex(q string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
}

func sortDoc(field string, desc bool, allowed map[string]string) bson.D {
	key, ok := allowed[field]
	if !ok {
		key = "createdAt"
	}
	dir := 1
	if desc {
		dir = -1
	}
	return bson.D{{Key: key, Value: dir}, {Key: "_id", Value: dir}}
}

func findOptions(sort bson.D, p repositories.Page) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if p.Size > 0 {
		opts.SetSkip(int64(p.Skip())).SetLimit(int64(p.Size))
	}
	return opts
}

func observe(op string) func() {
	start := time.Now()
	return func() { metrics.ObserveDBQuery(op, start) }
}
