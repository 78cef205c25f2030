package mongostore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
)

func TestOrderDocStoresReferencesAsObjectIDs(t *testing.T) {
	user, product := primitive.NewObjectID(), primitive.NewObjectID()
	o := &models.Order{
		User:        user.Hex(),
		Products:    []models.LineItem{{Product: product.Hex(), Quantity: 2, Price: decimal.RequireFromString("10.00")}},
		TotalAmount: decimal.RequireFromString("20.00"),
		Status:      models.StatusPending,
		CreatedAt:   time.Now(),
	}

	doc, err := orderToDoc(o, primitive.NewObjectID())
	require.NoError(t, err)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, bsontype.ObjectID, bson.Raw(raw).Lookup("user").Type)
	assert.Equal(t, bsontype.ObjectID, bson.Raw(raw).Lookup("products", "0", "product").Type)

	var back orderDoc
	require.NoError(t, bson.Unmarshal(raw, &back))
	m := back.model()
	assert.Equal(t, user.Hex(), m.User)
	require.Len(t, m.Products, 1)
	assert.Equal(t, product.Hex(), m.Products[0].Product)
	assert.True(t, m.TotalAmount.Equal(decimal.RequireFromString("20")))
}

func TestOrderDocRejectsMalformedReferences(t *testing.T) {
	_, err := orderToDoc(&models.Order{User: "alice"}, primitive.NewObjectID())
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = orderToDoc(&models.Order{
		User:     primitive.NewObjectID().Hex(),
		Products: []models.LineItem{{Product: "widget", Quantity: 1}},
	}, primitive.NewObjectID())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
