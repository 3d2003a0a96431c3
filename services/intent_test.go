package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-bot/models"
)

func fixedSearch(products []models.Product, captured *string) ProductSearch {
	return func(ctx context.Context, term string, limit int) ([]models.Product, error) {
		if captured != nil {
			*captured = term
		}
		return products, nil
	}
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"tìm laptop", "search"},
		{"search for a keyboard", "search"},
		{"laptop còn hàng không", "stock"},
		{"is it available", "stock"},
		{"đặt hàng 2 cái", "order"},
		{"mua laptop", "order"},
		{"giá bao nhiêu", "price"},
		{"how much is this", "price"},
		{"khi nào giao hàng", "delivery"},
		{"do you ship to Hanoi", "delivery"},
		{"thanh toán thế nào", "payment"},
		{"xin chào shop", "greeting"},
		{"hello", "greeting"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			rule := ClassifyIntent(tt.message)
			require.NotNil(t, rule, "message %q should match a rule", tt.message)
			assert.Equal(t, tt.want, rule.Name)
		})
	}
}

func TestClassifyIntentNoMatch(t *testing.T) {
	assert.Nil(t, ClassifyIntent("xyzzy"))
	assert.Nil(t, ClassifyIntent("this sentence matches nothing"))
}

func TestClassifyIntentShortTokenNeedsWholeWord(t *testing.T) {
	// "hi" must not fire inside another word.
	rule := ClassifyIntent("shipping question")
	require.NotNil(t, rule)
	assert.Equal(t, "delivery", rule.Name)

	assert.Nil(t, ClassifyIntent("something about chips"))
}

func TestClassifyIntentPriorityOrder(t *testing.T) {
	// A message matching both search and order keywords resolves to search,
	// the earlier rule.
	rule := ClassifyIntent("tìm laptop để mua")
	require.NotNil(t, rule)
	assert.Equal(t, "search", rule.Name)

	// Greeting is low priority: a greeting plus a question about price goes
	// to the price rule.
	rule = ClassifyIntent("chào shop, giá laptop bao nhiêu")
	require.NotNil(t, rule)
	assert.Equal(t, "price", rule.Name)
}

func TestDispatchSearchIntent(t *testing.T) {
	laptop := models.Product{ID: primitive.NewObjectID(), Name: "Laptop Pro", Description: "gaming laptop", Price: 1500, Stock: 3}

	var searchedTerm string
	deps := IntentDeps{Search: fixedSearch([]models.Product{laptop}, &searchedTerm)}

	intent, reply, err := DispatchIntent(context.Background(), "tìm laptop", deps)
	require.NoError(t, err)
	assert.Equal(t, "search", intent)
	assert.Equal(t, "laptop", searchedTerm, "the keyword is stripped from the search term")
	require.Len(t, reply.Products, 1)
	assert.Equal(t, "Laptop Pro", reply.Products[0].Name)
	require.NotEmpty(t, reply.Buttons)
	assert.Contains(t, reply.Buttons[0].Payload, "order:")
}

func TestDispatchSearchIntentNoResults(t *testing.T) {
	deps := IntentDeps{Search: fixedSearch(nil, nil)}

	intent, reply, err := DispatchIntent(context.Background(), "tìm noexist", deps)
	require.NoError(t, err)
	assert.Equal(t, "search", intent)
	assert.Empty(t, reply.Products)
	assert.Contains(t, reply.Text, "couldn't find")
}

func TestDispatchStockIntent(t *testing.T) {
	inStock := models.Product{ID: primitive.NewObjectID(), Name: "Laptop Pro", Stock: 5}
	outOfStock := models.Product{ID: primitive.NewObjectID(), Name: "Laptop Air", Stock: 0}
	deps := IntentDeps{Search: fixedSearch([]models.Product{inStock, outOfStock}, nil)}

	intent, reply, err := DispatchIntent(context.Background(), "laptop còn hàng không", deps)
	require.NoError(t, err)
	assert.Equal(t, "stock", intent)
	assert.Contains(t, reply.Text, "5 in stock")
	assert.Contains(t, reply.Text, "out of stock")
}

func TestDispatchPriceIntent(t *testing.T) {
	laptop := models.Product{ID: primitive.NewObjectID(), Name: "Laptop Pro", Price: 1500}
	deps := IntentDeps{Search: fixedSearch([]models.Product{laptop}, nil)}

	intent, reply, err := DispatchIntent(context.Background(), "giá laptop", deps)
	require.NoError(t, err)
	assert.Equal(t, "price", intent)
	assert.Contains(t, reply.Text, "1500.00")
}

func TestDispatchCheaperIntent(t *testing.T) {
	cheap := models.Product{ID: primitive.NewObjectID(), Name: "Budget Laptop", Price: 300}
	deps := IntentDeps{Cheapest: fixedSearch([]models.Product{cheap}, nil)}

	intent, reply, err := DispatchIntent(context.Background(), "có gì rẻ hơn không", deps)
	require.NoError(t, err)
	assert.Equal(t, "cheaper", intent)
	require.Len(t, reply.Products, 1)
	assert.Equal(t, "Budget Laptop", reply.Products[0].Name)
}

func TestDispatchFallback(t *testing.T) {
	intent, reply, err := DispatchIntent(context.Background(), "xyzzy", IntentDeps{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", intent)
	assert.NotEmpty(t, reply.Buttons, "fallback offers suggested actions")
}

func TestDispatchPropagatesHandlerError(t *testing.T) {
	deps := IntentDeps{Search: func(ctx context.Context, term string, limit int) ([]models.Product, error) {
		return nil, errors.New("datastore down")
	}}

	_, _, err := DispatchIntent(context.Background(), "tìm laptop", deps)
	assert.Error(t, err)
}

func TestGreetingAndStaticIntents(t *testing.T) {
	intent, reply, err := DispatchIntent(context.Background(), "hello", IntentDeps{})
	require.NoError(t, err)
	assert.Equal(t, "greeting", intent)
	assert.NotEmpty(t, reply.Buttons)

	intent, reply, err = DispatchIntent(context.Background(), "thanh toán", IntentDeps{})
	require.NoError(t, err)
	assert.Equal(t, "payment", intent)
	assert.NotEmpty(t, reply.Text)

	intent, reply, err = DispatchIntent(context.Background(), "giao hàng mất bao lâu", IntentDeps{})
	require.NoError(t, err)
	assert.Equal(t, "delivery", intent)
	assert.NotEmpty(t, reply.Text)
}
