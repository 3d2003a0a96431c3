package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shop-bot/models"
)

// fakeCustomerStore backs the customer seams with an in-memory map keyed by
// phone, honoring the unique phone index the way the datastore would.
type fakeCustomerStore struct {
	byPhone map[string]*models.Customer
	inserts int
	updates int
}

func installFakeCustomerStore(t *testing.T) *fakeCustomerStore {
	t.Helper()
	store := &fakeCustomerStore{byPhone: map[string]*models.Customer{}}

	prevFind, prevInsert, prevUpdate := customerFind, customerInsert, customerUpdate
	t.Cleanup(func() {
		customerFind, customerInsert, customerUpdate = prevFind, prevInsert, prevUpdate
	})

	customerFind = func(ctx context.Context, phone string) (*models.Customer, error) {
		stored, ok := store.byPhone[phone]
		if !ok {
			return nil, nil
		}
		found := *stored
		return &found, nil
	}
	customerInsert = func(ctx context.Context, customer *models.Customer) error {
		store.inserts++
		if _, ok := store.byPhone[customer.Phone]; ok {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
		stored := *customer
		store.byPhone[customer.Phone] = &stored
		return nil
	}
	customerUpdate = func(ctx context.Context, id primitive.ObjectID, update bson.M) error {
		store.updates++
		return nil
	}

	return store
}

func TestResolveCustomerSamePhoneNeverCreatesTwo(t *testing.T) {
	store := installFakeCustomerStore(t)
	ctx := context.Background()
	hints := IdentityHints{PlatformID: "1234567890123456"}

	first, err := ResolveCustomer(ctx, "0912345678", "Nguyen Van A", hints)
	require.NoError(t, err)
	require.NotNil(t, first.Customer)

	second, err := ResolveCustomer(ctx, "0912345678", "Nguyen Van A", hints)
	require.NoError(t, err)
	require.NotNil(t, second.Customer)

	assert.Equal(t, first.Customer.ID, second.Customer.ID)
	assert.Len(t, store.byPhone, 1)
}

func TestCreateCustomerSurvivesConcurrentDuplicate(t *testing.T) {
	store := installFakeCustomerStore(t)
	ctx := context.Background()

	// Another request already won the insert race for this phone.
	winner := &models.Customer{
		ID:    primitive.NewObjectID(),
		Name:  "Nguyen Van A",
		Phone: "0905123123",
	}
	store.byPhone[winner.Phone] = winner

	customer, err := CreateCustomer(ctx, "Nguyen Van A", "0905123123")
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, winner.ID, customer.ID, "duplicate-key insert re-reads the winning record")
	assert.Len(t, store.byPhone, 1)
}

func TestLinkPlatformIdentitySameValueOnce(t *testing.T) {
	installFakeCustomerStore(t)
	ctx := context.Background()

	customer := &models.Customer{
		ID:                 primitive.NewObjectID(),
		PlatformIdentities: map[string]models.PlatformIdentity{},
	}

	isNew, err := LinkPlatformIdentity(ctx, customer, "1234567890123456", "messenger")
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = LinkPlatformIdentity(ctx, customer, "1234567890123456", "messenger")
	require.NoError(t, err)
	assert.False(t, isNew, "linking the same value again refreshes, never duplicates")
	assert.Len(t, customer.PlatformIdentities, 1)
}

func TestLinkPlatformIdentityDedupsByValueAcrossKeys(t *testing.T) {
	installFakeCustomerStore(t)
	ctx := context.Background()

	// The same value may sit under a legacy map key; it still counts as
	// already linked.
	customer := &models.Customer{
		ID: primitive.NewObjectID(),
		PlatformIdentities: map[string]models.PlatformIdentity{
			"legacy": {UserID: "1234567890123456", Label: "messenger"},
		},
	}

	isNew, err := LinkPlatformIdentity(ctx, customer, "1234567890123456", "messenger")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Len(t, customer.PlatformIdentities, 1)
	_, hasDerivedKey := customer.PlatformIdentities[IdentityKey("1234567890123456")]
	assert.False(t, hasDerivedKey, "no second entry under the derived key")

	isNew, err = LinkPlatformIdentity(ctx, customer, "9876543210987654", "zalo")
	require.NoError(t, err)
	assert.True(t, isNew, "a genuinely new value still gets its own entry")
	assert.Len(t, customer.PlatformIdentities, 2)
}
