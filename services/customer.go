package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-bot/models"
)

// identityKeyLen is the length of the map key derived from a platform
// identity value. The key only has to be deterministic and collision-poor
// within one customer's identity map.
const identityKeyLen = 8

// IdentityKey derives the map key for a platform identity value.
func IdentityKey(platformID string) string {
	if len(platformID) <= identityKeyLen {
		return platformID
	}
	return platformID[:identityKeyLen]
}

// Datastore access for the resolution path sits behind swappable funcs,
// the same way ProductLookup is passed to the validator, so the phone and
// identity dedup guarantees can be exercised without a live database.
var (
	customerFind   = mongoCustomerFind
	customerInsert = mongoCustomerInsert
	customerUpdate = mongoCustomerUpdate
)

func mongoCustomerFind(ctx context.Context, phone string) (*models.Customer, error) {
	collection := GetDatabase().Collection("customers")

	var customer models.Customer
	err := collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "customer lookup", Err: err}
	}

	return &customer, nil
}

func mongoCustomerInsert(ctx context.Context, customer *models.Customer) error {
	_, err := GetDatabase().Collection("customers").InsertOne(ctx, customer)
	return err
}

func mongoCustomerUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	_, err := GetDatabase().Collection("customers").UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// GetCustomerByPhone retrieves a customer by normalized phone number.
// Returns nil without error when no customer exists.
func GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	return customerFind(ctx, phone)
}

// GetCustomerByID retrieves a customer by object id.
func GetCustomerByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	collection := GetDatabase().Collection("customers")

	var customer models.Customer
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "customer lookup", Err: err}
	}

	return &customer, nil
}

// CreateCustomer creates a minimal customer record on first contact.
func CreateCustomer(ctx context.Context, name, phone string) (*models.Customer, error) {
	now := time.Now()
	customer := &models.Customer{
		ID:                 primitive.NewObjectID(),
		Name:               name,
		Phone:              phone,
		PlatformIdentities: map[string]models.PlatformIdentity{},
		Status:             models.CustomerStatusActive,
		Origin:             models.CustomerOriginBot,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := customerInsert(ctx, customer); err != nil {
		// A concurrent request may have created the same phone first; the
		// unique index turns that into a duplicate-key error, so re-read.
		if mongo.IsDuplicateKeyError(err) {
			return GetCustomerByPhone(ctx, phone)
		}
		return nil, &PersistenceError{Op: "customer create", Err: err}
	}

	slog.Info("New customer created", "customerID", customer.ID.Hex(), "phone", phone)
	return customer, nil
}

// LinkPlatformIdentity inserts a platform identity into the customer's
// identity map, or refreshes its last-interaction time if the same value is
// already linked under any key. Returns true when the identity is new.
func LinkPlatformIdentity(ctx context.Context, customer *models.Customer, platformID, label string) (bool, error) {
	now := time.Now()

	// Dedup by value, not by slot: the same id must never appear twice.
	for key, identity := range customer.PlatformIdentities {
		if identity.UserID == platformID {
			field := fmt.Sprintf("platform_identities.%s.last_interaction", key)
			err := customerUpdate(ctx, customer.ID,
				bson.M{"$set": bson.M{field: now, "updated_at": now}},
			)
			if err != nil {
				return false, &PersistenceError{Op: "identity refresh", Err: err}
			}
			identity.LastInteraction = now
			customer.PlatformIdentities[key] = identity
			return false, nil
		}
	}

	key := IdentityKey(platformID)
	entry := models.PlatformIdentity{
		UserID:          platformID,
		Label:           label,
		LastInteraction: now,
	}

	field := fmt.Sprintf("platform_identities.%s", key)
	err := customerUpdate(ctx, customer.ID,
		bson.M{"$set": bson.M{field: entry, "updated_at": now}},
	)
	if err != nil {
		return false, &PersistenceError{Op: "identity link", Err: err}
	}

	if customer.PlatformIdentities == nil {
		customer.PlatformIdentities = map[string]models.PlatformIdentity{}
	}
	customer.PlatformIdentities[key] = entry

	slog.Info("Platform identity linked",
		"customerID", customer.ID.Hex(),
		"platformID", platformID)
	return true, nil
}

// FillEmptyProfileFields merges profile fields into the customer, writing
// only fields that are currently empty. Existing non-empty values are never
// overwritten.
func FillEmptyProfileFields(ctx context.Context, customer *models.Customer, fields map[string]string) error {
	current := map[string]string{
		"name":       customer.Name,
		"email":      customer.Email,
		"first_name": customer.FirstName,
		"last_name":  customer.LastName,
		"gender":     customer.Gender,
		"address":    customer.Address,
	}

	set := bson.M{}
	for field, value := range fields {
		existing, known := current[field]
		if !known || value == "" || existing != "" {
			continue
		}
		set[field] = value
	}
	if len(set) == 0 {
		return nil
	}
	set["updated_at"] = time.Now()

	if err := customerUpdate(ctx, customer.ID, bson.M{"$set": set}); err != nil {
		return &PersistenceError{Op: "customer profile update", Err: err}
	}
	return nil
}

// AddCustomerDebt moves the customer's outstanding balance after an order is
// written.
func AddCustomerDebt(ctx context.Context, customerID primitive.ObjectID, amount float64) error {
	if amount <= 0 {
		return nil
	}
	err := customerUpdate(ctx, customerID, bson.M{
		"$inc": bson.M{"balance": amount},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return &PersistenceError{Op: "balance update", Err: err}
	}
	return nil
}

// GetCustomers retrieves customers with pagination, newest activity first.
func GetCustomers(ctx context.Context, limit, skip int) ([]models.Customer, int64, error) {
	collection := GetDatabase().Collection("customers")

	totalCount, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.M{"updated_at": -1}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, 0, err
	}

	return customers, totalCount, nil
}

// SearchCustomers searches customers by name or phone.
func SearchCustomers(ctx context.Context, searchTerm string, limit int) ([]models.Customer, error) {
	collection := GetDatabase().Collection("customers")

	pattern := regexp.QuoteMeta(searchTerm)
	filter := bson.M{
		"$or": []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"first_name": bson.M{"$regex": pattern, "$options": "i"}},
			{"last_name": bson.M{"$regex": pattern, "$options": "i"}},
			{"phone": NormalizePhone(searchTerm)},
		},
	}

	findOptions := options.Find().
		SetSort(bson.M{"updated_at": -1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}

	return customers, nil
}
