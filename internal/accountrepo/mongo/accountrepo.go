package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pitboss/accounts/internal/accountrepo/constants"
	"github.com/pitboss/accounts/internal/interfaces"
	"github.com/pitboss/accounts/internal/models"

	"github.com/go-viper/mapstructure/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mongoClient "github.com/pitboss/accounts/pkg/databases/mongo"
	mongosdk "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAccountRepository implements AccountRepository using the generic DBClient.
type MongoAccountRepository struct {
	dbClient interfaces.DBClient
}

// mongoCredential is the storage shape of a credential document.
type mongoCredential struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	Secret   string             `bson:"secret"`
}

// mongoProfile is the storage shape of a profile document.
type mongoProfile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"username"`
	Balance        float64            `bson:"balance"`
	Wins           int64              `bson:"wins"`
	Losses         int64              `bson:"losses"`
	TotalDeposited float64            `bson:"total_deposited"`
}

// NewMongoAccountRepository creates a new MongoDB repository instance.
// The dbClient must be the concrete Mongo implementation of DBClient.
func NewMongoAccountRepository(dbClient interfaces.DBClient) (interfaces.AccountRepository, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	if _, ok := dbClient.(*mongoClient.MongoDBClient); !ok {
		return nil, fmt.Errorf("dbClient must be a MongoDB client")
	}
	return &MongoAccountRepository{dbClient: dbClient}, nil
}

// isDuplicateKey reports whether err is a MongoDB unique-index violation.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "E11000 duplicate key error")
}

// AddCredential saves a new credential document. The secret must already be
// hashed by the caller.
func (r *MongoAccountRepository) AddCredential(ctx context.Context, cred models.Credential) (string, error) {
	// Documents cross the DBClient boundary as plain maps so the client's
	// field allow-list applies.
	doc := map[string]interface{}{
		"username": cred.Username,
		"secret":   cred.Secret,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, constants.CredentialsCollection, doc)
	if err != nil {
		if isDuplicateKey(err) {
			return "", fmt.Errorf("credential for %q: %w", cred.Username, interfaces.ErrDuplicateUsername)
		}
		return "", fmt.Errorf("failed to add credential to MongoDB: %w", err)
	}

	objID, ok := insertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to assert inserted ID to ObjectID")
	}
	return objID.Hex(), nil
}

// GetCredentialByUsername retrieves a credential. Returns (nil, nil) when no
// credential exists for the username.
func (r *MongoAccountRepository) GetCredentialByUsername(ctx context.Context, username string) (*models.Credential, error) {
	var doc mongoCredential
	filter := map[string]interface{}{"username": username}
	err := r.dbClient.FindOne(ctx, constants.CredentialsCollection, filter, &doc)
	if err != nil {
		if errors.Is(err, mongosdk.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credential by username from MongoDB: %w", err)
	}

	return &models.Credential{
		ID:       doc.ID.Hex(),
		Username: doc.Username,
		Secret:   doc.Secret,
	}, nil
}

// UpdateCredential replaces the username and secret of the credential stored
// under 'username'.
func (r *MongoAccountRepository) UpdateCredential(ctx context.Context, username string, cred models.Credential) error {
	filter := map[string]interface{}{"username": username}
	update := map[string]interface{}{
		"username": cred.Username,
		"secret":   cred.Secret,
	}
	_, err := r.dbClient.UpdateOne(ctx, constants.CredentialsCollection, filter, update)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("rename credential to %q: %w", cred.Username, interfaces.ErrDuplicateUsername)
		}
		return fmt.Errorf("failed to update credential in MongoDB: %w", err)
	}
	return nil
}

// DeleteCredential removes the credential by username. Deleting a credential
// that does not exist is not an error.
func (r *MongoAccountRepository) DeleteCredential(ctx context.Context, username string) error {
	filter := map[string]interface{}{"username": username}
	_, err := r.dbClient.DeleteOne(ctx, constants.CredentialsCollection, filter)
	if err != nil {
		return fmt.Errorf("failed to delete credential from MongoDB: %w", err)
	}
	return nil
}

// AddProfile saves a new profile document.
func (r *MongoAccountRepository) AddProfile(ctx context.Context, profile models.Profile) (string, error) {
	doc := map[string]interface{}{
		"username":        profile.Username,
		"balance":         profile.Balance,
		"wins":            profile.Wins,
		"losses":          profile.Losses,
		"total_deposited": profile.TotalDeposited,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, constants.ProfilesCollection, doc)
	if err != nil {
		if isDuplicateKey(err) {
			return "", fmt.Errorf("profile for %q: %w", profile.Username, interfaces.ErrDuplicateUsername)
		}
		return "", fmt.Errorf("failed to add profile to MongoDB: %w", err)
	}

	objID, ok := insertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to assert inserted ID to ObjectID")
	}
	return objID.Hex(), nil
}

// GetProfileByUsername retrieves a profile. Returns (nil, nil) when no
// profile exists for the username.
func (r *MongoAccountRepository) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var doc mongoProfile
	filter := map[string]interface{}{"username": username}
	err := r.dbClient.FindOne(ctx, constants.ProfilesCollection, filter, &doc)
	if err != nil {
		if errors.Is(err, mongosdk.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by username from MongoDB: %w", err)
	}

	return &models.Profile{
		ID:             doc.ID.Hex(),
		Username:       doc.Username,
		Balance:        doc.Balance,
		Wins:           doc.Wins,
		Losses:         doc.Losses,
		TotalDeposited: doc.TotalDeposited,
	}, nil
}

// ListProfiles returns every profile, unordered.
func (r *MongoAccountRepository) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	docs, err := r.dbClient.FindMany(ctx, constants.ProfilesCollection, map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles from MongoDB: %w", err)
	}

	profiles := make([]models.Profile, 0, len(docs))
	for _, doc := range docs {
		var profile models.Profile
		if err := mapstructure.Decode(doc, &profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile document: %w", err)
		}
		// The _id key does not match any mapstructure tag; recover it by hand.
		if docMap, ok := doc.(map[string]interface{}); ok {
			if oid, ok := docMap["_id"].(primitive.ObjectID); ok {
				profile.ID = oid.Hex()
			}
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// UpdateProfile replaces the mutable fields of the profile stored under
// 'username'.
func (r *MongoAccountRepository) UpdateProfile(ctx context.Context, username string, profile models.Profile) error {
	filter := map[string]interface{}{"username": username}
	update := map[string]interface{}{
		"username":        profile.Username,
		"balance":         profile.Balance,
		"wins":            profile.Wins,
		"losses":          profile.Losses,
		"total_deposited": profile.TotalDeposited,
	}
	_, err := r.dbClient.UpdateOne(ctx, constants.ProfilesCollection, filter, update)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("rename profile to %q: %w", profile.Username, interfaces.ErrDuplicateUsername)
		}
		return fmt.Errorf("failed to update profile in MongoDB: %w", err)
	}
	return nil
}

// DeleteProfile removes the profile by username. Deleting a profile that
// does not exist is not an error.
func (r *MongoAccountRepository) DeleteProfile(ctx context.Context, username string) error {
	filter := map[string]interface{}{"username": username}
	_, err := r.dbClient.DeleteOne(ctx, constants.ProfilesCollection, filter)
	if err != nil {
		return fmt.Errorf("failed to delete profile from MongoDB: %w", err)
	}
	return nil
}

// EnsureIndices creates unique username indices on both collections, so a
// register racing a duplicate register (or a rename racing a rename) loses
// at the storage layer instead of creating a second record.
func (r *MongoAccountRepository) EnsureIndices(ctx context.Context) error {
	indexModel := mongosdk.IndexModel{
		Keys:    bson.M{"username": 1},
		Options: options.Index().SetUnique(true),
	}
	if err := r.dbClient.EnsureSchema(ctx, constants.CredentialsCollection, indexModel); err != nil {
		return fmt.Errorf("failed to ensure credentials index: %w", err)
	}
	if err := r.dbClient.EnsureSchema(ctx, constants.ProfilesCollection, indexModel); err != nil {
		return fmt.Errorf("failed to ensure profiles index: %w", err)
	}
	return nil
}

// Close disconnects the MongoDB client.
func (r *MongoAccountRepository) Close(ctx context.Context) error {
	return r.dbClient.Disconnect(ctx)
}
