package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pitboss/accounts/config"
	"github.com/pitboss/accounts/internal/interfaces"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	MAXPOOLSIZE = 20
	IDFIELD     = "_id"
)

// MongoDBClient implements the interfaces.DBClient interface for MongoDB operations.
type MongoDBClient struct {
	ServerOpts       *options.ServerAPIOptions
	client           *mongo.Client
	db               *mongo.Database
	timeout          time.Duration
	validCollections map[string]bool // A map to validate collection names
	validFields      map[string]bool // A map to validate field names
	logger           interfaces.Logger
}

// NewMongoDB returns an interface for db client and error if it occurs
func NewMongoDB(dbConfig *config.MongoDBConfig, logger interfaces.Logger) (interfaces.DBClient, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	db := &MongoDBClient{
		timeout:          time.Duration(dbConfig.Timeout),
		ServerOpts:       config.BuildServerAPIOptions(dbConfig.Options),
		validCollections: config.ListToMap(dbConfig.ValidCollections),
		validFields:      config.ListToMap(dbConfig.ValidFields),
		logger:           logger,
	}

	return db, nil
}

// Connect establishes a connection to the MongoDB database using the provided DSN (Data Source Name).
// It initializes the MongoDB client and sets the database instance.
// The DSN should be in the format "mongodb://<host>:<port>/<database>".
// The function extracts the database name from the DSN and sets it as the active database for the client.
func (m *MongoDBClient) Connect(ctx context.Context, dsn string) error {
	// Validate the DSN format
	if dsn == "" {
		return fmt.Errorf("MongoDBClient: DSN is empty")
	}
	if !strings.HasPrefix(dsn, "mongodb://") && !strings.HasPrefix(dsn, "mongodb+srv://") {
		return fmt.Errorf("MongoDBClient: invalid DSN format, expected 'mongodb://' or 'mongodb+srv://'")
	}

	// Set a timeout for the connection
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	clientOptions := options.Client().ApplyURI(dsn)

	// Set the server API options if provided
	if m.ServerOpts != nil {
		clientOptions.SetServerAPIOptions(m.ServerOpts)
	}
	// Set the maximum pool size
	clientOptions.SetMaxPoolSize(MAXPOOLSIZE)

	// Set read preference to primaryPreferred
	clientOptions.SetReadPreference(readpref.PrimaryPreferred())

	// Connect to the MongoDB server
	var err error
	m.client, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	// Check if the connection is successful by pinging the server
	if err = m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("MongoDBClient: failed to connect to MongoDB server: %v", err)
	}
	m.logger.Info("Connected to MongoDB server")

	// Extract the database name from the DSN
	databaseName, err := m.getDBNameFromMongoDSN(dsn)
	if err != nil {
		return fmt.Errorf("MongoDBClient: failed to extract database name from datasource name(dsn): %v", err)
	}

	m.db = m.client.Database(databaseName)
	return nil
}

// Disconnect closes the connection to the MongoDB database.
// It checks if the client is not nil before attempting to disconnect.
func (m *MongoDBClient) Disconnect(ctx context.Context) error {
	m.logger.Debug("MongoDBClient disconnecting")
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}

	return nil
}

// InsertOne inserts a document and returns its ID.
func (m *MongoDBClient) InsertOne(ctx context.Context, collectionName string, document interfaces.Document) (interface{}, error) {
	// Field values are never logged; documents may carry secrets.
	m.logger.Debug("MongoDBClient inserting one", "collection", collectionName)

	if !m.validCollections[collectionName] {
		return nil, fmt.Errorf("MongoDBClient: invalid collection name: %s", collectionName)
	}

	// Sanitize document
	sanitizedDocument, err := m.sanitizeDocument(document)
	if err != nil {
		return nil, err
	}

	res, err := m.db.Collection(collectionName).InsertOne(ctx, sanitizedDocument)
	if err != nil {
		return nil, fmt.Errorf("MongoDBClient: failed to insert one into %s: %w", collectionName, err)
	}

	return res.InsertedID, nil
}

// FindOne retrieves a single document from the specified collection using a filter.
// It decodes the result into the provided variable. When no document matches,
// the returned error wraps mongo.ErrNoDocuments so callers can errors.Is it.
func (m *MongoDBClient) FindOne(ctx context.Context, collectionName string, filter interfaces.Document, result interfaces.Document) error {
	m.logger.Debug("MongoDBClient finding one", "collection", collectionName)

	if !m.validCollections[collectionName] {
		return fmt.Errorf("MongoDBClient: invalid collection name: %s", collectionName)
	}

	// Sanitize filter
	sanitizedFilter, err := m.sanitizeDocument(filter)
	if err != nil {
		return err
	}

	err = m.db.Collection(collectionName).FindOne(ctx, sanitizedFilter).Decode(result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("MongoDBClient: no document found in %s: %w", collectionName, err)
		}
		return fmt.Errorf("MongoDBClient: failed to find one in %s: %w", collectionName, err)
	}

	return nil
}

// FindMany retrieves multiple documents from the specified collection.
// It returns a slice of matching documents or an error. Each document is a
// map[string]interface{} for the caller to decode.
func (m *MongoDBClient) FindMany(ctx context.Context, collectionName string, filter interfaces.Document) ([]interfaces.Document, error) {
	m.logger.Debug("MongoDBClient finding many", "collection", collectionName)

	if !m.validCollections[collectionName] {
		return nil, fmt.Errorf("MongoDBClient: invalid collection name: %s", collectionName)
	}

	// An empty filter is a full scan; sanitize anything else.
	sanitizedFilter, err := m.sanitizeDocument(filter)
	if err != nil {
		return nil, err
	}

	cursor, err := m.db.Collection(collectionName).Find(ctx, sanitizedFilter)
	if err != nil {
		return nil, fmt.Errorf("MongoDBClient: finding many in %s failed: %w", collectionName, err)
	}

	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("MongoDBClient failed to close cursor", "error", err)
		}
	}()

	var results []interfaces.Document
	for cursor.Next(ctx) {
		var doc map[string]interface{}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("MongoDBClient: failed to decode cursor: %w", err)
		}
		results = append(results, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("MongoDBClient: cursor error in %s: %w", collectionName, err)
	}

	return results, nil
}

// UpdateOne modifies a single document in the specified collection using a filter and update document.
// The update is a plain field→value map; it is wrapped in $set here.
// Returns the count of modified documents and an error if the operation fails.
func (m *MongoDBClient) UpdateOne(ctx context.Context, collectionName string, filter interfaces.Document, update interfaces.Document) (int64, error) {
	m.logger.Debug("MongoDBClient updating one", "collection", collectionName)

	if !m.validCollections[collectionName] {
		return 0, fmt.Errorf("MongoDBClient: invalid collection name: %s", collectionName)
	}

	// Sanitize filter and update
	sanitizedFilter, err := m.sanitizeDocument(filter)
	if err != nil {
		return 0, err
	}
	sanitizedUpdate, err := m.sanitizeDocument(update)
	if err != nil {
		return 0, err
	}

	res, err := m.db.Collection(collectionName).UpdateOne(ctx, sanitizedFilter,
		map[string]interface{}{"$set": sanitizedUpdate})
	if err != nil {
		return 0, fmt.Errorf("MongoDBClient: failed updating one in %s: %w", collectionName, err)
	}

	return res.ModifiedCount, nil
}

// DeleteOne removes a single document from the specified collection using a filter.
// Returns the count of deleted documents and an error if the operation fails.
func (m *MongoDBClient) DeleteOne(ctx context.Context, collectionName string, filter interfaces.Document) (int64, error) {
	m.logger.Debug("MongoDBClient deleting one", "collection", collectionName)

	if !m.validCollections[collectionName] {
		return 0, fmt.Errorf("MongoDBClient: invalid collection name: %s", collectionName)
	}

	// Sanitize filter
	sanitizedFilter, err := m.sanitizeDocument(filter)
	if err != nil {
		return 0, err
	}

	res, err := m.db.Collection(collectionName).DeleteOne(ctx, sanitizedFilter)
	if err != nil {
		return 0, fmt.Errorf("MongoDBClient: failed deleting one from %s: %w", collectionName, err)
	}

	return res.DeletedCount, nil
}

// DeleteMany removes multiple documents from a collection using a filter.
// Returns the count of deleted documents and an error if the operation fails.
func (m *MongoDBClient) DeleteMany(ctx context.Context, collectionName string, filter interfaces.Document) (int64, error) {
	m.logger.Debug("MongoDBClient deleting many", "collection", collectionName)

	if !m.validCollections[collectionName] {
		return 0, fmt.Errorf("MongoDBClient: invalid collection name: %s", collectionName)
	}

	// Sanitize filter
	sanitizedFilter, err := m.sanitizeDocument(filter)
	if err != nil {
		return 0, err
	}

	res, err := m.db.Collection(collectionName).DeleteMany(ctx, sanitizedFilter)
	if err != nil {
		return 0, fmt.Errorf("MongoDBClient: failed deleting many from %s: %w", collectionName, err)
	}

	return res.DeletedCount, nil
}

// Ping verifies the MongoDB connection health using a ping command.
func (m *MongoDBClient) Ping(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("MongoDBClient is not connected")
	}
	return m.client.Ping(ctx, nil)
}

// getDBNameFromMongoDSN extracts the database name from a MongoDB DSN.
func (m *MongoDBClient) getDBNameFromMongoDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse MongoDB DSN: %w", err)
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("no database name found in MongoDB DSN path: %s", dsn)
	}

	// If the path contains additional segments (e.g., /db/collection), use only the first as the database name.
	// For most cases, the path is just the database name.
	if idx := strings.Index(dbName, "/"); idx != -1 {
		dbName = dbName[:idx]
	}

	return dbName, nil
}

// EnsureSchema creates the required index on the specified collection using the provided mongo.IndexModel.
// If the collection does not exist, it will be created automatically.
func (m *MongoDBClient) EnsureSchema(ctx context.Context, collectionName string, schema interfaces.Document) error {
	// verify m.db is not nil
	if m.db == nil {
		return fmt.Errorf("MongoDBClient is not connected to a database")
	}

	// Type assertion to mongo.IndexModel
	model, ok := schema.(mongo.IndexModel)
	if !ok {
		return fmt.Errorf("EnsureSchema: expected mongo.IndexModel for MongoDB")
	}
	// Create the index on the specified collection
	collection := m.db.Collection(collectionName)
	_, err := collection.Indexes().CreateOne(ctx, model)
	return err
}

// sanitizeDocument copies a field→value map, dropping the _id field and any
// key outside the configured allow-list or containing Mongo operator
// characters. This is the NoSQL-injection guard: every document and filter
// crossing this client must be a map so the guard actually applies.
func (m *MongoDBClient) sanitizeDocument(document interfaces.Document) (interfaces.Document, error) {
	if document == nil {
		return nil, fmt.Errorf("MongoDBClient: document cannot be nil")
	}

	// Note: bson.M is a defined type and does not assert to a plain map.
	// Callers pass plain map literals.
	docMap, ok := document.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("MongoDBClient: document must be a map[string]interface{}, got %T", document)
	}

	sanitized := make(map[string]interface{})
	for key, value := range docMap {
		// Skip the ID field to prevent overwriting or exposing it
		if key == IDFIELD {
			continue
		}

		// Ensure the key is a valid field name and does not contain special characters
		if _, ok := m.validFields[key]; !ok || strings.ContainsAny(key, "$.") {
			m.logger.Warn("MongoDBClient skipping invalid or unsafe field name", "field", key)
			continue
		}

		sanitized[key] = value
	}

	return sanitized, nil
}
