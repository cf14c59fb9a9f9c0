package mongo

import (
	"context"
	"reflect"
	"testing"

	"github.com/pitboss/accounts/config"
	"github.com/pitboss/accounts/internal/interfaces"
	zerologger "github.com/pitboss/accounts/pkg/zerolog"

	"go.mongodb.org/mongo-driver/bson"
)

func newTestClient(t *testing.T) *MongoDBClient {
	t.Helper()

	logger := zerologger.NewZerologLogger("mongo-test")
	logger.SetLevel("ERROR")

	dbClient, err := NewMongoDB(&config.MongoDBConfig{
		ValidCollections: []string{"credentials", "profiles"},
		ValidFields:      []string{"username", "secret", "balance", "wins", "losses", "total_deposited"},
	}, logger)
	if err != nil {
		t.Fatalf("NewMongoDB() error = %v", err)
	}
	return dbClient.(*MongoDBClient)
}

func TestNewMongoDB(t *testing.T) {
	t.Run("nil logger is rejected", func(t *testing.T) {
		if _, err := NewMongoDB(&config.MongoDBConfig{}, nil); err == nil {
			t.Error("expected error for nil logger")
		}
	})
}

func TestMongoDBClient_Connect_InvalidDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{name: "empty DSN", dsn: ""},
		{name: "wrong scheme", dsn: "postgres://localhost:5432/blackjack"},
		{name: "bare host", dsn: "localhost:27017"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestClient(t)
			if err := m.Connect(context.Background(), tt.dsn); err == nil {
				t.Error("expected error for invalid DSN")
			}
		})
	}
}

func TestMongoDBClient_SanitizeDocument(t *testing.T) {
	m := newTestClient(t)

	tests := []struct {
		name     string
		document interfaces.Document
		want     map[string]interface{}
		wantErr  bool
	}{
		{
			name: "allowed fields pass through",
			document: map[string]interface{}{
				"username": "alice",
				"secret":   "hash",
			},
			want: map[string]interface{}{
				"username": "alice",
				"secret":   "hash",
			},
		},
		{
			name: "_id and unknown fields are dropped",
			document: map[string]interface{}{
				"_id":      "507f1f77bcf86cd799439011",
				"username": "alice",
				"isAdmin":  true,
			},
			want: map[string]interface{}{
				"username": "alice",
			},
		},
		{
			name: "operator keys are dropped",
			document: map[string]interface{}{
				"username":     "alice",
				"$where":       "sleep(1000)",
				"secret.inner": "x",
			},
			want: map[string]interface{}{
				"username": "alice",
			},
		},
		{
			name:     "empty filter stays empty",
			document: map[string]interface{}{},
			want:     map[string]interface{}{},
		},
		{
			name:     "nil document is rejected",
			document: nil,
			wantErr:  true,
		},
		{
			name:     "non-map document is rejected",
			document: "username=alice",
			wantErr:  true,
		},
		{
			name:     "bson.M is rejected",
			document: bson.M{"username": "alice"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.sanitizeDocument(tt.document)
			if (err != nil) != tt.wantErr {
				t.Fatalf("sanitizeDocument() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, interfaces.Document(tt.want)) {
				t.Errorf("sanitizeDocument() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMongoDBClient_GetDBNameFromDSN(t *testing.T) {
	m := newTestClient(t)

	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{
			name: "plain DSN",
			dsn:  "mongodb://localhost:27017/blackjack",
			want: "blackjack",
		},
		{
			name: "DSN with extra path segment",
			dsn:  "mongodb://localhost:27017/blackjack/ignored",
			want: "blackjack",
		},
		{
			name:    "DSN without a database",
			dsn:     "mongodb://localhost:27017",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.getDBNameFromMongoDSN(tt.dsn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("getDBNameFromMongoDSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("getDBNameFromMongoDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMongoDBClient_InvalidCollectionIsRejected(t *testing.T) {
	m := newTestClient(t)
	ctx := context.Background()

	if _, err := m.InsertOne(ctx, "sessions", map[string]interface{}{"username": "alice"}); err == nil {
		t.Error("InsertOne accepted an unknown collection")
	}
	if err := m.FindOne(ctx, "sessions", map[string]interface{}{"username": "alice"}, &struct{}{}); err == nil {
		t.Error("FindOne accepted an unknown collection")
	}
	if _, err := m.DeleteOne(ctx, "sessions", map[string]interface{}{"username": "alice"}); err == nil {
		t.Error("DeleteOne accepted an unknown collection")
	}
}

func TestMongoDBClient_PingWithoutConnection(t *testing.T) {
	m := newTestClient(t)
	if err := m.Ping(context.Background()); err == nil {
		t.Error("expected error when pinging without a connection")
	}
}
