package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pitboss/accounts/config"
)

func newTestClient() *PostgresDatabaseClient {
	dbClient := NewPostgresDatabaseClient(&config.PostgresConfig{
		ValidTables: []string{"credentials", "profiles"},
		ValidFields: []string{"username", "secret", "balance", "wins", "losses", "total_deposited"},
	})
	return dbClient.(*PostgresDatabaseClient)
}

func TestNewPostgresDatabaseClient_Defaults(t *testing.T) {
	p := newTestClient()

	if p.MaxOpenConns != DefaultMaxOpenConns {
		t.Errorf("MaxOpenConns = %d, want %d", p.MaxOpenConns, DefaultMaxOpenConns)
	}
	if p.MaxIdleConns != DefaultMaxIdleConns {
		t.Errorf("MaxIdleConns = %d, want %d", p.MaxIdleConns, DefaultMaxIdleConns)
	}
	if p.ConnMaxLifetime != DefaultConnMaxLifetime {
		t.Errorf("ConnMaxLifetime = %v, want %v", p.ConnMaxLifetime, DefaultConnMaxLifetime)
	}
}

func TestNewPostgresDatabaseClient_ConfiguredPool(t *testing.T) {
	dbClient := NewPostgresDatabaseClient(&config.PostgresConfig{
		Options: config.PostgresServerOptions{
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: config.Duration(time.Minute),
		},
	})
	p := dbClient.(*PostgresDatabaseClient)

	if p.MaxOpenConns != 25 || p.MaxIdleConns != 10 || p.ConnMaxLifetime != time.Minute {
		t.Errorf("pool settings not taken from config: %+v", p)
	}
}

func TestPostgresDatabaseClient_CheckNames(t *testing.T) {
	p := newTestClient()

	tests := []struct {
		name    string
		table   string
		columns []string
		wantErr bool
	}{
		{
			name:    "valid table and columns",
			table:   "credentials",
			columns: []string{"username", "secret"},
		},
		{
			name:  "table alone",
			table: "profiles",
		},
		{
			name:    "id column is always allowed",
			table:   "credentials",
			columns: []string{"id", "username"},
		},
		{
			name:    "unknown table",
			table:   "sessions",
			wantErr: true,
		},
		{
			name:    "unknown column",
			table:   "credentials",
			columns: []string{"is_admin"},
			wantErr: true,
		},
		{
			name:    "injection in column name",
			table:   "credentials",
			columns: []string{"username; DROP TABLE credentials"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.checkNames(tt.table, tt.columns...)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkNames() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostgresDatabaseClient_RejectsNonMapDocuments(t *testing.T) {
	p := newTestClient()
	ctx := context.Background()

	if _, err := p.InsertOne(ctx, "credentials", "not-a-map"); err == nil {
		t.Error("InsertOne accepted a non-map document")
	}
	if err := p.FindOne(ctx, "credentials", "not-a-map", &struct{}{}); err == nil {
		t.Error("FindOne accepted a non-map filter")
	}
	if _, err := p.UpdateOne(ctx, "credentials", "not-a-map", map[string]interface{}{}); err == nil {
		t.Error("UpdateOne accepted a non-map filter")
	}
	if _, err := p.DeleteOne(ctx, "credentials", "not-a-map"); err == nil {
		t.Error("DeleteOne accepted a non-map filter")
	}
}

func TestPostgresDatabaseClient_FindOneRequiresFilter(t *testing.T) {
	p := newTestClient()

	err := p.FindOne(context.Background(), "credentials", map[string]interface{}{}, &struct{}{})
	if err == nil {
		t.Error("FindOne accepted an empty filter")
	}
}

func TestPostgresDatabaseClient_PingWithoutConnection(t *testing.T) {
	p := newTestClient()
	if err := p.Ping(context.Background()); err == nil {
		t.Error("expected error when pinging without a connection")
	}
}
