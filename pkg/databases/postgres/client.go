package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/pitboss/accounts/config"
	"github.com/pitboss/accounts/internal/interfaces"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database.
	DefaultMaxOpenConns = 10
	// DefaultMaxIdleConns is the default maximum number of idle connections to the database.
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused.
	DefaultConnMaxLifetime = 30 * time.Second
)

// PostgresDatabaseClient implements the DBClient interface for PostgreSQL databases.
type PostgresDatabaseClient struct {
	db              *sql.DB
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	validTables     map[string]bool
	validFields     map[string]bool
}

// NewPostgresDatabaseClient builds a client from configuration, falling back
// to pool defaults where the config leaves them zero.
func NewPostgresDatabaseClient(dbConfig *config.PostgresConfig) interfaces.DBClient {
	client := &PostgresDatabaseClient{
		MaxOpenConns:    dbConfig.Options.MaxOpenConns,
		MaxIdleConns:    dbConfig.Options.MaxIdleConns,
		ConnMaxLifetime: time.Duration(dbConfig.Options.ConnMaxLifetime),
		validTables:     config.ListToMap(dbConfig.ValidTables),
		validFields:     config.ListToMap(dbConfig.ValidFields),
	}
	if client.MaxOpenConns <= 0 {
		client.MaxOpenConns = DefaultMaxOpenConns
	}
	if client.MaxIdleConns <= 0 {
		client.MaxIdleConns = DefaultMaxIdleConns
	}
	if client.ConnMaxLifetime <= 0 {
		client.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	return client
}

// Connect establishes a connection to a PostgreSQL database.
func (p *PostgresDatabaseClient) Connect(ctx context.Context, dsn string) error {
	var err error
	p.db, err = sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	p.db.SetMaxOpenConns(p.MaxOpenConns)
	p.db.SetMaxIdleConns(p.MaxIdleConns)
	p.db.SetConnMaxLifetime(p.ConnMaxLifetime)

	return p.Ping(ctx)
}

// Disconnect closes the PostgreSQL database connection.
func (p *PostgresDatabaseClient) Disconnect(ctx context.Context) error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// checkNames validates the table and every column name against the
// configured allow-lists, since both are interpolated into query text.
func (p *PostgresDatabaseClient) checkNames(tableName string, columns ...string) error {
	if !p.validTables[tableName] {
		return fmt.Errorf("PostgreSQL client: invalid table name: %s", tableName)
	}
	for _, col := range columns {
		if col == "id" {
			continue
		}
		if !p.validFields[col] {
			return fmt.Errorf("PostgreSQL client: invalid column name: %s", col)
		}
	}
	return nil
}

// InsertOne inserts a single document into a PostgreSQL table.
// 'document' is expected to be a map[string]interface{}.
// It dynamically builds the INSERT query.
func (p *PostgresDatabaseClient) InsertOne(ctx context.Context, tableName string, document interfaces.Document) (interface{}, error) {
	docMap, ok := document.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("PostgreSQL InsertOne expects document to be map[string]interface{}")
	}

	// Generate UUID for 'id' if not present in the document
	if _, exists := docMap["id"]; !exists {
		docMap["id"] = uuid.New().String()
	}

	columns := make([]string, 0, len(docMap))
	placeholders := make([]string, 0, len(docMap))
	values := make([]interface{}, 0, len(docMap))

	i := 1
	for col, val := range docMap {
		columns = append(columns, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i))
		values = append(values, val)
		i++
	}
	if err := p.checkNames(tableName, columns...); err != nil {
		return nil, err
	}

	// Table and column names passed the allow-list; only values are parameterized.
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	) // #nosec G201

	var insertedID interface{} // Can be string (UUID), int, etc.
	err := p.db.QueryRowContext(ctx, query, values...).Scan(&insertedID)
	if err != nil {
		return nil, err
	}
	return insertedID, nil
}

// FindOne retrieves a single document from a PostgreSQL table.
// 'filter' is expected to be a map[string]interface{} for the WHERE clause.
// 'result' is a pointer to a struct; columns are resolved from each field's
// `db` tag (falling back to the lowercased field name) and scanned by
// reflection. When no row matches, the returned error wraps sql.ErrNoRows.
func (p *PostgresDatabaseClient) FindOne(ctx context.Context, tableName string, filter interfaces.Document, result interfaces.Document) error {
	filterMap, ok := filter.(map[string]interface{})
	if !ok {
		return fmt.Errorf("PostgreSQL FindOne expects filter to be map[string]interface{}")
	}
	if len(filterMap) == 0 {
		return fmt.Errorf("PostgreSQL FindOne requires a non-empty filter")
	}

	// Build WHERE clause
	whereClauses := make([]string, 0, len(filterMap))
	whereValues := make([]interface{}, 0, len(filterMap))
	paramCount := 1
	for col, val := range filterMap {
		if err := p.checkNames(tableName, col); err != nil {
			return err
		}
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", col, paramCount))
		whereValues = append(whereValues, val)
		paramCount++
	}
	whereString := strings.Join(whereClauses, " AND ")

	// Use reflection to get fields from the 'result' struct for SELECT and Scan
	resultValue := reflect.ValueOf(result)
	if resultValue.Kind() != reflect.Ptr || resultValue.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("result must be a pointer to a struct")
	}
	elem := resultValue.Elem()
	numFields := elem.NumField()

	columns := make([]string, numFields)
	fieldPointers := make([]interface{}, numFields) // Pointers to fields in the struct for Scan()

	for i := 0; i < numFields; i++ {
		field := elem.Type().Field(i)
		col := field.Tag.Get("db")
		if col == "" {
			col = strings.ToLower(field.Name)
		}
		columns[i] = col
		fieldPointers[i] = elem.Field(i).Addr().Interface()
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT 1",
		strings.Join(columns, ", "),
		tableName,
		whereString,
	) // #nosec G201

	row := p.db.QueryRowContext(ctx, query, whereValues...)
	err := row.Scan(fieldPointers...)
	if err == sql.ErrNoRows {
		return fmt.Errorf("PostgreSQL FindOne: no row found in %s: %w", tableName, err)
	}
	return err
}

// FindMany retrieves multiple documents from a PostgreSQL table.
// 'filter' is expected to be a map[string]interface{}; an empty filter
// selects every row. Each row is returned as a map[string]interface{}.
func (p *PostgresDatabaseClient) FindMany(ctx context.Context, tableName string, filter interfaces.Document) ([]interfaces.Document, error) {
	filterMap, ok := filter.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("PostgreSQL FindMany expects filter to be map[string]interface{}")
	}

	whereClauses := make([]string, 0, len(filterMap))
	whereValues := make([]interface{}, 0, len(filterMap))
	paramCount := 1
	for col, val := range filterMap {
		if err := p.checkNames(tableName, col); err != nil {
			return nil, err
		}
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", col, paramCount))
		whereValues = append(whereValues, val)
		paramCount++
	}
	if err := p.checkNames(tableName); err != nil {
		return nil, err
	}
	whereString := ""
	if len(whereClauses) > 0 {
		whereString = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := fmt.Sprintf("SELECT * FROM %s%s", tableName, whereString) // #nosec G201

	rows, err := p.db.QueryContext(ctx, query, whereValues...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []interfaces.Document
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		columnPointers := make([]interface{}, len(columns))
		columnValues := make([]interface{}, len(columns))
		for i := range columns {
			columnPointers[i] = &columnValues[i]
		}

		if err := rows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		rowMap := make(map[string]interface{})
		for i, colName := range columns {
			val := columnValues[i]
			if b, ok := val.([]byte); ok { // Handle byte slices for string-like types
				rowMap[colName] = string(b)
			} else {
				rowMap[colName] = val
			}
		}
		results = append(results, rowMap)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateOne updates a single document in a PostgreSQL table.
// 'filter' and 'update' are expected to be map[string]interface{}.
func (p *PostgresDatabaseClient) UpdateOne(ctx context.Context, tableName string, filter interfaces.Document, update interfaces.Document) (int64, error) {
	filterMap, ok := filter.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("PostgreSQL UpdateOne expects filter to be map[string]interface{}")
	}
	updateMap, ok := update.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("PostgreSQL UpdateOne expects update to be map[string]interface{}")
	}

	setClauses := make([]string, 0, len(updateMap))
	whereClauses := make([]string, 0, len(filterMap))
	values := make([]interface{}, 0, len(updateMap)+len(filterMap))
	paramCount := 1

	for col, val := range updateMap {
		if err := p.checkNames(tableName, col); err != nil {
			return 0, err
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, paramCount))
		values = append(values, val)
		paramCount++
	}

	for col, val := range filterMap {
		if err := p.checkNames(tableName, col); err != nil {
			return 0, err
		}
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", col, paramCount))
		values = append(values, val)
		paramCount++
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		tableName,
		strings.Join(setClauses, ", "),
		strings.Join(whereClauses, " AND "),
	) // #nosec G201

	res, err := p.db.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}

// DeleteOne deletes a single document from a PostgreSQL table.
// 'filter' is expected to be a map[string]interface{}.
func (p *PostgresDatabaseClient) DeleteOne(ctx context.Context, tableName string, filter interfaces.Document) (int64, error) {
	filterMap, ok := filter.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("PostgreSQL DeleteOne expects filter to be map[string]interface{}")
	}

	whereClauses := make([]string, 0, len(filterMap))
	whereValues := make([]interface{}, 0, len(filterMap))
	paramCount := 1
	for col, val := range filterMap {
		if err := p.checkNames(tableName, col); err != nil {
			return 0, err
		}
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", col, paramCount))
		whereValues = append(whereValues, val)
		paramCount++
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s",
		tableName,
		strings.Join(whereClauses, " AND "),
	) // #nosec G201

	res, err := p.db.ExecContext(ctx, query, whereValues...)
	if err != nil {
		return 0, err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}

// DeleteMany deletes multiple documents from a PostgreSQL table.
// 'filter' is expected to be a map[string]interface{}.
func (p *PostgresDatabaseClient) DeleteMany(ctx context.Context, tableName string, filter interfaces.Document) (int64, error) {
	filterMap, ok := filter.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("PostgreSQL DeleteMany expects filter to be map[string]interface{}")
	}

	whereClauses := make([]string, 0, len(filterMap))
	whereValues := make([]interface{}, 0, len(filterMap))
	paramCount := 1
	for col, val := range filterMap {
		if err := p.checkNames(tableName, col); err != nil {
			return 0, err
		}
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", col, paramCount))
		whereValues = append(whereValues, val)
		paramCount++
	}

	whereString := ""
	if len(whereClauses) > 0 {
		whereString = " WHERE " + strings.Join(whereClauses, " AND ")
	}
	if err := p.checkNames(tableName); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s%s", tableName, whereString) // #nosec G201

	res, err := p.db.ExecContext(ctx, query, whereValues...)
	if err != nil {
		return 0, err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}

// Ping checks the health of the PostgreSQL connection.
func (p *PostgresDatabaseClient) Ping(ctx context.Context) error {
	if p.db == nil {
		return fmt.Errorf("PostgresDatabaseClient is not connected")
	}
	return p.db.PingContext(ctx)
}

// EnsureSchema executes a CREATE TABLE statement for the given table.
// Schema definition is the repository's responsibility; DBClient has no
// generic schema language.
func (p *PostgresDatabaseClient) EnsureSchema(ctx context.Context, tableName string, schema interfaces.Document) error {
	if p.db == nil {
		return fmt.Errorf("PostgresDatabaseClient is not connected to a database")
	}
	if err := p.checkNames(tableName); err != nil {
		return err
	}

	createStmt, ok := schema.(string)
	if !ok {
		return fmt.Errorf("EnsureSchema expects schema to be a CREATE TABLE statement string")
	}
	_, err := p.db.ExecContext(ctx, createStmt)
	return err
}
