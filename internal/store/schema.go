package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
	"golang.org/x/mod/semver"
)

// LayoutVersion is the on-disk layout written by this build. Databases
// written by a newer layout are refused instead of being silently rewritten.
const LayoutVersion = "v1.0.0"

const layoutVersionKey = "layout_version"

var (
	partitionsColumns = []*entschema.Column{
		{Name: "key", Type: field.TypeString, Unique: true},
		{Name: "value", Type: field.TypeBytes},
		{Name: "updated_at", Type: field.TypeTime},
	}
	partitionsTable = &entschema.Table{
		Name:       "partitions",
		Columns:    partitionsColumns,
		PrimaryKey: []*entschema.Column{partitionsColumns[0]},
	}

	metaColumns = []*entschema.Column{
		{Name: "key", Type: field.TypeString, Unique: true},
		{Name: "value", Type: field.TypeString},
	}
	metaTable = &entschema.Table{
		Name:       "meta",
		Columns:    metaColumns,
		PrimaryKey: []*entschema.Column{metaColumns[0]},
	}

	llmRequestsColumns = []*entschema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmRequestsTable = &entschema.Table{
		Name:       "llm_requests",
		Columns:    llmRequestsColumns,
		PrimaryKey: []*entschema.Column{llmRequestsColumns[0]},
	}

	tables = []*entschema.Table{partitionsTable, metaTable, llmRequestsTable}
)

func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := entschema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}

// LayoutError reports a database written by a newer build.
type LayoutError struct {
	Found     string
	Supported string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("data layout %s is newer than supported %s; upgrade notepilot", e.Found, e.Supported)
}

// CheckLayout compares a stored layout version with LayoutVersion.
func CheckLayout(found string) error {
	if !semver.IsValid(found) {
		return fmt.Errorf("invalid layout version %q", found)
	}
	if semver.Compare(found, LayoutVersion) > 0 {
		return &LayoutError{Found: found, Supported: LayoutVersion}
	}
	return nil
}

func (s *Store) checkLayout(ctx context.Context) error {
	found, ok, err := s.metaValue(ctx, layoutVersionKey)
	if err != nil {
		return fmt.Errorf("read layout version: %w", err)
	}
	if !ok {
		return s.setMetaValue(ctx, layoutVersionKey, LayoutVersion)
	}
	return CheckLayout(found)
}

func (s *Store) metaValue(ctx context.Context, key string) (string, bool, error) {
	b := entsql.Dialect(s.drv.Dialect())
	query, args := b.Select("value").
		From(b.Table(metaTable.Name)).
		Where(entsql.EQ("key", key)).
		Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return "", false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return "", false, rows.Err()
	}
	var v string
	if err := rows.Scan(&v); err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) setMetaValue(ctx context.Context, key, value string) error {
	query, args := entsql.Dialect(s.drv.Dialect()).
		Insert(metaTable.Name).
		Columns("key", "value").
		Values(key, value).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues()).
		Query()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("write meta %s: %w", key, err)
	}
	return nil
}
