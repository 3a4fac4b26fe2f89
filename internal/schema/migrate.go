package schema

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - empty file
// 1 - catalog tables, edges, overlays, search tokens and triggers
const CurrentVersion = 1

// Querier runs statements against the catalog. *sql.DB, *sql.Conn, *sql.Tx
// and *store.Tx all satisfy it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type migration struct {
	version int
	name    string
	up      func(ctx context.Context, q Querier) error
}

var migrations = []migration{
	{version: 1, name: "create catalog schema", up: func(ctx context.Context, q Querier) error {
		_, err := q.ExecContext(ctx, schemaSQL)
		return err
	}},
}

// Version reads PRAGMA user_version.
func Version(ctx context.Context, q Querier) (int, error) {
	var version int
	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// Apply runs every migration newer than the file's user_version and records
// the new version. It must run inside the caller's exclusive transaction so
// that a failure leaves the file untouched.
func Apply(ctx context.Context, q Querier) error {
	version, err := Version(ctx, q)
	if err != nil {
		return err
	}
	if version > CurrentVersion {
		return fmt.Errorf("file schema version %d is newer than supported version %d", version, CurrentVersion)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := m.up(ctx, q); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
		version = m.version
	}

	if _, err := q.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", CurrentVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// TableNames lists every table created by the schema.
func TableNames() []string {
	return []string{
		Studios, Games, Maps, Tabs, Tools, Galleries, Subgalleries,
		Media, MediaVariants, Outlines, BoundingCircles, Labels, SearchTokens,
	}
}

// TriggerNames lists every trigger created by the schema.
func TriggerNames() []string {
	return []string{
		"subgalleries_master_exists",
		"subgalleries_master_without_media",
		"media_requires_leaf_gallery",
		"media_variants_master_exists",
		"media_variants_image_only",
		"outlines_image_only",
		"bounding_circles_image_only",
		"labels_image_only",
		"outlines_geometry_group",
		"bounding_circles_geometry_group",
		"labels_geometry_group",
	}
}
