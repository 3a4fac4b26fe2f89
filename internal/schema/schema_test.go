package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/catalog/internal/catalog"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApply_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	require.NoError(t, Apply(ctx, db))

	version, err := Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, version)

	for _, name := range TableNames() {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n))
		assert.Equal(t, 1, n, "table %s", name)
	}
	for _, name := range TriggerNames() {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'trigger' AND name = ?", name).Scan(&n))
		assert.Equal(t, 1, n, "trigger %s", name)
	}
}

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	require.NoError(t, Apply(ctx, db))
	_, err := db.Exec("INSERT INTO studios (name, position) VALUES ('s', 0)")
	require.NoError(t, err)

	require.NoError(t, Apply(ctx, db))

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM studios").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestApply_RejectsNewerFile(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", CurrentVersion+1))
	require.NoError(t, err)

	err = Apply(ctx, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestClassify(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	require.NoError(t, Apply(ctx, db))
	_, err := db.Exec("INSERT INTO studios (name, position) VALUES ('s', 0)")
	require.NoError(t, err)

	tests := []struct {
		name    string
		stmt    string
		kind    catalog.Kind
		message string
	}{
		{"duplicate key", "INSERT INTO studios (name, position) VALUES ('s', 1)", catalog.KindConstraint, "duplicate key"},
		{"missing parent", "INSERT INTO games (name, studio, position) VALUES ('g', 'absent', 0)", catalog.KindConstraint, "missing parent"},
		{"check", "INSERT INTO studios (name, position) VALUES ('t', -1)", catalog.KindConstraint, "check failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.ExecContext(ctx, tt.stmt)
			require.Error(t, err)

			classified := Classify("test", err)
			assert.True(t, catalog.IsKind(classified, tt.kind), "got %v", classified)
			assert.Contains(t, classified.Error(), tt.message+": ")
			assert.Equal(t, 1, strings.Count(classified.Error(), "constraint failed"), "driver text appears once: %v", classified)
		})
	}
}

func TestClassify_TriggerAbort(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	require.NoError(t, Apply(ctx, db))

	for _, stmt := range []string{
		"INSERT INTO studios (name, position) VALUES ('s', 0)",
		"INSERT INTO games (name, studio, position) VALUES ('g', 's', 0)",
		"INSERT INTO maps (name, game, position) VALUES ('m', 'g', 0)",
		"INSERT INTO tabs (name, map, game, position) VALUES ('t', 'm', 'g', 0)",
		"INSERT INTO tools (name, tab, map, game, position) VALUES ('tl', 't', 'm', 'g', 0)",
		"INSERT INTO galleries (name, tool, tab, map, game, position) VALUES ('a', 'tl', 't', 'm', 'g', 0)",
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	_, err := db.Exec("INSERT INTO subgalleries (slave, master, tool, tab, map, game) VALUES ('a', 'absent', 'tl', 't', 'm', 'g')")
	require.Error(t, err)

	classified := Classify("link gallery", err)
	assert.True(t, catalog.IsConstraintViolation(classified))
	assert.Equal(t, "link gallery: CONSTRAINT_VIOLATION: subgallery master does not exist", classified.Error())
}

func TestClassify_PassThrough(t *testing.T) {
	assert.NoError(t, Classify("op", nil))

	already := catalog.NewError(catalog.KindValidation, "insert", "bad", nil)
	assert.Same(t, already, Classify("op", already))

	notFound := Classify("read tool", sql.ErrNoRows)
	assert.True(t, catalog.IsNotFound(notFound))

	other := Classify("read tool", errors.New("boom"))
	assert.Equal(t, "read tool: boom", other.Error())
}

func TestRegistry_Tables(t *testing.T) {
	r := New()

	ordered := r.Ordered()
	names := make([]string, len(ordered))
	for i, tbl := range ordered {
		names[i] = tbl.Name
	}
	assert.Equal(t, []string{Studios, Games, Maps, Tabs, Tools, Galleries, Media, Labels}, names)

	assert.Equal(t, "name = ? AND tool = ? AND tab = ? AND map = ? AND game = ?", r.Galleries().KeyWhere(""))
	assert.Equal(t, "g.tool = ? AND g.tab = ? AND g.map = ? AND g.game = ?", r.Galleries().ParentWhere("g"))
	assert.Equal(t, "1 = 1", r.Studios().ParentWhere(""))
	assert.Equal(t, "m.game", r.Maps().ParentList("m"))
	assert.Equal(t, "tool, tab, map, game", r.Galleries().ParentList(""))

	require.NotNil(t, r.Media().Edge)
	assert.Equal(t, MediaVariants, r.Media().Edge.Table)
	assert.Nil(t, r.Tools().Edge)
	assert.Equal(t, "text", r.Labels().NameColumn)
}
