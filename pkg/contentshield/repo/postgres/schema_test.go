package postgres_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The repository binds column names in its SQL; every one of them must exist
// in the shipped migration or the statement fails at runtime with an
// undefined-column error.
func TestMigrationCoversRepositoryColumns(t *testing.T) {
	path := filepath.Join("..", "..", "..", "..", "migrations", "postgres", "001_init.sql")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	ddl := string(raw)

	tables := map[string][]string{
		"users": {
			"id", "email", "password_hash", "avatar_url", "role", "created_at",
		},
		"content": {
			"id", "owner_id", "title", "description", "license_type", "allow_download",
			"fingerprint", "object_key", "file_name", "mime_type", "size_bytes", "price",
			"like_count", "comment_count", "created_at", "updated_at",
		},
		"license_requests": {
			"id", "content_id", "requester_id", "owner_id", "status", "created_at", "updated_at",
		},
		"delete_requests": {
			"id", "content_id", "user_id", "reason", "status", "created_at", "updated_at",
		},
		"likes": {
			"id", "content_id", "user_id", "created_at",
		},
		"comments": {
			"id", "content_id", "user_id", "body", "created_at",
		},
	}

	for table, columns := range tables {
		t.Run(table, func(t *testing.T) {
			block := tableDefinition(t, ddl, table)
			for _, column := range columns {
				assert.Regexp(t, `(?m)^\s*`+column+`\s`, block, "column %s.%s missing from migration", table, column)
			}
		})
	}
}

// tableDefinition extracts the CREATE TABLE body for the named table.
func tableDefinition(t *testing.T, ddl, table string) string {
	t.Helper()

	re := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS ` + table + `\s*\((.*?)\n\);`)
	match := re.FindStringSubmatch(ddl)
	require.NotNil(t, match, "table %s not found in migration", table)
	return strings.TrimSpace(match[1])
}
