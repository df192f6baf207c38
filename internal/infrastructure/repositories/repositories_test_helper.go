package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		profile_photo TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createLeadTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE leads (
		id TEXT PRIMARY KEY,
		leadgen_id TEXT NOT NULL UNIQUE,
		form_id TEXT NOT NULL,
		form_name TEXT,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT,
		budget TEXT,
		plot_size TEXT,
		city TEXT,
		status TEXT NOT NULL DEFAULT 'New',
		category TEXT NOT NULL DEFAULT 'none',
		source TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE lead_assignees (
		lead_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		created_at DATETIME,
		PRIMARY KEY (lead_id, user_id)
	);`)
	mustExec(t, db, `CREATE TABLE lead_assignment_events (
		id TEXT PRIMARY KEY,
		lead_id TEXT NOT NULL,
		assigned_to TEXT,
		assigned_by TEXT NOT NULL,
		note TEXT,
		action TEXT NOT NULL,
		unassigned_from TEXT,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE lead_status_events (
		id TEXT PRIMARY KEY,
		lead_id TEXT NOT NULL,
		status TEXT NOT NULL,
		changed_by TEXT NOT NULL,
		info TEXT,
		created_at DATETIME
	);`)
}

func createActivityTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE activities (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		action TEXT NOT NULL,
		details TEXT,
		ip_address TEXT,
		user_agent TEXT,
		created_at DATETIME
	);`)
}

func createPostTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE posts (
		id TEXT PRIMARY KEY,
		author_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE post_likes (
		post_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		liked_at DATETIME,
		PRIMARY KEY (post_id, user_id)
	);`)
	mustExec(t, db, `CREATE TABLE post_edits (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL,
		previous_content TEXT NOT NULL,
		edited_by TEXT NOT NULL,
		edited_at DATETIME
	);`)
}
