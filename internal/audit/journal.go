// Package audit keeps an append-only journal of lifecycle events and sync
// outcomes in a local sqlite file, with an xlsx export for operator support.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xuri/excelize/v2"
)

// Entry is one journal record.
type Entry struct {
	ID        int64
	TenantID  string
	Entity    string
	EntityID  string
	Action    string
	Detail    string
	CreatedAt time.Time
}

// Journal is the sqlite-backed audit log.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id TEXT NOT NULL,
		entity TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		action TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_tenant ON audit_log(tenant_id, created_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one event to the journal.
func (j *Journal) Record(ctx context.Context, tenantID, entity, entityID, action, detail string) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO audit_log (tenant_id, entity, entity_id, action, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tenantID, entity, entityID, action, detail, time.Now().UTC(),
	)
	return err
}

// List returns the most recent entries for a tenant, newest first.
func (j *Journal) List(ctx context.Context, tenantID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, tenant_id, entity, entity_id, action, detail, created_at
		FROM audit_log
		WHERE tenant_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		tenantID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Entity, &e.EntityID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var exportColumns = []string{"ID", "Tenant", "Entity", "Entity ID", "Action", "Detail", "Created At"}

// ExportXLSX writes a tenant's journal to an xlsx workbook at path.
func (j *Journal) ExportXLSX(ctx context.Context, tenantID, path string) error {
	entries, err := j.List(ctx, tenantID, 10000)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Audit"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
		_ = f.SetCellStyle(sheet, startCell, endCell, style)
	}

	for i, e := range entries {
		values := []interface{}{
			strconv.FormatInt(e.ID, 10), e.TenantID, e.Entity, e.EntityID,
			e.Action, e.Detail, e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
