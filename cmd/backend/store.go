package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var errRecordNotFound = errors.New("record not found")

type account struct {
	ID           int64
	UniqueID     string
	Username     string
	PasswordHash string
	Role         string
	UserName     string
	UserEmail    string
}

type storedRecord struct {
	ID        int64
	UniqueID  string
	Payload   []byte
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// recordBody merges the JSONB payload with the row columns into the flat
// object shape the portal expects on the wire.
func (r storedRecord) recordBody() (map[string]any, error) {
	body := map[string]any{}
	if len(r.Payload) > 0 {
		if err := json.Unmarshal(r.Payload, &body); err != nil {
			return nil, err
		}
	}
	body["id"] = r.ID
	body["unique_id"] = r.UniqueID
	body["is_active"] = r.IsActive
	body["created_at"] = r.CreatedAt.UTC().Format(time.RFC3339)
	body["updated_at"] = r.UpdatedAt.UTC().Format(time.RFC3339)
	return body, nil
}

// refClause picks the lookup column for a path reference: numeric references
// address the serial id, anything else the unique_id.
func refClause(ref string) (string, any) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return "id", id
	}
	return "unique_id::text", ref
}

func (a *App) storeListRecords(ctx context.Context, resource string, page, pageSize int) ([]storedRecord, int, error) {
	var total int
	if err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE resource = $1`, resource,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, unique_id, payload, is_active, created_at, updated_at
		FROM records
		WHERE resource = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`, resource, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []storedRecord
	for rows.Next() {
		var rec storedRecord
		if err := rows.Scan(&rec.ID, &rec.UniqueID, &rec.Payload, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (a *App) storeGetRecord(ctx context.Context, resource, ref string) (storedRecord, error) {
	column, value := refClause(ref)
	var rec storedRecord
	err := a.db.QueryRowContext(ctx, `
		SELECT id, unique_id, payload, is_active, created_at, updated_at
		FROM records
		WHERE resource = $1 AND `+column+` = $2
	`, resource, value).Scan(&rec.ID, &rec.UniqueID, &rec.Payload, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storedRecord{}, errRecordNotFound
	}
	return rec, err
}

func (a *App) storeCreateRecord(ctx context.Context, resource string, payload map[string]any, isActive bool) (storedRecord, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return storedRecord{}, err
	}

	var rec storedRecord
	err = a.db.QueryRowContext(ctx, `
		INSERT INTO records (resource, unique_id, payload, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, unique_id, payload, is_active, created_at, updated_at
	`, resource, uuid.NewString(), body, isActive).Scan(
		&rec.ID, &rec.UniqueID, &rec.Payload, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

func (a *App) storeReplaceRecord(ctx context.Context, resource, ref string, payload map[string]any, isActive bool) (storedRecord, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return storedRecord{}, err
	}

	column, value := refClause(ref)
	var rec storedRecord
	err = a.db.QueryRowContext(ctx, `
		UPDATE records
		SET payload = $3, is_active = $4, updated_at = NOW()
		WHERE resource = $1 AND `+column+` = $2
		RETURNING id, unique_id, payload, is_active, created_at, updated_at
	`, resource, value, body, isActive).Scan(
		&rec.ID, &rec.UniqueID, &rec.Payload, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storedRecord{}, errRecordNotFound
	}
	return rec, err
}

func (a *App) storePatchRecord(ctx context.Context, resource, ref string, patch map[string]any) (storedRecord, error) {
	current, err := a.storeGetRecord(ctx, resource, ref)
	if err != nil {
		return storedRecord{}, err
	}

	payload := map[string]any{}
	if len(current.Payload) > 0 {
		if err := json.Unmarshal(current.Payload, &payload); err != nil {
			return storedRecord{}, err
		}
	}
	isActive := current.IsActive
	for key, value := range patch {
		if key == "is_active" {
			if flag, ok := value.(bool); ok {
				isActive = flag
			}
			continue
		}
		payload[key] = value
	}

	return a.storeReplaceRecord(ctx, resource, ref, payload, isActive)
}

func (a *App) storeDeleteRecord(ctx context.Context, resource, ref string) error {
	column, value := refClause(ref)
	result, err := a.db.ExecContext(ctx,
		`DELETE FROM records WHERE resource = $1 AND `+column+` = $2`, resource, value)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errRecordNotFound
	}
	return nil
}

func (a *App) storeFindAccount(ctx context.Context, username string) (account, error) {
	var acc account
	err := a.db.QueryRowContext(ctx, `
		SELECT id, unique_id, username, password_hash, role, user_name, user_email
		FROM accounts
		WHERE username = $1
	`, username).Scan(&acc.ID, &acc.UniqueID, &acc.Username, &acc.PasswordHash, &acc.Role, &acc.UserName, &acc.UserEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return account{}, errRecordNotFound
	}
	return acc, err
}

func (a *App) storeUpsertAccount(ctx context.Context, username, passwordHash, role string) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO accounts (unique_id, username, password_hash, role, user_name)
		VALUES ($1, $2, $3, $4, $2)
		ON CONFLICT (username)
		DO UPDATE SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role, updated_at = NOW()
	`, uuid.NewString(), username, passwordHash, role)
	return err
}
