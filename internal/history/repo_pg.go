package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres. List-shaped fields are stored as
// JSONB columns on document_analyses.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new history record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO document_analyses (
	file_name, created_at, summary, key_points, deadlines, obligations,
	risks, next_steps, checklist, confidence, storage_key
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	keyPoints, err := marshalJSONB(rec.KeyPoints)
	if err != nil {
		return err
	}
	deadlines, err := marshalJSONB(rec.Deadlines)
	if err != nil {
		return err
	}
	obligations, err := marshalJSONB(rec.Obligations)
	if err != nil {
		return err
	}
	risks, err := marshalJSONB(rec.Risks)
	if err != nil {
		return err
	}
	nextSteps, err := marshalJSONB(rec.NextSteps)
	if err != nil {
		return err
	}
	checklist, err := marshalJSONB(rec.Checklist)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, query,
		rec.FileName,
		rec.CreatedAt,
		rec.Summary,
		keyPoints,
		deadlines,
		obligations,
		risks,
		nextSteps,
		checklist,
		rec.Confidence,
		rec.StorageKey,
	)
	return err
}

// Get returns one record by ID.
func (r *PGRepo) Get(ctx context.Context, id int64) (Record, error) {
	const query = `
SELECT id, file_name, created_at, summary, key_points, deadlines, obligations,
       risks, next_steps, checklist, confidence, storage_key
FROM document_analyses
WHERE id = $1`

	var rec Record
	var keyPoints, deadlines, obligations, risks, nextSteps, checklist []byte
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.FileName,
		&rec.CreatedAt,
		&rec.Summary,
		&keyPoints,
		&deadlines,
		&obligations,
		&risks,
		&nextSteps,
		&checklist,
		&rec.Confidence,
		&rec.StorageKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}

	if err := unmarshalJSONB(keyPoints, &rec.KeyPoints); err != nil {
		return Record{}, fmt.Errorf("record %d key_points: %w", rec.ID, err)
	}
	if err := unmarshalJSONB(deadlines, &rec.Deadlines); err != nil {
		return Record{}, fmt.Errorf("record %d deadlines: %w", rec.ID, err)
	}
	if err := unmarshalJSONB(obligations, &rec.Obligations); err != nil {
		return Record{}, fmt.Errorf("record %d obligations: %w", rec.ID, err)
	}
	if err := unmarshalJSONB(risks, &rec.Risks); err != nil {
		return Record{}, fmt.Errorf("record %d risks: %w", rec.ID, err)
	}
	if err := unmarshalJSONB(nextSteps, &rec.NextSteps); err != nil {
		return Record{}, fmt.Errorf("record %d next_steps: %w", rec.ID, err)
	}
	if err := unmarshalJSONB(checklist, &rec.Checklist); err != nil {
		return Record{}, fmt.Errorf("record %d checklist: %w", rec.ID, err)
	}
	return rec, nil
}

// List returns records newest-first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Record, error) {
	const query = `
SELECT id, file_name, created_at, summary, key_points, deadlines, obligations,
       risks, next_steps, checklist, confidence, storage_key
FROM document_analyses
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var keyPoints, deadlines, obligations, risks, nextSteps, checklist []byte
		if err := rows.Scan(
			&rec.ID,
			&rec.FileName,
			&rec.CreatedAt,
			&rec.Summary,
			&keyPoints,
			&deadlines,
			&obligations,
			&risks,
			&nextSteps,
			&checklist,
			&rec.Confidence,
			&rec.StorageKey,
		); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(keyPoints, &rec.KeyPoints); err != nil {
			return nil, fmt.Errorf("record %d key_points: %w", rec.ID, err)
		}
		if err := unmarshalJSONB(deadlines, &rec.Deadlines); err != nil {
			return nil, fmt.Errorf("record %d deadlines: %w", rec.ID, err)
		}
		if err := unmarshalJSONB(obligations, &rec.Obligations); err != nil {
			return nil, fmt.Errorf("record %d obligations: %w", rec.ID, err)
		}
		if err := unmarshalJSONB(risks, &rec.Risks); err != nil {
			return nil, fmt.Errorf("record %d risks: %w", rec.ID, err)
		}
		if err := unmarshalJSONB(nextSteps, &rec.NextSteps); err != nil {
			return nil, fmt.Errorf("record %d next_steps: %w", rec.ID, err)
		}
		if err := unmarshalJSONB(checklist, &rec.Checklist); err != nil {
			return nil, fmt.Errorf("record %d checklist: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteAll removes every record and returns stored object keys.
func (r *PGRepo) DeleteAll(ctx context.Context) (int64, []string, error) {
	const query = `
DELETE FROM document_analyses
RETURNING storage_key`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	var deleted int64
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return 0, nil, err
		}
		deleted++
		if key != "" {
			keys = append(keys, key)
		}
	}
	return deleted, keys, rows.Err()
}

func marshalJSONB(v any) ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func unmarshalJSONB(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

var _ Repo = (*PGRepo)(nil)
