package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"apidelta/internal/errors"
	"apidelta/internal/surface"
)

// Baseline is the metadata of one stored surface snapshot
type Baseline struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Source      string    `json:"source"`
	NodeCount   int       `json:"nodeCount"`
	ExportCount int       `json:"exportCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Save records a surface snapshot under a label. Saving an existing label
// replaces its snapshot; the baseline keeps its identity, not its history.
func (s *Store) Save(label string, mod *surface.Module) (*Baseline, error) {
	if label == "" {
		return nil, errors.New(errors.StoreFailure, "baseline label must not be empty", nil)
	}
	if mod == nil {
		return nil, errors.New(errors.StoreFailure, "cannot save a nil surface", nil)
	}

	data, err := json.Marshal(mod)
	if err != nil {
		return nil, errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot encode surface for baseline %q", label), err)
	}

	baseline := &Baseline{
		ID:          uuid.NewString(),
		Label:       label,
		Source:      mod.Filename,
		NodeCount:   len(mod.Nodes),
		ExportCount: len(mod.Exports),
		CreatedAt:   time.Now().UTC(),
	}

	err = s.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO baselines (id, label, source, node_count, export_count, created_at, snapshot)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(label) DO UPDATE SET
				source = excluded.source,
				node_count = excluded.node_count,
				export_count = excluded.export_count,
				created_at = excluded.created_at,
				snapshot = excluded.snapshot
		`,
			baseline.ID,
			baseline.Label,
			baseline.Source,
			baseline.NodeCount,
			baseline.ExportCount,
			baseline.CreatedAt.Format(time.RFC3339),
			s.compress(data),
		)
		return err
	})
	if err != nil {
		return nil, errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot save baseline %q", label), err)
	}

	s.logger.Info("Baseline saved", map[string]interface{}{
		"label":   label,
		"source":  baseline.Source,
		"nodes":   baseline.NodeCount,
		"exports": baseline.ExportCount,
	})
	return baseline, nil
}

// Load retrieves a baseline surface by label
func (s *Store) Load(label string) (*surface.Module, *Baseline, error) {
	var (
		baseline  Baseline
		createdAt string
		blob      []byte
	)
	err := s.conn.QueryRow(`
		SELECT id, label, source, node_count, export_count, created_at, snapshot
		FROM baselines WHERE label = ?
	`, label).Scan(
		&baseline.ID,
		&baseline.Label,
		&baseline.Source,
		&baseline.NodeCount,
		&baseline.ExportCount,
		&createdAt,
		&blob,
	)
	if err == sql.ErrNoRows {
		return nil, nil, errors.New(errors.BaselineMissing,
			fmt.Sprintf("no baseline named %q", label), nil)
	}
	if err != nil {
		return nil, nil, errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot read baseline %q", label), err)
	}

	baseline.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	data, err := s.decompress(blob)
	if err != nil {
		return nil, nil, errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot decompress baseline %q", label), err)
	}

	var mod surface.Module
	if err := json.Unmarshal(data, &mod); err != nil {
		return nil, nil, errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot decode baseline %q", label), err)
	}
	return &mod, &baseline, nil
}

// List returns all baselines, newest first
func (s *Store) List() ([]Baseline, error) {
	rows, err := s.conn.Query(`
		SELECT id, label, source, node_count, export_count, created_at
		FROM baselines
		ORDER BY created_at DESC, label ASC
	`)
	if err != nil {
		return nil, errors.New(errors.StoreFailure, "cannot list baselines", err)
	}
	defer rows.Close()

	var baselines []Baseline
	for rows.Next() {
		var (
			b         Baseline
			createdAt string
		)
		if err := rows.Scan(&b.ID, &b.Label, &b.Source, &b.NodeCount, &b.ExportCount, &createdAt); err != nil {
			return nil, errors.New(errors.StoreFailure, "cannot scan baseline row", err)
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		baselines = append(baselines, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.StoreFailure, "cannot list baselines", err)
	}
	return baselines, nil
}

// Delete removes a baseline by label
func (s *Store) Delete(label string) error {
	result, err := s.conn.Exec("DELETE FROM baselines WHERE label = ?", label)
	if err != nil {
		return errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot delete baseline %q", label), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot delete baseline %q", label), err)
	}
	if affected == 0 {
		return errors.New(errors.BaselineMissing,
			fmt.Sprintf("no baseline named %q", label), nil)
	}

	s.logger.Info("Baseline deleted", map[string]interface{}{
		"label": label,
	})
	return nil
}
