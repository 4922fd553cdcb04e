package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"apidelta/internal/change"
	"apidelta/internal/errors"
	"apidelta/internal/policy"
)

// ReportSummary is the listing metadata of one stored classification run
type ReportSummary struct {
	ID          string             `json:"id"`
	Policy      string             `json:"policy"`
	Verdict     change.ReleaseType `json:"verdict"`
	OldRef      string             `json:"oldRef,omitempty"`
	NewRef      string             `json:"newRef,omitempty"`
	ChangeCount int                `json:"changeCount"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// SaveReport records a classification report for later review
func (s *Store) SaveReport(r *policy.Report) error {
	if r == nil {
		return errors.New(errors.StoreFailure, "cannot save a nil report", nil)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot encode report %s", r.ID), err)
	}

	err = s.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO reports (id, policy, verdict, old_ref, new_ref, change_count, generated_at, payload)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			r.ID,
			r.Policy,
			string(r.Verdict),
			r.OldRef,
			r.NewRef,
			len(r.Changes),
			r.GeneratedAt.Format(time.RFC3339),
			s.compress(data),
		)
		return err
	})
	if err != nil {
		return errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot save report %s", r.ID), err)
	}

	s.logger.Info("Report saved", map[string]interface{}{
		"report":  r.ID,
		"policy":  r.Policy,
		"verdict": string(r.Verdict),
	})
	return nil
}

// LoadReport retrieves a stored report by id
func (s *Store) LoadReport(id string) (*policy.Report, error) {
	var blob []byte
	err := s.conn.QueryRow("SELECT payload FROM reports WHERE id = ?", id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.StoreFailure,
			fmt.Sprintf("no report with id %q", id), nil)
	}
	if err != nil {
		return nil, errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot read report %q", id), err)
	}

	data, err := s.decompress(blob)
	if err != nil {
		return nil, errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot decompress report %q", id), err)
	}

	var r policy.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.New(errors.StoreFailure,
			fmt.Sprintf("cannot decode report %q", id), err)
	}
	return &r, nil
}

// ListReports returns report summaries, newest first, bounded by limit
// (0 means no bound)
func (s *Store) ListReports(limit int) ([]ReportSummary, error) {
	query := `
		SELECT id, policy, verdict, old_ref, new_ref, change_count, generated_at
		FROM reports
		ORDER BY generated_at DESC, id ASC
	`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.conn.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = s.conn.Query(query)
	}
	if err != nil {
		return nil, errors.New(errors.StoreFailure, "cannot list reports", err)
	}
	defer rows.Close()

	var summaries []ReportSummary
	for rows.Next() {
		var (
			sum         ReportSummary
			verdict     string
			generatedAt string
		)
		if err := rows.Scan(&sum.ID, &sum.Policy, &verdict, &sum.OldRef, &sum.NewRef, &sum.ChangeCount, &generatedAt); err != nil {
			return nil, errors.New(errors.StoreFailure, "cannot scan report row", err)
		}
		sum.Verdict = change.ReleaseType(verdict)
		sum.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.StoreFailure, "cannot list reports", err)
	}
	return summaries, nil
}
