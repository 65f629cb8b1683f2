package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// Journal records transfer runs and the outcome of each write batch.
//
// It is a record only. A failed transfer is not resumed; LastBatch tells the user how far the
// destination library was updated before the failure.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// NewJournal creates a Journal over a migrated database.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Begin inserts a running transfer and returns it with a generated ID.
func (j *Journal) Begin(itemCount, batchCount int) (*models.Transfer, error) {
	t := &models.Transfer{
		ID:         shared.GenerateID(),
		ItemCount:  itemCount,
		BatchCount: batchCount,
		LastBatch:  -1,
		Status:     models.TransferRunning,
		StartedAt:  j.now(),
	}

	query := `
		INSERT INTO transfers (id, item_count, batch_count, last_batch, status, error, started_at)
		VALUES (?, ?, ?, ?, ?, '', ?)
	`
	if _, err := j.db.Exec(query, t.ID, t.ItemCount, t.BatchCount, t.LastBatch, t.Status, t.StartedAt); err != nil {
		return nil, fmt.Errorf("%w: insert transfer: %v", shared.ErrStorage, err)
	}
	return t, nil
}

// RecordBatch stores the outcome of one batch. A completed batch advances the transfer's last_batch.
func (j *Journal) RecordBatch(b models.TransferBatch) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = j.now()
	}

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", shared.ErrStorage, err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO transfer_batches (transfer_id, batch_index, size, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, b.TransferID, b.Index, b.Size, b.Status, b.Error, b.CreatedAt); err != nil {
		return fmt.Errorf("%w: insert batch %d: %v", shared.ErrStorage, b.Index, err)
	}

	if b.Status == models.TransferCompleted {
		if _, err := tx.Exec(
			"UPDATE transfers SET last_batch = MAX(last_batch, ?) WHERE id = ?", b.Index, b.TransferID,
		); err != nil {
			return fmt.Errorf("%w: advance last batch: %v", shared.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit batch %d: %v", shared.ErrStorage, b.Index, err)
	}
	return nil
}

// Finish marks the transfer completed, or failed with cause when cause is non-nil.
func (j *Journal) Finish(id string, cause error) error {
	status, msg := models.TransferCompleted, ""
	if cause != nil {
		status, msg = models.TransferFailed, cause.Error()
	}

	res, err := j.db.Exec(
		"UPDATE transfers SET status = ?, error = ?, finished_at = ? WHERE id = ?", status, msg, j.now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: finish transfer: %v", shared.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: transfer %s not found", shared.ErrStorage, id)
	}
	return nil
}

// Get returns one transfer by ID.
func (j *Journal) Get(id string) (*models.Transfer, error) {
	row := j.db.QueryRow(transferSelect+" WHERE id = ?", id)
	t, err := scanTransfer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transfer %s not found", shared.ErrStorage, id)
	}
	return t, err
}

// List returns the most recent transfers first. A limit <= 0 returns all of them.
func (j *Journal) List(limit int) ([]*models.Transfer, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.Query(transferSelect+" ORDER BY started_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list transfers: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var transfers []*models.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate transfers: %v", shared.ErrStorage, err)
	}
	return transfers, nil
}

// Batches returns the recorded batches of a transfer in index order.
func (j *Journal) Batches(transferID string) ([]models.TransferBatch, error) {
	rows, err := j.db.Query(`
		SELECT transfer_id, batch_index, size, status, error, created_at
		FROM transfer_batches
		WHERE transfer_id = ?
		ORDER BY batch_index
	`, transferID)
	if err != nil {
		return nil, fmt.Errorf("%w: list batches: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var batches []models.TransferBatch
	for rows.Next() {
		var b models.TransferBatch
		if err := rows.Scan(&b.TransferID, &b.Index, &b.Size, &b.Status, &b.Error, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan batch: %v", shared.ErrStorage, err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate batches: %v", shared.ErrStorage, err)
	}
	return batches, nil
}

const transferSelect = `
	SELECT id, item_count, batch_count, last_batch, status, error, started_at, finished_at
	FROM transfers
`

func scanTransfer(s rowScanner) (*models.Transfer, error) {
	var (
		t        models.Transfer
		finished sql.NullTime
	)
	err := s.Scan(&t.ID, &t.ItemCount, &t.BatchCount, &t.LastBatch, &t.Status, &t.Error, &t.StartedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan transfer: %v", shared.ErrStorage, err)
	}
	t.FinishedAt = nullTime(finished)
	return &t, nil
}
