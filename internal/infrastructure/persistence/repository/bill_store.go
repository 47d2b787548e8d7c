package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/billed-app/billed-api/internal/application/port"
	"github.com/billed-app/billed-api/internal/domain/entity"
)

// ErrBillNotFound is returned when an update selector matches no record
var ErrBillNotFound = errors.New("bill not found")

// BillStore implements port.Gateway over SQLite. Receipt bytes go through
// the ReceiptStorage port; the bills table keeps only the returned URL.
type BillStore struct {
	db       *sql.DB
	receipts port.ReceiptStorage
	logger   *zap.Logger
}

// NewBillStore creates a new SQLite-backed bill store
func NewBillStore(db *sql.DB, receipts port.ReceiptStorage, logger *zap.Logger) *BillStore {
	return &BillStore{
		db:       db,
		receipts: receipts,
		logger:   logger,
	}
}

const billColumns = `id, email, type, name, amount, vat, pct, date, commentary, comment_admin, file_url, file_name, status`

// List fetches all bills, newest expense first
func (s *BillStore) List(ctx context.Context) ([]entity.Bill, error) {
	query := fmt.Sprintf("SELECT %s FROM bills ORDER BY date DESC, created_at DESC", billColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("Failed to list bills", zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []entity.Bill
	for rows.Next() {
		var b entity.Bill
		if err := rows.Scan(
			&b.ID, &b.Email, &b.Type, &b.Name, &b.Amount, &b.VAT, &b.Pct,
			&b.Date, &b.Commentary, &b.CommentAdmin, &b.FileURL, &b.FileName, &b.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bills: %w", err)
	}

	return bills, nil
}

// Create stores the uploaded receipt and opens a partial bill record around
// it. The generated id doubles as the key the workflow uses for the later
// finalizing Update.
func (s *BillStore) Create(ctx context.Context, req port.CreateRequest) (port.CreateResult, error) {
	id := uuid.NewString()
	objectKey := id + "/" + req.FileName

	fileURL, err := s.receipts.Put(ctx, objectKey, req.Content, req.ContentType)
	if err != nil {
		return port.CreateResult{}, fmt.Errorf("store receipt: %w", err)
	}

	query := `
		INSERT INTO bills (id, email, file_url, file_name, status)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, req.Email, fileURL, req.FileName, entity.StatusPending); err != nil {
		s.logger.Error("Failed to create bill record", zap.String("id", id), zap.Error(err))
		return port.CreateResult{}, fmt.Errorf("failed to create bill: %w", err)
	}

	s.logger.Info("Receipt persisted",
		zap.String("id", id),
		zap.String("file", req.FileName),
		zap.String("email", req.Email))

	return port.CreateResult{FileURL: fileURL, Key: id}, nil
}

// Update writes the serialized bill against the record named by the selector
// and returns the stored row
func (s *BillStore) Update(ctx context.Context, req port.UpdateRequest) (entity.Bill, error) {
	var bill entity.Bill
	if err := json.Unmarshal(req.Data, &bill); err != nil {
		return entity.Bill{}, fmt.Errorf("decode bill payload: %w", err)
	}

	query := `
		UPDATE bills
		SET email = ?, type = ?, name = ?, amount = ?, vat = ?, pct = ?,
			date = ?, commentary = ?, comment_admin = ?, file_url = ?,
			file_name = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		bill.Email, bill.Type, bill.Name, bill.Amount, bill.VAT, bill.Pct,
		bill.Date, bill.Commentary, bill.CommentAdmin, bill.FileURL,
		bill.FileName, bill.Status, req.Selector,
	)
	if err != nil {
		s.logger.Error("Failed to update bill", zap.String("id", req.Selector), zap.Error(err))
		return entity.Bill{}, fmt.Errorf("failed to update bill: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return entity.Bill{}, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return entity.Bill{}, fmt.Errorf("%w: %s", ErrBillNotFound, req.Selector)
	}

	return s.getByID(ctx, req.Selector)
}

// Discard deletes the partial record left by a superseded or abandoned
// upload together with its stored receipt, so it never surfaces as a
// phantom pending bill. Unknown selectors are a no-op.
func (s *BillStore) Discard(ctx context.Context, selector string) error {
	var fileName string
	err := s.db.QueryRowContext(ctx, "SELECT file_name FROM bills WHERE id = ?", selector).Scan(&fileName)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load bill for discard: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", selector); err != nil {
		s.logger.Error("Failed to delete bill record", zap.String("id", selector), zap.Error(err))
		return fmt.Errorf("failed to delete bill: %w", err)
	}

	if err := s.receipts.Delete(ctx, selector+"/"+fileName); err != nil {
		// the row is gone; a stranded object only wastes space
		s.logger.Error("Failed to delete receipt object", zap.String("id", selector), zap.Error(err))
	}

	s.logger.Info("Discarded superseded bill record", zap.String("id", selector))
	return nil
}

func (s *BillStore) getByID(ctx context.Context, id string) (entity.Bill, error) {
	query := fmt.Sprintf("SELECT %s FROM bills WHERE id = ?", billColumns)

	var b entity.Bill
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Email, &b.Type, &b.Name, &b.Amount, &b.VAT, &b.Pct,
		&b.Date, &b.Commentary, &b.CommentAdmin, &b.FileURL, &b.FileName, &b.Status,
	)
	if err == sql.ErrNoRows {
		return entity.Bill{}, fmt.Errorf("%w: %s", ErrBillNotFound, id)
	}
	if err != nil {
		return entity.Bill{}, fmt.Errorf("failed to get bill: %w", err)
	}

	return b, nil
}

var _ port.Gateway = (*BillStore)(nil)
