package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-confirm/core"
)

type TransactionStore struct {
	db   *bun.DB
	repo repository.Repository[*transactionRecord]
}

func NewTransactionStore(db *bun.DB) (*TransactionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*transactionRecord](db, transactionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid transaction repository wiring: %w", err)
		}
	}
	return &TransactionStore{db: db, repo: repo}, nil
}

func (s *TransactionStore) Get(ctx context.Context, id string) (core.Transaction, error) {
	if s == nil || s.repo == nil {
		return core.Transaction{}, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.Transaction{}, fmt.Errorf("sqlstore: transaction id is required")
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return core.Transaction{}, core.ErrTransactionNotFound
		}
		return core.Transaction{}, err
	}
	return record.toDomain(), nil
}

func (s *TransactionStore) GetByCommitment(ctx context.Context, id string, commitment string) (core.Transaction, error) {
	if s == nil || s.repo == nil {
		return core.Transaction{}, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	id = strings.TrimSpace(id)
	commitment = strings.TrimSpace(commitment)
	if id == "" || commitment == "" {
		return core.Transaction{}, core.ErrTransactionNotFound
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("id", "=", id),
		repository.SelectBy("token_commitment", "=", commitment),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(records) == 0 {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	return records[0].toDomain(), nil
}

func (s *TransactionStore) ListVerifiedByOwner(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("sqlstore: owner id is required")
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("owner_id", "=", ownerID),
		repository.SelectBy("status", "=", string(core.TransactionStatusVerified)),
		repository.OrderBy("created_at DESC"),
	)
	if err != nil {
		return nil, err
	}
	transactions := make([]core.Transaction, 0, len(records))
	for _, record := range records {
		transactions = append(transactions, record.toDomain())
	}
	return transactions, nil
}

// SetConfirmation writes a fresh commitment over whatever was there before.
// Replacing the commitment implicitly invalidates any previously issued
// token for the row, since redemption looks rows up by (id, commitment).
func (s *TransactionStore) SetConfirmation(ctx context.Context, in core.SetConfirmationInput) (core.Transaction, error) {
	if s == nil || s.db == nil {
		return core.Transaction{}, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	id := strings.TrimSpace(in.TransactionID)
	if id == "" {
		return core.Transaction{}, fmt.Errorf("sqlstore: transaction id is required")
	}
	commitment := strings.TrimSpace(in.Commitment)
	if commitment == "" {
		return core.Transaction{}, fmt.Errorf("sqlstore: token commitment is required")
	}
	if in.ExpiresAt.IsZero() {
		return core.Transaction{}, fmt.Errorf("sqlstore: token expiry is required")
	}

	result, err := s.db.NewUpdate().
		Model((*transactionRecord)(nil)).
		Set("token_commitment = ?", commitment).
		Set("token_expiry = ?", in.ExpiresAt.UTC()).
		Set("token_used = ?", false).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return core.Transaction{}, err
	}
	if affected == 0 {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	return s.Get(ctx, id)
}

// Redeem is the compare-and-set the whole redemption flow hangs on: the
// used flag, the commitment match and the stored expiry are all re-checked
// in the update predicate, so a concurrent redemption of the same token
// loses by affecting zero rows.
func (s *TransactionStore) Redeem(ctx context.Context, attempt core.RedeemAttempt) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	id := strings.TrimSpace(attempt.TransactionID)
	commitment := strings.TrimSpace(attempt.Commitment)
	if id == "" || commitment == "" {
		return false, fmt.Errorf("sqlstore: transaction id and commitment are required")
	}
	now := attempt.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result, err := s.db.NewUpdate().
		Model((*transactionRecord)(nil)).
		Set("status = ?", string(core.TransactionStatusVerified)).
		Set("token_used = ?", true).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("token_commitment = ?", commitment).
		Where("token_used = ?", false).
		Where("token_expiry > ?", now).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Create exists for hosts seeding transaction rows; the confirmation core
// itself never creates or deletes transactions.
func (s *TransactionStore) Create(ctx context.Context, txn core.Transaction) (core.Transaction, error) {
	if s == nil || s.repo == nil {
		return core.Transaction{}, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	if strings.TrimSpace(txn.OwnerID) == "" {
		return core.Transaction{}, fmt.Errorf("sqlstore: owner id is required")
	}
	status := txn.Status
	if strings.TrimSpace(string(status)) == "" {
		status = core.TransactionStatusPending
	}
	now := time.Now().UTC()
	record := &transactionRecord{
		ID:          strings.TrimSpace(txn.ID),
		OwnerID:     strings.TrimSpace(txn.OwnerID),
		Status:      string(status),
		Amount:      txn.Amount,
		Currency:    strings.TrimSpace(txn.Currency),
		Description: txn.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.Transaction{}, err
	}
	return created.toDomain(), nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

var _ core.TransactionStore = (*TransactionStore)(nil)
