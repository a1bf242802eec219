package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-confirm/core"
)

// ProofFileStore is the storage collaborator proof payloads are handed to
// after the upload guard accepts them. Payload bytes arrive already
// encrypted when the service carries a secret provider.
type ProofFileStore struct {
	db   *bun.DB
	repo repository.Repository[*proofFileRecord]
}

func NewProofFileStore(db *bun.DB) (*ProofFileStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*proofFileRecord](db, proofFileHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid proof file repository wiring: %w", err)
		}
	}
	return &ProofFileStore{db: db, repo: repo}, nil
}

func (s *ProofFileStore) Save(ctx context.Context, in core.SaveProofInput) (core.ProofReceipt, error) {
	if s == nil || s.repo == nil {
		return core.ProofReceipt{}, fmt.Errorf("sqlstore: proof file store is not configured")
	}
	transactionID := strings.TrimSpace(in.TransactionID)
	if transactionID == "" {
		return core.ProofReceipt{}, fmt.Errorf("sqlstore: transaction id is required")
	}
	if len(in.Payload) == 0 {
		return core.ProofReceipt{}, fmt.Errorf("sqlstore: proof payload is required")
	}

	record := &proofFileRecord{
		ID:            uuid.NewString(),
		TransactionID: transactionID,
		FileName:      strings.TrimSpace(in.FileName),
		ContentType:   strings.TrimSpace(in.ContentType),
		Size:          in.Size,
		Digest:        strings.TrimSpace(in.Digest),
		Payload:       in.Payload,
		CreatedAt:     time.Now().UTC(),
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.ProofReceipt{}, err
	}
	return created.toReceipt(), nil
}

func (s *ProofFileStore) ListByTransaction(ctx context.Context, transactionID string) ([]core.ProofReceipt, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: proof file store is not configured")
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, fmt.Errorf("sqlstore: transaction id is required")
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("transaction_id", "=", transactionID),
		repository.OrderBy("created_at DESC"),
	)
	if err != nil {
		return nil, err
	}
	receipts := make([]core.ProofReceipt, 0, len(records))
	for _, record := range records {
		receipts = append(receipts, record.toReceipt())
	}
	return receipts, nil
}

var _ core.ProofFileStore = (*ProofFileStore)(nil)
