package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-confirm/core"
)

type transactionRecord struct {
	bun.BaseModel `bun:"table:confirm_transactions,alias:ct"`

	ID              string     `bun:"id,pk"`
	OwnerID         string     `bun:"owner_id,notnull"`
	Status          string     `bun:"status,notnull"`
	Amount          int64      `bun:"amount,notnull"`
	Currency        string     `bun:"currency,notnull"`
	Description     string     `bun:"description"`
	TokenCommitment *string    `bun:"token_commitment"`
	TokenExpiry     *time.Time `bun:"token_expiry,nullzero"`
	TokenUsed       bool       `bun:"token_used,notnull,default:false"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *transactionRecord) toDomain() core.Transaction {
	if r == nil {
		return core.Transaction{}
	}
	txn := core.Transaction{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Status:      core.TransactionStatus(r.Status),
		Amount:      r.Amount,
		Currency:    r.Currency,
		Description: r.Description,
		TokenUsed:   r.TokenUsed,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.TokenCommitment != nil {
		commitment := *r.TokenCommitment
		txn.TokenCommitment = &commitment
	}
	if r.TokenExpiry != nil {
		expiry := *r.TokenExpiry
		txn.TokenExpiry = &expiry
	}
	return txn
}

type profileRecord struct {
	bun.BaseModel `bun:"table:confirm_profiles,alias:cp"`

	OwnerID      string    `bun:"owner_id,pk"`
	BusinessName string    `bun:"business_name,notnull"`
	Email        string    `bun:"email,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *profileRecord) toDomain() core.Profile {
	if r == nil {
		return core.Profile{}
	}
	return core.Profile{
		OwnerID:      r.OwnerID,
		BusinessName: r.BusinessName,
		Email:        r.Email,
		CreatedAt:    r.CreatedAt,
	}
}

type proofFileRecord struct {
	bun.BaseModel `bun:"table:confirm_proof_files,alias:cpf"`

	ID            string    `bun:"id,pk"`
	TransactionID string    `bun:"transaction_id,notnull"`
	FileName      string    `bun:"file_name"`
	ContentType   string    `bun:"content_type,notnull"`
	Size          int64     `bun:"size,notnull"`
	Digest        string    `bun:"digest,notnull"`
	Payload       []byte    `bun:"payload"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *proofFileRecord) toReceipt() core.ProofReceipt {
	if r == nil {
		return core.ProofReceipt{}
	}
	return core.ProofReceipt{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		ContentType:   r.ContentType,
		Size:          r.Size,
		Digest:        r.Digest,
		CreatedAt:     r.CreatedAt,
	}
}
