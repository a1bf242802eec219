package core

import (
	"strings"
	"time"
)

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusVerified TransactionStatus = "verified"
	TransactionStatusRejected TransactionStatus = "rejected"
)

// Principal is the authenticated caller resolved by the identity verifier.
// It is constructed per request and never persisted.
type Principal struct {
	ID     string
	Email  string
	Name   string
	Claims map[string]any
}

func (p Principal) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrPrincipalRequired
	}
	return nil
}

// Transaction is the owner-scoped resource the confirmation flow operates
// on. TokenCommitment, TokenExpiry and TokenUsed together form the token
// sub-state: nil commitment means no token was ever minted (or the row was
// reset), a set commitment with TokenUsed=false and a future expiry is the
// single live token, and anything else is terminal for that token instance.
type Transaction struct {
	ID              string
	OwnerID         string
	Status          TransactionStatus
	Amount          int64
	Currency        string
	Description     string
	TokenCommitment *string
	TokenExpiry     *time.Time
	TokenUsed       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (t Transaction) HasLiveToken(now time.Time) bool {
	if t.TokenCommitment == nil || strings.TrimSpace(*t.TokenCommitment) == "" {
		return false
	}
	if t.TokenUsed {
		return false
	}
	if t.TokenExpiry == nil {
		return false
	}
	return now.Before(*t.TokenExpiry)
}

// Profile is the business profile row proxied through report-data.
type Profile struct {
	OwnerID      string
	BusinessName string
	Email        string
	CreatedAt    time.Time
}

// ProofUpload is an inbound proof file buffered in memory for the duration
// of the request only.
type ProofUpload struct {
	TransactionID string
	FileName      string
	ContentType   string
	Size          int64
	Data          []byte
}

// ProofReceipt describes the stored proof handoff.
type ProofReceipt struct {
	ID            string
	TransactionID string
	ContentType   string
	Size          int64
	Digest        string
	CreatedAt     time.Time
}

// ConfirmationLink is the mint result handed back to the owner. The raw
// token only ever travels inside the link; the persisted trace is the
// commitment digest on the transaction row.
type ConfirmationLink struct {
	TransactionID string
	Link          string
	Commitment    string
	ExpiresAt     time.Time
}

// Report is the profile plus verified-transaction aggregate for a caller.
type Report struct {
	Profile       Profile
	Transactions  []Transaction
	VerifiedCount int
	VerifiedTotal int64
}

type SetConfirmationInput struct {
	TransactionID string
	Commitment    string
	ExpiresAt     time.Time
}

type RedeemAttempt struct {
	TransactionID string
	Commitment    string
	Now           time.Time
}

type SaveProofInput struct {
	TransactionID string
	FileName      string
	ContentType   string
	Size          int64
	Digest        string
	Payload       []byte
}
