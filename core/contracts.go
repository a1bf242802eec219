package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// IdentityVerifier validates a bearer credential against the external
// identity provider and returns the authenticated principal. The core
// treats it as a black box: any rejection surfaces as Unauthenticated,
// any transport fault as Internal.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (Principal, error)
}

// TransactionStore is the resource-store collaborator for transaction rows.
// Implementations must read rows fresh per call; the core never caches
// ownership or token state.
type TransactionStore interface {
	Get(ctx context.Context, id string) (Transaction, error)

	// GetByCommitment loads the row whose (id, token_commitment) pair
	// matches exactly. A miss covers tampered, foreign and superseded
	// tokens alike and must return ErrTransactionNotFound.
	GetByCommitment(ctx context.Context, id string, commitment string) (Transaction, error)

	ListVerifiedByOwner(ctx context.Context, ownerID string) ([]Transaction, error)

	// SetConfirmation persists a freshly minted commitment, replacing any
	// prior commitment and resetting the used flag. ErrTransactionNotFound
	// when the row does not exist.
	SetConfirmation(ctx context.Context, in SetConfirmationInput) (Transaction, error)

	// Redeem performs the single conditional update of the confirmation
	// flow: set status=verified and token_used=true where the commitment
	// still matches, the token is unused and the stored expiry is in the
	// future. Returns false when zero rows were affected.
	Redeem(ctx context.Context, attempt RedeemAttempt) (bool, error)
}

type ProfileStore interface {
	GetByOwner(ctx context.Context, ownerID string) (Profile, error)
}

// ProofFileStore receives validated proof payloads. Durability concerns
// beyond the handoff are the collaborator's problem.
type ProofFileStore interface {
	Save(ctx context.Context, in SaveProofInput) (ProofReceipt, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]ProofReceipt, error)
}

// TokenEngine mints and verifies confirmation tokens. It is stateless: the
// only durable trace of a minted token is the commitment the caller
// persists on the bound transaction.
type TokenEngine interface {
	Mint(transactionID string) (MintedToken, error)
	Verify(token string) (string, error)
	Commitment(token string) string
}

type MintedToken struct {
	Token         string
	TransactionID string
	Commitment    string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// SecretProvider encrypts proof payloads at rest with the process app key.
type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// StoreProvider is implemented by repository factories that can hand the
// service its stores in one go.
type StoreProvider interface {
	TransactionStore() TransactionStore
	ProfileStore() ProfileStore
	ProofFileStore() ProofFileStore
}
