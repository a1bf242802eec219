package core

import (
	"context"
	"strings"
)

// OwnedBy is the single ownership predicate. Every owner-scoped operation
// re-derives it from the freshly loaded transaction row; client-asserted
// owner ids are never trusted.
func OwnedBy(principal Principal, txn Transaction) bool {
	principalID := strings.TrimSpace(principal.ID)
	ownerID := strings.TrimSpace(txn.OwnerID)
	if principalID == "" || ownerID == "" {
		return false
	}
	return principalID == ownerID
}

// Authenticate resolves a bearer credential through the identity verifier.
// An absent or rejected credential is Unauthenticated; verifier transport
// faults surface as Internal.
func (s *Service) Authenticate(ctx context.Context, credential string) (Principal, error) {
	if s == nil || s.identityVerifier == nil {
		return Principal{}, s.mapError(errInternal("core: identity verifier is required"))
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Principal{}, s.mapError(ErrUnauthenticated)
	}

	principal, err := s.identityVerifier.Verify(ctx, credential)
	if err != nil {
		return Principal{}, s.mapError(err)
	}
	if err := principal.Validate(); err != nil {
		return Principal{}, s.mapError(ErrUnauthenticated)
	}
	return principal, nil
}

// AuthorizeOwner loads the transaction and verifies the caller owns it.
// Mandatory before every state-mutating or token-minting operation.
func (s *Service) AuthorizeOwner(ctx context.Context, principal Principal, transactionID string) (Transaction, error) {
	if s == nil || s.transactionStore == nil {
		return Transaction{}, s.mapError(errInternal("core: transaction store is required"))
	}
	if err := principal.Validate(); err != nil {
		return Transaction{}, s.mapError(ErrUnauthenticated)
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return Transaction{}, s.mapError(errBadInput("core: transaction id is required"))
	}

	txn, err := s.transactionStore.Get(ctx, transactionID)
	if err != nil {
		return Transaction{}, s.mapError(err)
	}
	if !OwnedBy(principal, txn) {
		s.logWarn(ctx, "ownership check rejected", map[string]any{
			"transaction_id": txn.ID,
			"principal_id":   principal.ID,
			"claims":         RedactClaims(principal.Claims),
		})
		return Transaction{}, s.mapError(ErrNotOwner)
	}
	return txn, nil
}
