package core

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

// GenerateConfirmation mints a confirmation token for an owner-authorized
// transaction and persists its commitment. A prior live token, if any, is
// superseded by the new commitment.
func (s *Service) GenerateConfirmation(ctx context.Context, principal Principal, transactionID string) (ConfirmationLink, error) {
	if s == nil || s.tokenEngine == nil {
		return ConfirmationLink{}, s.mapError(errInternal("core: token engine is required"))
	}

	txn, err := s.AuthorizeOwner(ctx, principal, transactionID)
	if err != nil {
		return ConfirmationLink{}, err
	}

	minted, err := s.tokenEngine.Mint(txn.ID)
	if err != nil {
		return ConfirmationLink{}, s.mapError(err)
	}

	if _, err := s.transactionStore.SetConfirmation(ctx, SetConfirmationInput{
		TransactionID: txn.ID,
		Commitment:    minted.Commitment,
		ExpiresAt:     minted.ExpiresAt,
	}); err != nil {
		return ConfirmationLink{}, s.mapError(err)
	}

	s.logInfo(ctx, "confirmation token minted", map[string]any{
		"transaction_id": txn.ID,
		"owner_id":       txn.OwnerID,
		"commitment":     commitmentPrefix(minted.Commitment),
		"expires_at":     minted.ExpiresAt,
	})

	return ConfirmationLink{
		TransactionID: txn.ID,
		Link:          s.buildConfirmationLink(minted.Token),
		Commitment:    minted.Commitment,
		ExpiresAt:     minted.ExpiresAt,
	}, nil
}

// Redeem verifies a presented token and, at most once per token instance,
// flips the bound transaction to verified. The store update conditions on
// token_used=false and the stored expiry at write time, so two concurrent
// redemptions cannot both succeed.
func (s *Service) Redeem(ctx context.Context, token string) (string, error) {
	if s == nil || s.tokenEngine == nil || s.transactionStore == nil {
		return "", s.mapError(errInternal("core: redeem requires token engine and transaction store"))
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", s.mapError(errBadInput("core: confirmation token is required"))
	}

	transactionID, err := s.tokenEngine.Verify(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return "", s.mapError(ErrTokenExpired)
		}
		return "", s.mapError(ErrTokenInvalid)
	}
	commitment := s.tokenEngine.Commitment(token)

	txn, err := s.transactionStore.GetByCommitment(ctx, transactionID, commitment)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			// Covers the wrong transaction, a tampered token and a
			// commitment superseded by a later mint.
			return "", s.mapError(ErrTokenInvalid)
		}
		// Store faults stay infrastructure failures, not token rejections.
		return "", s.mapError(err)
	}
	if txn.TokenUsed {
		return "", s.mapError(ErrTokenUsed)
	}
	now := time.Now().UTC()
	if txn.TokenExpiry == nil || !now.Before(*txn.TokenExpiry) {
		// Store-side expiry check, independent of the token's embedded
		// expiry.
		return "", s.mapError(ErrTokenExpired)
	}

	redeemed, err := s.transactionStore.Redeem(ctx, RedeemAttempt{
		TransactionID: txn.ID,
		Commitment:    commitment,
		Now:           now,
	})
	if err != nil {
		return "", s.mapError(err)
	}
	if !redeemed {
		// Zero rows affected: the row changed between the read and the
		// conditional write. Re-read to classify the loss.
		return "", s.mapError(s.classifyRedeemLoss(ctx, txn.ID, commitment))
	}

	s.logInfo(ctx, "confirmation token redeemed", map[string]any{
		"transaction_id": txn.ID,
		"commitment":     commitmentPrefix(commitment),
	})
	return txn.ID, nil
}

func (s *Service) classifyRedeemLoss(ctx context.Context, transactionID string, commitment string) error {
	current, err := s.transactionStore.GetByCommitment(ctx, transactionID, commitment)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if current.TokenUsed {
		return ErrTokenUsed
	}
	if current.TokenExpiry == nil || !time.Now().UTC().Before(*current.TokenExpiry) {
		return ErrTokenExpired
	}
	return ErrTokenInvalid
}

func (s *Service) buildConfirmationLink(token string) string {
	base := strings.TrimRight(strings.TrimSpace(s.config.BaseURL), "/")
	return base + "/confirm?token=" + url.QueryEscape(token)
}
