package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// UploadProof validates a proof payload against the upload policy and hands
// it to the proof-file store. The transaction row is only touched by the
// ownership lookup, never mutated: a rejected upload leaves it unchanged.
func (s *Service) UploadProof(ctx context.Context, principal Principal, upload ProofUpload) (ProofReceipt, error) {
	if s == nil || s.proofFileStore == nil {
		return ProofReceipt{}, s.mapError(errInternal("core: proof file store is required"))
	}
	if strings.TrimSpace(upload.TransactionID) == "" {
		return ProofReceipt{}, s.mapError(errBadInput("core: transaction id is required"))
	}

	txn, err := s.AuthorizeOwner(ctx, principal, upload.TransactionID)
	if err != nil {
		return ProofReceipt{}, err
	}

	if err := s.uploadPolicy.Validate(upload); err != nil {
		s.logWarn(ctx, "proof upload rejected", map[string]any{
			"transaction_id": txn.ID,
			"content_type":   upload.ContentType,
			"size":           upload.Size,
			"reason":         err.Error(),
		})
		return ProofReceipt{}, s.mapError(err)
	}

	digest := sha256.Sum256(upload.Data)
	payload := upload.Data
	if s.secretProvider != nil {
		encrypted, encErr := s.secretProvider.Encrypt(ctx, upload.Data)
		if encErr != nil {
			return ProofReceipt{}, s.mapError(encErr)
		}
		payload = encrypted
	}

	receipt, err := s.proofFileStore.Save(ctx, SaveProofInput{
		TransactionID: txn.ID,
		FileName:      strings.TrimSpace(upload.FileName),
		ContentType:   normalizeContentType(upload.ContentType),
		Size:          int64(len(upload.Data)),
		Digest:        hex.EncodeToString(digest[:]),
		Payload:       payload,
	})
	if err != nil {
		return ProofReceipt{}, s.mapError(err)
	}

	s.logInfo(ctx, "proof upload stored", map[string]any{
		"transaction_id": txn.ID,
		"owner_id":       txn.OwnerID,
		"content_type":   receipt.ContentType,
		"size":           receipt.Size,
	})
	return receipt, nil
}

// ListProofUploads returns the stored proof receipts for a transaction the
// caller owns. Payloads stay in the store; only receipt metadata leaves.
func (s *Service) ListProofUploads(ctx context.Context, principal Principal, transactionID string) ([]ProofReceipt, error) {
	if s == nil || s.proofFileStore == nil {
		return nil, s.mapError(errInternal("core: proof file store is required"))
	}
	txn, err := s.AuthorizeOwner(ctx, principal, transactionID)
	if err != nil {
		return nil, err
	}
	receipts, err := s.proofFileStore.ListByTransaction(ctx, txn.ID)
	if err != nil {
		return nil, s.mapError(err)
	}
	return receipts, nil
}
