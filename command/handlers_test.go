package command

import (
	"context"
	"testing"
	"time"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-confirm/core"
)

type stubMutatingService struct {
	generateFn func(ctx context.Context, principal core.Principal, transactionID string) (core.ConfirmationLink, error)
	redeemFn   func(ctx context.Context, token string) (string, error)
	uploadFn   func(ctx context.Context, principal core.Principal, upload core.ProofUpload) (core.ProofReceipt, error)
}

func (s stubMutatingService) GenerateConfirmation(ctx context.Context, principal core.Principal, transactionID string) (core.ConfirmationLink, error) {
	return s.generateFn(ctx, principal, transactionID)
}

func (s stubMutatingService) Redeem(ctx context.Context, token string) (string, error) {
	return s.redeemFn(ctx, token)
}

func (s stubMutatingService) UploadProof(ctx context.Context, principal core.Principal, upload core.ProofUpload) (core.ProofReceipt, error) {
	return s.uploadFn(ctx, principal, upload)
}

func TestGenerateConfirmationCommand_DelegatesAndStoresResult(t *testing.T) {
	expected := core.ConfirmationLink{
		TransactionID: "txn_1",
		Link:          "https://pay.example.com/confirm?token=tok",
		ExpiresAt:     time.Now().UTC().Add(time.Hour),
	}
	called := false

	svc := stubMutatingService{
		generateFn: func(_ context.Context, principal core.Principal, transactionID string) (core.ConfirmationLink, error) {
			called = true
			if principal.ID != "owner_1" {
				t.Fatalf("expected owner_1, got %q", principal.ID)
			}
			if transactionID != "txn_1" {
				t.Fatalf("expected txn_1, got %q", transactionID)
			}
			return expected, nil
		},
	}

	cmd := NewGenerateConfirmationCommand(svc)
	collector := gocmd.NewResult[core.ConfirmationLink]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, GenerateConfirmationMessage{
		Principal:     core.Principal{ID: "owner_1"},
		TransactionID: "txn_1",
	})
	if err != nil {
		t.Fatalf("execute generate: %v", err)
	}
	if !called {
		t.Fatalf("expected service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.Link != expected.Link {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestRedeemConfirmationCommand_DelegatesAndStoresResult(t *testing.T) {
	svc := stubMutatingService{
		redeemFn: func(_ context.Context, token string) (string, error) {
			if token != "tok" {
				t.Fatalf("expected tok, got %q", token)
			}
			return "txn_1", nil
		},
	}

	cmd := NewRedeemConfirmationCommand(svc)
	collector := gocmd.NewResult[string]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, RedeemConfirmationMessage{Token: "tok"}); err != nil {
		t.Fatalf("execute redeem: %v", err)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result != "txn_1" {
		t.Fatalf("expected txn_1, got %q", result)
	}
}

func TestUploadProofCommand_DelegatesAndStoresResult(t *testing.T) {
	svc := stubMutatingService{
		uploadFn: func(_ context.Context, _ core.Principal, upload core.ProofUpload) (core.ProofReceipt, error) {
			return core.ProofReceipt{ID: "proof_1", TransactionID: upload.TransactionID}, nil
		},
	}

	cmd := NewUploadProofCommand(svc)
	collector := gocmd.NewResult[core.ProofReceipt]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, UploadProofMessage{
		Principal: core.Principal{ID: "owner_1"},
		Upload:    core.ProofUpload{TransactionID: "txn_1", Data: []byte("data")},
	})
	if err != nil {
		t.Fatalf("execute upload: %v", err)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.ID != "proof_1" || result.TransactionID != "txn_1" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestCommands_NilServiceReturnsDependencyError(t *testing.T) {
	var generate *GenerateConfirmationCommand
	if err := generate.Execute(context.Background(), GenerateConfirmationMessage{}); err == nil {
		t.Fatalf("expected dependency error for nil command")
	}
	redeem := NewRedeemConfirmationCommand(nil)
	if err := redeem.Execute(context.Background(), RedeemConfirmationMessage{Token: "tok"}); err == nil {
		t.Fatalf("expected dependency error for nil service")
	}
}

func TestMessages_Validate(t *testing.T) {
	if err := (GenerateConfirmationMessage{}).Validate(); err == nil {
		t.Fatalf("expected principal validation error")
	}
	if err := (GenerateConfirmationMessage{Principal: core.Principal{ID: "owner_1"}}).Validate(); err == nil {
		t.Fatalf("expected transaction id validation error")
	}
	if err := (RedeemConfirmationMessage{Token: "  "}).Validate(); err == nil {
		t.Fatalf("expected token validation error")
	}
	if err := (UploadProofMessage{
		Principal: core.Principal{ID: "owner_1"},
		Upload:    core.ProofUpload{TransactionID: "txn_1"},
	}).Validate(); err == nil {
		t.Fatalf("expected payload validation error")
	}
	if err := (UploadProofMessage{
		Principal: core.Principal{ID: "owner_1"},
		Upload:    core.ProofUpload{TransactionID: "txn_1", Data: []byte("data")},
	}).Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
}
