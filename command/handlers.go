package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-confirm/core"
)

// MutatingService is the surface of the confirmation service the command
// handlers dispatch into.
type MutatingService interface {
	GenerateConfirmation(ctx context.Context, principal core.Principal, transactionID string) (core.ConfirmationLink, error)
	Redeem(ctx context.Context, token string) (string, error)
	UploadProof(ctx context.Context, principal core.Principal, upload core.ProofUpload) (core.ProofReceipt, error)
}

type GenerateConfirmationCommand struct {
	service MutatingService
}

func NewGenerateConfirmationCommand(service MutatingService) *GenerateConfirmationCommand {
	return &GenerateConfirmationCommand{service: service}
}

func (c *GenerateConfirmationCommand) Execute(ctx context.Context, msg GenerateConfirmationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: confirmation service is required")
	}
	out, err := c.service.GenerateConfirmation(ctx, msg.Principal, msg.TransactionID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RedeemConfirmationCommand struct {
	service MutatingService
}

func NewRedeemConfirmationCommand(service MutatingService) *RedeemConfirmationCommand {
	return &RedeemConfirmationCommand{service: service}
}

func (c *RedeemConfirmationCommand) Execute(ctx context.Context, msg RedeemConfirmationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: redeem service is required")
	}
	out, err := c.service.Redeem(ctx, msg.Token)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UploadProofCommand struct {
	service MutatingService
}

func NewUploadProofCommand(service MutatingService) *UploadProofCommand {
	return &UploadProofCommand{service: service}
}

func (c *UploadProofCommand) Execute(ctx context.Context, msg UploadProofMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: upload service is required")
	}
	out, err := c.service.UploadProof(ctx, msg.Principal, msg.Upload)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
