package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-confirm/core"
)

const (
	TypeGenerateConfirmation = "confirm.command.confirmation.generate"
	TypeRedeemConfirmation   = "confirm.command.confirmation.redeem"
	TypeUploadProof          = "confirm.command.proof.upload"
)

type GenerateConfirmationMessage struct {
	Principal     core.Principal
	TransactionID string
}

func (GenerateConfirmationMessage) Type() string { return TypeGenerateConfirmation }

func (m GenerateConfirmationMessage) Validate() error {
	if err := m.Principal.Validate(); err != nil {
		return fmt.Errorf("command: principal is required")
	}
	if strings.TrimSpace(m.TransactionID) == "" {
		return fmt.Errorf("command: transaction id is required")
	}
	return nil
}

type RedeemConfirmationMessage struct {
	Token string
}

func (RedeemConfirmationMessage) Type() string { return TypeRedeemConfirmation }

func (m RedeemConfirmationMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return fmt.Errorf("command: token is required")
	}
	return nil
}

type UploadProofMessage struct {
	Principal core.Principal
	Upload    core.ProofUpload
}

func (UploadProofMessage) Type() string { return TypeUploadProof }

func (m UploadProofMessage) Validate() error {
	if err := m.Principal.Validate(); err != nil {
		return fmt.Errorf("command: principal is required")
	}
	if strings.TrimSpace(m.Upload.TransactionID) == "" {
		return fmt.Errorf("command: transaction id is required")
	}
	if len(m.Upload.Data) == 0 {
		return fmt.Errorf("command: upload payload is required")
	}
	return nil
}
