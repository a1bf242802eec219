package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[GenerateConfirmationMessage] = (*GenerateConfirmationCommand)(nil)
	_ gocmd.Commander[RedeemConfirmationMessage]   = (*RedeemConfirmationCommand)(nil)
	_ gocmd.Commander[UploadProofMessage]          = (*UploadProofCommand)(nil)
)
