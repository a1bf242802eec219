package confirm

import (
	"fmt"

	confirmcommand "github.com/goliatone/go-confirm/command"
	confirmquery "github.com/goliatone/go-confirm/query"
)

// CommandQueryService is the service surface the facade handlers wrap.
type CommandQueryService interface {
	confirmcommand.MutatingService
	confirmquery.ReportReader
	confirmquery.ProofUploadReader
}

type Commands struct {
	GenerateConfirmation *confirmcommand.GenerateConfirmationCommand
	RedeemConfirmation   *confirmcommand.RedeemConfirmationCommand
	UploadProof          *confirmcommand.UploadProofCommand
}

type Queries struct {
	ReportData       *confirmquery.ReportDataQuery
	ListProofUploads *confirmquery.ListProofUploadsQuery
}

// Facade bundles the command and query handlers around one service so
// hosts can register them on a dispatcher in a single pass.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("confirm: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		GenerateConfirmation: confirmcommand.NewGenerateConfirmationCommand(service),
		RedeemConfirmation:   confirmcommand.NewRedeemConfirmationCommand(service),
		UploadProof:          confirmcommand.NewUploadProofCommand(service),
	}
	facade.queries = Queries{
		ReportData:       confirmquery.NewReportDataQuery(service),
		ListProofUploads: confirmquery.NewListProofUploadsQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
