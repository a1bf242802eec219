package query

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-confirm/core"
)

const (
	TypeReportData       = "confirm.query.report.load"
	TypeListProofUploads = "confirm.query.proof.list"
)

type ReportDataMessage struct {
	Principal core.Principal
}

func (ReportDataMessage) Type() string { return TypeReportData }

func (m ReportDataMessage) Validate() error {
	if err := m.Principal.Validate(); err != nil {
		return fmt.Errorf("query: principal is required")
	}
	return nil
}

type ListProofUploadsMessage struct {
	Principal     core.Principal
	TransactionID string
}

func (ListProofUploadsMessage) Type() string { return TypeListProofUploads }

func (m ListProofUploadsMessage) Validate() error {
	if err := m.Principal.Validate(); err != nil {
		return fmt.Errorf("query: principal is required")
	}
	if strings.TrimSpace(m.TransactionID) == "" {
		return fmt.Errorf("query: transaction id is required")
	}
	return nil
}
