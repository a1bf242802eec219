package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-confirm/core"
)

var (
	_ gocmd.Querier[ReportDataMessage, core.Report]               = (*ReportDataQuery)(nil)
	_ gocmd.Querier[ListProofUploadsMessage, []core.ProofReceipt] = (*ListProofUploadsQuery)(nil)
)
