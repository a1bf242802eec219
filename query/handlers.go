package query

import (
	"context"

	"github.com/goliatone/go-confirm/core"
)

// ReportReader is the read-only surface of the confirmation service the
// report query dispatches into.
type ReportReader interface {
	ReportData(ctx context.Context, principal core.Principal) (core.Report, error)
}

// ProofUploadReader lists stored proof receipts for an owned transaction.
type ProofUploadReader interface {
	ListProofUploads(ctx context.Context, principal core.Principal, transactionID string) ([]core.ProofReceipt, error)
}

type ReportDataQuery struct {
	reader ReportReader
}

func NewReportDataQuery(reader ReportReader) *ReportDataQuery {
	return &ReportDataQuery{reader: reader}
}

func (q *ReportDataQuery) Query(ctx context.Context, msg ReportDataMessage) (core.Report, error) {
	if q == nil || q.reader == nil {
		return core.Report{}, queryDependencyError("query: report reader is required")
	}
	return q.reader.ReportData(ctx, msg.Principal)
}

type ListProofUploadsQuery struct {
	reader ProofUploadReader
}

func NewListProofUploadsQuery(reader ProofUploadReader) *ListProofUploadsQuery {
	return &ListProofUploadsQuery{reader: reader}
}

func (q *ListProofUploadsQuery) Query(ctx context.Context, msg ListProofUploadsMessage) ([]core.ProofReceipt, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: proof upload reader is required")
	}
	return q.reader.ListProofUploads(ctx, msg.Principal, msg.TransactionID)
}
