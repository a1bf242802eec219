package transport

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-confirm/command"
	"github.com/goliatone/go-confirm/core"
	"github.com/goliatone/go-confirm/query"
)

// multipart bookkeeping on top of the configured payload ceiling
const uploadFormOverhead = 64 * 1024

// Service is the confirmation surface the HTTP layer dispatches into.
type Service interface {
	Authenticator
	command.MutatingService
	query.ReportReader
	query.ProofUploadReader
	Config() core.Config
}

// Router owns the HTTP endpoints and dispatches requests through the
// command and query handlers.
type Router struct {
	service Service

	generate *command.GenerateConfirmationCommand
	redeem   *command.RedeemConfirmationCommand
	upload   *command.UploadProofCommand
	report   *query.ReportDataQuery
	proofs   *query.ListProofUploadsQuery
}

func NewRouter(service Service) *Router {
	return &Router{
		service:  service,
		generate: command.NewGenerateConfirmationCommand(service),
		redeem:   command.NewRedeemConfirmationCommand(service),
		upload:   command.NewUploadProofCommand(service),
		report:   query.NewReportDataQuery(service),
		proofs:   query.NewListProofUploadsQuery(service),
	}
}

// Handler builds the chi router. The redemption endpoint is public; every
// other endpoint sits behind the bearer-credential middleware.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/confirm", rt.handleConfirm)

	r.Group(func(authed chi.Router) {
		authed.Use(RequireAuth(rt.service))
		authed.Get("/report-data", rt.handleReportData)
		authed.Post("/generate-confirmation", rt.handleGenerateConfirmation)
		authed.Post("/upload-proof", rt.handleUploadProof)
		authed.Get("/transactions/{transaction_id}/proofs", rt.handleListProofs)
	})

	return r
}

type generateConfirmationRequest struct {
	TransactionID string `json:"transactionId"`
}

type generateConfirmationResponse struct {
	TransactionID    string    `json:"transactionId"`
	ConfirmationLink string    `json:"confirmationLink"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

func (rt *Router) handleGenerateConfirmation(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, unauthenticatedError())
		return
	}

	var req generateConfirmationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg := command.GenerateConfirmationMessage{
		Principal:     principal,
		TransactionID: strings.TrimSpace(req.TransactionID),
	}
	if err := msg.Validate(); err != nil {
		writeError(w, badInputError(err.Error()))
		return
	}

	collector := gocmd.NewResult[core.ConfirmationLink]()
	ctx := gocmd.ContextWithResult(r.Context(), collector)
	if err := rt.generate.Execute(ctx, msg); err != nil {
		writeError(w, err)
		return
	}
	link, ok := collector.Load()
	if !ok {
		writeError(w, internalError("transport: confirmation result missing"))
		return
	}

	writeJSON(w, http.StatusCreated, generateConfirmationResponse{
		TransactionID:    link.TransactionID,
		ConfirmationLink: link.Link,
		ExpiresAt:        link.ExpiresAt,
	})
}

func (rt *Router) handleConfirm(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		writePlaintext(w, http.StatusBadRequest, MessageTokenMissing)
		return
	}

	msg := command.RedeemConfirmationMessage{Token: token}
	collector := gocmd.NewResult[string]()
	ctx := gocmd.ContextWithResult(r.Context(), collector)
	if err := rt.redeem.Execute(ctx, msg); err != nil {
		writeRedeemError(w, err)
		return
	}

	writePlaintext(w, http.StatusOK, MessageVerified)
}

type proofReceiptPayload struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	ContentType   string    `json:"contentType"`
	Size          int64     `json:"size"`
	Digest        string    `json:"digest"`
	CreatedAt     time.Time `json:"createdAt"`
}

type uploadProofResponse struct {
	Status string              `json:"status"`
	Proof  proofReceiptPayload `json:"proof"`
}

func (rt *Router) handleUploadProof(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, unauthenticatedError())
		return
	}

	maxBytes := rt.service.Config().Upload.MaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+uploadFormOverhead)
	if err := r.ParseMultipartForm(maxBytes + uploadFormOverhead); err != nil {
		writeError(w, core.ErrUploadTooLarge)
		return
	}

	transactionID := strings.TrimSpace(r.FormValue("transactionId"))
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, badInputError("transport: proof file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		writeError(w, internalError("transport: read proof payload"))
		return
	}
	if int64(len(data)) > maxBytes {
		writeError(w, core.ErrUploadTooLarge)
		return
	}

	contentType := header.Header.Get("Content-Type")
	msg := command.UploadProofMessage{
		Principal: principal,
		Upload: core.ProofUpload{
			TransactionID: transactionID,
			FileName:      header.Filename,
			ContentType:   contentType,
			Size:          int64(len(data)),
			Data:          data,
		},
	}
	if err := msg.Validate(); err != nil {
		writeError(w, badInputError(err.Error()))
		return
	}

	collector := gocmd.NewResult[core.ProofReceipt]()
	ctx := gocmd.ContextWithResult(r.Context(), collector)
	if err := rt.upload.Execute(ctx, msg); err != nil {
		writeError(w, err)
		return
	}
	receipt, ok := collector.Load()
	if !ok {
		writeError(w, internalError("transport: upload result missing"))
		return
	}

	writeJSON(w, http.StatusOK, uploadProofResponse{
		Status: "ok",
		Proof: proofReceiptPayload{
			ID:            receipt.ID,
			TransactionID: receipt.TransactionID,
			ContentType:   receipt.ContentType,
			Size:          receipt.Size,
			Digest:        receipt.Digest,
			CreatedAt:     receipt.CreatedAt,
		},
	})
}

type reportProfile struct {
	OwnerID      string `json:"ownerId"`
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
}

type reportTransaction struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
}

type reportDataResponse struct {
	Profile       reportProfile       `json:"profile"`
	Transactions  []reportTransaction `json:"transactions"`
	VerifiedCount int                 `json:"verifiedCount"`
	VerifiedTotal int64               `json:"verifiedTotal"`
}

func (rt *Router) handleReportData(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, unauthenticatedError())
		return
	}

	report, err := rt.report.Query(r.Context(), query.ReportDataMessage{Principal: principal})
	if err != nil {
		writeError(w, err)
		return
	}

	response := reportDataResponse{
		Profile: reportProfile{
			OwnerID:      report.Profile.OwnerID,
			BusinessName: report.Profile.BusinessName,
			Email:        report.Profile.Email,
		},
		Transactions:  make([]reportTransaction, 0, len(report.Transactions)),
		VerifiedCount: report.VerifiedCount,
		VerifiedTotal: report.VerifiedTotal,
	}
	for _, txn := range report.Transactions {
		response.Transactions = append(response.Transactions, reportTransaction{
			ID:          txn.ID,
			Status:      string(txn.Status),
			Amount:      txn.Amount,
			Currency:    txn.Currency,
			Description: txn.Description,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

type proofListResponse struct {
	TransactionID string                `json:"transactionId"`
	Proofs        []proofReceiptPayload `json:"proofs"`
}

func (rt *Router) handleListProofs(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, unauthenticatedError())
		return
	}

	transactionID := strings.TrimSpace(chi.URLParam(r, "transaction_id"))
	msg := query.ListProofUploadsMessage{Principal: principal, TransactionID: transactionID}
	if err := msg.Validate(); err != nil {
		writeError(w, badInputError(err.Error()))
		return
	}

	receipts, err := rt.proofs.Query(r.Context(), msg)
	if err != nil {
		writeError(w, err)
		return
	}

	response := proofListResponse{
		TransactionID: transactionID,
		Proofs:        make([]proofReceiptPayload, 0, len(receipts)),
	}
	for _, receipt := range receipts {
		response.Proofs = append(response.Proofs, proofReceiptPayload{
			ID:            receipt.ID,
			TransactionID: receipt.TransactionID,
			ContentType:   receipt.ContentType,
			Size:          receipt.Size,
			Digest:        receipt.Digest,
			CreatedAt:     receipt.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func decodeJSON(r *http.Request, target any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	decoder := newStrictDecoder(r)
	if err := decoder.Decode(target); err != nil {
		return badInputError("transport: invalid request body")
	}
	return nil
}

func unauthenticatedError() error {
	return goerrors.New("transport: authentication is required", goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(core.ConfirmErrorUnauthenticated)
}

func badInputError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ConfirmErrorBadInput)
}

func internalError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ConfirmErrorInternal)
}
