package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/goliatone/go-confirm/core"
	goerrors "github.com/goliatone/go-errors"
)

const maxJSONBodyBytes = 1 << 20

func newStrictDecoder(r *http.Request) *json.Decoder {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message  string `json:"message"`
	TextCode string `json:"text_code"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	rich := core.AsConfirmError(err)
	if rich == nil {
		rich = goerrors.New("An unexpected error occurred", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.ConfirmErrorInternal)
	}
	status := rich.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Message:  rich.Message,
		TextCode: rich.TextCode,
	}})
}

func writePlaintext(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// Plaintext bodies for the redemption surface. Token holders follow a link
// from an email or message, so the responses are human sentences rather
// than JSON envelopes.
const (
	MessageVerified     = "Transaction Verified Successfully"
	MessageTokenInvalid = "Invalid confirmation token"
	MessageTokenUsed    = "Confirmation token already used"
	MessageTokenExpired = "Confirmation token expired"
	MessageTokenMissing = "Token required"
)

func writeRedeemError(w http.ResponseWriter, err error) {
	rich := core.AsConfirmError(err)
	if rich == nil {
		writePlaintext(w, http.StatusInternalServerError, MessageTokenInvalid)
		return
	}
	status := rich.Code
	if status == 0 {
		status = http.StatusBadRequest
	}
	switch rich.TextCode {
	case core.ConfirmErrorTokenUsed:
		writePlaintext(w, status, MessageTokenUsed)
	case core.ConfirmErrorTokenExpired:
		writePlaintext(w, status, MessageTokenExpired)
	default:
		writePlaintext(w, status, MessageTokenInvalid)
	}
}
