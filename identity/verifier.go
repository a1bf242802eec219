package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-confirm/core"
)

const (
	defaultRequestTimeout     = 10 * time.Second
	maxVerifierResponseBytes  = 1 << 20 // 1 MiB
	verifierAPIKeyHeader      = "X-Api-Key"
	verifierAuthorizationKind = "Bearer"
)

var ErrCredentialRejected = errors.New("identity: credential rejected")

// CredentialRejectedError wraps verifier rejections so the guard can map
// them to Unauthenticated without learning why the verifier said no.
type CredentialRejectedError struct {
	Cause error
}

func (e *CredentialRejectedError) Error() string {
	if e == nil || e.Cause == nil {
		return ErrCredentialRejected.Error()
	}
	return ErrCredentialRejected.Error() + ": " + e.Cause.Error()
}

func (e *CredentialRejectedError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.Cause == nil {
		return ErrCredentialRejected
	}
	return errors.Join(ErrCredentialRejected, e.Cause)
}

func (e *CredentialRejectedError) ToServiceError() *goerrors.Error {
	return goerrors.New(ErrCredentialRejected.Error(), goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(core.ConfirmErrorUnauthenticated)
}

func credentialRejected(cause error) error {
	return &CredentialRejectedError{Cause: cause}
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	// Endpoint is the verifier's credential introspection URL. The bearer
	// credential is forwarded as-is; the verifier answers with the
	// principal payload or a 4xx rejection.
	Endpoint       string
	APIKey         string
	HTTPClient     HTTPDoer
	RequestTimeout time.Duration
}

// Verifier resolves bearer credentials against the external identity
// provider. The provider's internals are opaque to this client: it only
// distinguishes "principal", "rejected" and "verifier unavailable".
type Verifier struct {
	endpoint       string
	apiKey         string
	httpClient     HTTPDoer
	requestTimeout time.Duration
}

func NewVerifier(cfg Config) (*Verifier, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("identity: verifier endpoint is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &Verifier{
		endpoint:       endpoint,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, credential string) (core.Principal, error) {
	if v == nil || v.httpClient == nil {
		return core.Principal{}, fmt.Errorf("identity: verifier is not configured")
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return core.Principal{}, credentialRejected(nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	requestCtx := ctx
	cancel := func() {}
	if v.requestTimeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, v.requestTimeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return core.Principal{}, fmt.Errorf("identity: create verify request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", verifierAuthorizationKind+" "+credential)
	if v.apiKey != "" {
		req.Header.Set(verifierAPIKeyHeader, v.apiKey)
	}

	res, err := v.httpClient.Do(req)
	if err != nil {
		return core.Principal{}, fmt.Errorf("identity: execute verify request: %w", err)
	}
	defer res.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(res.Body, maxVerifierResponseBytes+1))
	if readErr != nil {
		return core.Principal{}, fmt.Errorf("identity: read verifier response: %w", readErr)
	}
	if int64(len(body)) > maxVerifierResponseBytes {
		return core.Principal{}, fmt.Errorf("identity: verifier response exceeds %d bytes", maxVerifierResponseBytes)
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return core.Principal{}, credentialRejected(fmt.Errorf("identity: verifier returned status %d", res.StatusCode))
	case res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices:
		return core.Principal{}, fmt.Errorf("identity: verifier returned status %d", res.StatusCode)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return core.Principal{}, fmt.Errorf("identity: decode verifier response: %w", err)
	}

	principal := normalizePrincipal(payload)
	if strings.TrimSpace(principal.ID) == "" {
		return core.Principal{}, credentialRejected(fmt.Errorf("identity: verifier response is missing subject"))
	}
	return principal, nil
}

func normalizePrincipal(payload map[string]any) core.Principal {
	subject := strings.TrimSpace(readString(payload["sub"]))
	if subject == "" {
		subject = strings.TrimSpace(readString(payload["uid"]))
	}
	return core.Principal{
		ID:     subject,
		Email:  strings.TrimSpace(readString(payload["email"])),
		Name:   strings.TrimSpace(readString(payload["name"])),
		Claims: copyMap(payload),
	}
}

func copyMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

func readString(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	case json.Number:
		return strings.TrimSpace(typed.String())
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	default:
		if value == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(value))
	}
}

var _ core.IdentityVerifier = (*Verifier)(nil)
