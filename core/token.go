package core

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const tokenNonceBytes = 32

// HS256TokenEngine mints and verifies confirmation tokens as HS256 JWTs.
// The algorithm is fixed: tokens declaring anything else are rejected
// outright, there is no negotiation path.
type HS256TokenEngine struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

type TokenEngineOption func(*HS256TokenEngine)

func WithTokenValidity(validity time.Duration) TokenEngineOption {
	return func(e *HS256TokenEngine) {
		if validity > 0 {
			e.validity = validity
		}
	}
}

func WithTokenClock(now func() time.Time) TokenEngineOption {
	return func(e *HS256TokenEngine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewHS256TokenEngine(secret string, opts ...TokenEngineOption) (*HS256TokenEngine, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("core: token signing secret is required")
	}
	engine := &HS256TokenEngine{
		secret:   []byte(secret),
		validity: defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(engine)
	}
	return engine, nil
}

func (e *HS256TokenEngine) Mint(transactionID string) (MintedToken, error) {
	if e == nil {
		return MintedToken{}, fmt.Errorf("core: token engine is not configured")
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return MintedToken{}, fmt.Errorf("core: transaction id is required")
	}

	nonce := make([]byte, tokenNonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return MintedToken{}, fmt.Errorf("core: generate token nonce: %w", err)
	}

	issuedAt := e.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(e.validity)
	claims := map[string]any{
		"txn":   transactionID,
		"nonce": base64.RawURLEncoding.EncodeToString(nonce),
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token, err := e.sign(claims)
	if err != nil {
		return MintedToken{}, err
	}

	return MintedToken{
		Token:         token,
		TransactionID: transactionID,
		Commitment:    e.Commitment(token),
		IssuedAt:      issuedAt,
		ExpiresAt:     expiresAt,
	}, nil
}

// Verify checks structure, signature and embedded expiry. Structural and
// signature failures collapse to ErrTokenInvalid so the public endpoint
// cannot be used as a signature oracle; a token whose signature checks out
// but whose embedded expiry has passed returns ErrTokenExpired.
func (e *HS256TokenEngine) Verify(token string) (string, error) {
	if e == nil {
		return "", fmt.Errorf("core: token engine is not configured")
	}
	token = strings.TrimSpace(token)
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", ErrTokenInvalid
	}

	headerRaw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrTokenInvalid
	}
	var header struct {
		Algorithm string `json:"alg"`
		Type      string `json:"typ"`
	}
	if err := json.Unmarshal(headerRaw, &header); err != nil {
		return "", ErrTokenInvalid
	}
	if header.Algorithm != "HS256" || header.Type != "JWT" {
		return "", ErrTokenInvalid
	}

	mac := hmac.New(sha256.New, e.secret)
	_, _ = mac.Write([]byte(parts[0] + "." + parts[1]))
	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", ErrTokenInvalid
	}
	if !hmac.Equal(signature, mac.Sum(nil)) {
		return "", ErrTokenInvalid
	}

	claimsRaw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrTokenInvalid
	}
	var claims struct {
		TransactionID string `json:"txn"`
		Nonce         string `json:"nonce"`
		ExpiresAt     int64  `json:"exp"`
	}
	if err := json.Unmarshal(claimsRaw, &claims); err != nil {
		return "", ErrTokenInvalid
	}
	if strings.TrimSpace(claims.TransactionID) == "" || strings.TrimSpace(claims.Nonce) == "" {
		return "", ErrTokenInvalid
	}
	if claims.ExpiresAt <= 0 {
		return "", ErrTokenInvalid
	}
	if !e.now().UTC().Before(time.Unix(claims.ExpiresAt, 0)) {
		return "", ErrTokenExpired
	}

	return strings.TrimSpace(claims.TransactionID), nil
}

// Commitment is the one-way digest persisted in place of the raw token.
func (e *HS256TokenEngine) Commitment(token string) string {
	digest := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(digest[:])
}

func (e *HS256TokenEngine) sign(claims map[string]any) (string, error) {
	header := map[string]any{
		"alg": "HS256",
		"typ": "JWT",
	}
	headerRaw, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("core: marshal token header: %w", err)
	}
	claimsRaw, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("core: marshal token claims: %w", err)
	}

	headerPart := base64.RawURLEncoding.EncodeToString(headerRaw)
	claimsPart := base64.RawURLEncoding.EncodeToString(claimsRaw)
	signed := headerPart + "." + claimsPart

	mac := hmac.New(sha256.New, e.secret)
	_, _ = mac.Write([]byte(signed))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return signed + "." + signature, nil
}

var _ TokenEngine = (*HS256TokenEngine)(nil)
