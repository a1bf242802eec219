package core

import (
	"fmt"
	"strings"
)

// UploadPolicy gates inbound proof payloads before they reach storage. It
// checks the declared type only; content sniffing is out of scope and the
// declared type is an acknowledged trust boundary.
type UploadPolicy struct {
	MaxBytes     int64
	AllowedTypes []string
}

func NewUploadPolicy(cfg UploadConfig) UploadPolicy {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultUploadMaxBytes
	}
	allowed := make([]string, 0, len(cfg.AllowedTypes))
	for _, contentType := range cfg.AllowedTypes {
		normalized := normalizeContentType(contentType)
		if normalized == "" {
			continue
		}
		allowed = append(allowed, normalized)
	}
	return UploadPolicy{
		MaxBytes:     maxBytes,
		AllowedTypes: allowed,
	}
}

func (p UploadPolicy) Validate(upload ProofUpload) error {
	size := upload.Size
	if size <= 0 {
		size = int64(len(upload.Data))
	}
	if size <= 0 {
		return fmt.Errorf("core: upload payload is required")
	}
	if p.MaxBytes > 0 && size > p.MaxBytes {
		return ErrUploadTooLarge
	}

	declared := normalizeContentType(upload.ContentType)
	if declared == "" {
		return ErrUploadUnsupported
	}
	for _, allowed := range p.AllowedTypes {
		if declared == allowed {
			return nil
		}
	}
	return ErrUploadUnsupported
}

// normalizeContentType lowercases and strips media-type parameters, so
// "image/JPEG; charset=binary" compares as "image/jpeg".
func normalizeContentType(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if idx := strings.Index(value, ";"); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return value
}
