package security

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestAppKeySecretProvider_Roundtrip(t *testing.T) {
	provider, err := NewAppKeySecretProviderFromString("base64:not-an-aes-length-key")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	plaintext := []byte("proof payload bytes")
	sealed, err := provider.Encrypt(context.Background(), plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if !strings.HasPrefix(string(sealed), "confirm.proof.v1:") {
		t.Fatalf("expected envelope prefix, got %q", sealed[:24])
	}
	if bytes.Contains(sealed, plaintext) {
		t.Fatalf("ciphertext leaks plaintext")
	}

	opened, err := provider.Decrypt(context.Background(), sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Fatalf("roundtrip mismatch: got %q", opened)
	}
}

func TestAppKeySecretProvider_EncryptionsAreUnique(t *testing.T) {
	provider, err := NewAppKeySecretProviderFromString("app-key-material")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	first, err := provider.Encrypt(context.Background(), []byte("same payload"))
	if err != nil {
		t.Fatalf("first encrypt: %v", err)
	}
	second, err := provider.Encrypt(context.Background(), []byte("same payload"))
	if err != nil {
		t.Fatalf("second encrypt: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatalf("expected distinct envelopes for repeated payloads")
	}
}

func TestAppKeySecretProvider_RejectsKeyIDMismatch(t *testing.T) {
	writer, err := NewAppKeySecretProviderFromString("shared-key", WithKeyID("key-2024"))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	reader, err := NewAppKeySecretProviderFromString("shared-key", WithKeyID("key-2025"))
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}

	sealed, err := writer.Encrypt(context.Background(), []byte("payload"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := reader.Decrypt(context.Background(), sealed); err == nil {
		t.Fatalf("expected key id mismatch to fail decryption")
	}
}

func TestAppKeySecretProvider_RejectsForeignKey(t *testing.T) {
	writer, err := NewAppKeySecretProviderFromString("key-one")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	reader, err := NewAppKeySecretProviderFromString("key-two")
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}

	sealed, err := writer.Encrypt(context.Background(), []byte("payload"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := reader.Decrypt(context.Background(), sealed); err == nil {
		t.Fatalf("expected foreign key to fail decryption")
	}
}

func TestAppKeySecretProvider_InputValidation(t *testing.T) {
	if _, err := NewAppKeySecretProvider(nil); err == nil {
		t.Fatalf("expected empty key material to fail")
	}
	if _, err := NewAppKeySecretProviderFromString("   "); err == nil {
		t.Fatalf("expected blank key material to fail")
	}

	provider, err := NewAppKeySecretProviderFromString("app-key-material")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if _, err := provider.Encrypt(context.Background(), nil); err == nil {
		t.Fatalf("expected empty plaintext to fail")
	}
	if _, err := provider.Decrypt(context.Background(), nil); err == nil {
		t.Fatalf("expected empty ciphertext to fail")
	}
	if _, err := provider.Decrypt(context.Background(), []byte("confirm.proof.v1:{not json")); err == nil {
		t.Fatalf("expected malformed envelope to fail")
	}
}

func TestNormalizeKeyLengths(t *testing.T) {
	for _, size := range []int{16, 24, 32} {
		key := normalizeKey(bytes.Repeat([]byte{0x41}, size))
		if len(key) != size {
			t.Fatalf("expected %d byte key to pass through, got %d", size, len(key))
		}
	}
	stretched := normalizeKey([]byte("short"))
	if len(stretched) != 32 {
		t.Fatalf("expected stretched key of 32 bytes, got %d", len(stretched))
	}
}
