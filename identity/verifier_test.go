package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-confirm/core"
)

func TestVerifier_ResolvesPrincipal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer valid-credential" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.Header.Get("X-Api-Key"); got != "api-key-1" {
			t.Errorf("unexpected api key header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"owner_1","email":"owner@example.com","name":"Owner One"}`))
	}))
	defer server.Close()

	verifier, err := NewVerifier(Config{Endpoint: server.URL, APIKey: "api-key-1"})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	principal, err := verifier.Verify(context.Background(), "valid-credential")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal.ID != "owner_1" {
		t.Fatalf("expected owner_1, got %q", principal.ID)
	}
	if principal.Email != "owner@example.com" {
		t.Fatalf("expected email, got %q", principal.Email)
	}
	if principal.Claims["sub"] != "owner_1" {
		t.Fatalf("expected raw claims to carry sub")
	}
}

func TestVerifier_FallsBackToUIDSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"uid":"owner_9"}`))
	}))
	defer server.Close()

	verifier, err := NewVerifier(Config{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	principal, err := verifier.Verify(context.Background(), "cred")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal.ID != "owner_9" {
		t.Fatalf("expected uid fallback, got %q", principal.ID)
	}
}

func TestVerifier_RejectionMapsToUnauthenticated(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		verifier, err := NewVerifier(Config{Endpoint: server.URL})
		if err != nil {
			server.Close()
			t.Fatalf("new verifier: %v", err)
		}
		_, err = verifier.Verify(context.Background(), "rejected-credential")
		server.Close()

		if !errors.Is(err, ErrCredentialRejected) {
			t.Fatalf("status %d: expected ErrCredentialRejected, got %v", status, err)
		}

		mapped := core.AsConfirmError(err)
		if mapped.Category != goerrors.CategoryAuth {
			t.Fatalf("status %d: expected auth category, got %q", status, mapped.Category)
		}
		if mapped.TextCode != core.ConfirmErrorUnauthenticated {
			t.Fatalf("status %d: expected %q, got %q", status, core.ConfirmErrorUnauthenticated, mapped.TextCode)
		}
	}
}

func TestVerifier_ServerFaultIsNotUnauthenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	verifier, err := NewVerifier(Config{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	_, err = verifier.Verify(context.Background(), "cred")
	if err == nil {
		t.Fatalf("expected error for verifier fault")
	}
	if errors.Is(err, ErrCredentialRejected) {
		t.Fatalf("verifier faults must not read as credential rejections")
	}
}

func TestVerifier_MissingSubjectRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"email":"nobody@example.com"}`))
	}))
	defer server.Close()

	verifier, err := NewVerifier(Config{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	_, err = verifier.Verify(context.Background(), "cred")
	if !errors.Is(err, ErrCredentialRejected) {
		t.Fatalf("expected rejection for missing subject, got %v", err)
	}
}

func TestVerifier_EmptyCredentialShortCircuits(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer server.Close()

	verifier, err := NewVerifier(Config{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	_, err = verifier.Verify(context.Background(), "   ")
	if !errors.Is(err, ErrCredentialRejected) {
		t.Fatalf("expected rejection for empty credential, got %v", err)
	}
	if called {
		t.Fatalf("empty credential must not reach the verifier")
	}
}

func TestNewVerifier_RequiresEndpoint(t *testing.T) {
	if _, err := NewVerifier(Config{}); err == nil {
		t.Fatalf("expected error for missing endpoint")
	}
}
