package pairing

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	m.Run()
}

func TestGenerate_ProducesDistinctHexSecrets(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if a == b {
		t.Fatalf("two calls to Generate produced the same secret")
	}
	if len(a) != 48 { // 24 random bytes, hex-encoded
		t.Errorf("Generate produced a secret of length %d, want 48", len(a))
	}
}

func TestVerify_UnconfiguredAlwaysFalse(t *testing.T) {
	_ = Clear()
	if Verify("anything") {
		t.Fatalf("Verify must return false when no pairing secret is configured")
	}
	if Configured() {
		t.Fatalf("Configured must be false before Set is ever called")
	}
}

func TestSetAndVerify_RoundTrip(t *testing.T) {
	secret, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := Set(secret); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !Configured() {
		t.Fatalf("Configured must be true after Set")
	}
	if !Verify(secret) {
		t.Fatalf("Verify must succeed for the exact secret just set")
	}
	if Verify("wrong-secret") {
		t.Fatalf("Verify must fail for an incorrect secret")
	}
}

func TestClear_DeniesFutureVerification(t *testing.T) {
	secret, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := Set(secret); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if Verify(secret) {
		t.Fatalf("Verify must fail once the secret has been cleared")
	}
	if Configured() {
		t.Fatalf("Configured must be false after Clear")
	}
}

func TestClear_IsIdempotent(t *testing.T) {
	if err := Clear(); err != nil {
		t.Fatalf("Clear on an already-cleared secret must not error, got: %v", err)
	}
	if err := Clear(); err != nil {
		t.Fatalf("second Clear call must not error, got: %v", err)
	}
}
