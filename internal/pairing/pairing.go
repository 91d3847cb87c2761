// Package pairing implements the CloudAI pairing-secret requirement: a
// remote operator must present a secret, set up once by the local user,
// before any of its tool calls reach PolicyGuard's ToolScope=CloudAI
// policy at all. The secret is hashed with bcrypt and stored in the OS
// keyring rather than on disk or in the config file.
package pairing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/bcrypt"
)

const (
	keyringService = "policyguard"
	keyringEntry   = "cloud_ai_pairing_secret"
)

// Generate creates a new random pairing secret, suitable for displaying
// to the user once so they can configure it on the CloudAI side.
func Generate() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("pairing: generating secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Set hashes secret with bcrypt and stores the hash in the OS keyring,
// replacing any previously stored pairing secret.
func Set(secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("pairing: hashing secret: %w", err)
	}
	if err := keyring.Set(keyringService, keyringEntry, string(hash)); err != nil {
		return fmt.Errorf("pairing: storing secret hash in keyring: %w", err)
	}
	return nil
}

// Verify reports whether presented matches the stored pairing secret. It
// returns false (never an error) when no secret has been configured yet,
// so an unpaired installation denies every CloudAI call by default.
func Verify(presented string) bool {
	hash, err := keyring.Get(keyringService, keyringEntry)
	if err != nil || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented)) == nil
}

// Configured reports whether a pairing secret has been set up.
func Configured() bool {
	hash, err := keyring.Get(keyringService, keyringEntry)
	return err == nil && hash != ""
}

// Clear removes the stored pairing secret, which has the effect of
// immediately denying every future CloudAI call until a new one is set.
func Clear() error {
	err := keyring.Delete(keyringService, keyringEntry)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("pairing: clearing secret: %w", err)
	}
	return nil
}
