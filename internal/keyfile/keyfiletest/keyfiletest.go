// Package keyfiletest writes throwaway service-account key files for tests.
package keyfiletest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const (
	ProjectID   = "test-project"
	ClientEmail = "reporter@test-project.iam.gserviceaccount.com"
)

var (
	keyOnce sync.Once
	key     *rsa.PrivateKey
	keyErr  error
)

func rsaKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		key, keyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if keyErr != nil {
		t.Fatalf("generate key: %v", keyErr)
	}
	return key
}

// PKCS8PEM returns the shared test key in the encoding Google issues.
func PKCS8PEM(t testing.TB) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(rsaKey(t))
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

// PKCS1PEM returns the shared test key as an "RSA PRIVATE KEY" block.
func PKCS1PEM(t testing.TB) string {
	t.Helper()
	der := x509.MarshalPKCS1PrivateKey(rsaKey(t))
	return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}))
}

// Fields returns the JSON fields of a valid service-account key. Callers
// may edit the map before passing it to WriteFields.
func Fields(t testing.TB) map[string]any {
	t.Helper()
	return map[string]any{
		"type":           "service_account",
		"project_id":     ProjectID,
		"private_key_id": "0123456789abcdef",
		"private_key":    PKCS8PEM(t),
		"client_email":   ClientEmail,
		"client_id":      "100000000000000000000",
		"token_uri":      "https://oauth2.googleapis.com/token",
	}
}

// JSON encodes a valid key.
func JSON(t testing.TB) []byte {
	t.Helper()
	data, err := json.Marshal(Fields(t))
	if err != nil {
		t.Fatalf("marshal key file: %v", err)
	}
	return data
}

// Write stores a valid key in a temp dir and returns its path.
func Write(t testing.TB) string {
	t.Helper()
	return WriteFields(t, Fields(t))
}

// WriteFields stores fields as JSON in a temp dir and returns its path.
func WriteFields(t testing.TB, fields map[string]any) string {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal key file: %v", err)
	}
	return WriteRaw(t, data)
}

// WriteRaw stores data verbatim, for malformed-file cases.
func WriteRaw(t testing.TB, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	return path
}
