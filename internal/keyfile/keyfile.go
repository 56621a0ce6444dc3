// Package keyfile loads service-account credentials from JSON key files.
package keyfile

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
)

const serviceAccountType = "service_account"

var (
	ErrNotServiceAccount = errors.New("not a service account key")
	ErrInvalidKey        = errors.New("invalid private key")
	ErrNoScopes          = errors.New("no scopes requested")
	ErrNoKeyFile         = errors.New("key file location is required")
)

// CredentialError reports a key file that could not be turned into a
// service-account credential.
type CredentialError struct {
	Path string
	Err  error
}

func (e *CredentialError) Error() string {
	if e.Path == "" {
		return "load credentials: " + e.Err.Error()
	}
	return fmt.Sprintf("load credentials from %s: %v", e.Path, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// Loader reads key files from the local filesystem.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// LoadCredential reads the key file at path and returns credentials scoped
// to scopes. No token is requested.
func (l *Loader) LoadCredential(ctx context.Context, path string, scopes []string) (*google.Credentials, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &CredentialError{Path: path, Err: ErrNoKeyFile}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CredentialError{Path: path, Err: err}
	}
	creds, err := l.LoadJSON(ctx, data, scopes)
	if err != nil {
		var ce *CredentialError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return creds, nil
}

// LoadJSON is LoadCredential for a key already held in memory.
func (l *Loader) LoadJSON(ctx context.Context, data []byte, scopes []string) (*google.Credentials, error) {
	if len(data) == 0 {
		return nil, &CredentialError{Err: errors.New("empty service account JSON")}
	}
	if len(scopes) == 0 {
		return nil, &CredentialError{Err: ErrNoScopes}
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("parse key file: %w", err)}
	}
	if head.Type != serviceAccountType {
		return nil, &CredentialError{Err: fmt.Errorf("%w: type is %q", ErrNotServiceAccount, head.Type)}
	}

	conf, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, &CredentialError{Err: err}
	}
	if conf.Email == "" {
		return nil, &CredentialError{Err: fmt.Errorf("%w: missing client_email", ErrNotServiceAccount)}
	}
	if err := checkPrivateKey(conf.PrivateKey); err != nil {
		return nil, &CredentialError{Err: err}
	}

	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, &CredentialError{Err: err}
	}
	return creds, nil
}

// checkPrivateKey accepts the same encodings the JWT signer does: PEM or raw
// DER, PKCS#8 or PKCS#1, RSA only.
func checkPrivateKey(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: missing private_key", ErrInvalidKey)
	}
	der := key
	if block, _ := pem.Decode(key); block != nil {
		der = block.Bytes
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		if _, err := x509.ParsePKCS1PrivateKey(der); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return nil
	}
	if _, ok := parsed.(*rsa.PrivateKey); !ok {
		return fmt.Errorf("%w: private key is not RSA", ErrInvalidKey)
	}
	return nil
}
