// Package servicefactory authorizes Google API clients from service-account
// key files.
//
// Each call loads the key file, builds a new client for the requested API
// and returns it. Nothing is cached between calls. Errors from the credential
// loader (*keyfile.CredentialError) and the client builder
// (*apiregistry.BuildError) are returned unchanged.
package servicefactory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gareporting/internal/apiregistry"
	"gareporting/internal/keyfile"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/analyticsreporting/v4"
)

const (
	AnalyticsReportingAPI     = "analyticsreporting"
	AnalyticsReportingVersion = "v4"
)

var ErrInvalidConfig = errors.New("invalid service config")

// CredentialLoader turns a key file into scoped credentials.
type CredentialLoader interface {
	LoadCredential(ctx context.Context, keyFile string, scopes []string) (*google.Credentials, error)
}

// ClientBuilder constructs an API client authorized by cred.
type ClientBuilder interface {
	BuildClient(ctx context.Context, apiName, apiVersion string, cred *google.Credentials) (any, error)
}

// Handle is a client bound to one API name and version.
type Handle struct {
	API     string
	Version string
	Client  any
}

// Config names the API to connect to and the key file to authorize with.
// The zero value is invalid; use NewConfig.
type Config struct {
	apiName    string
	apiVersion string
	scopes     []string
	keyFile    string
}

// NewConfig validates its arguments and returns an immutable Config.
func NewConfig(apiName, apiVersion string, scopes []string, keyFile string) (Config, error) {
	cfg := Config{
		apiName:    strings.TrimSpace(apiName),
		apiVersion: strings.TrimSpace(apiVersion),
		scopes:     append([]string(nil), scopes...),
		keyFile:    keyFile,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AnalyticsReportingConfig is the fixed read-only Analytics Reporting v4
// configuration for keyFile.
func AnalyticsReportingConfig(keyFile string) (Config, error) {
	return NewConfig(AnalyticsReportingAPI, AnalyticsReportingVersion,
		[]string{analyticsreporting.AnalyticsReadonlyScope}, keyFile)
}

func (c Config) APIName() string    { return c.apiName }
func (c Config) APIVersion() string { return c.apiVersion }
func (c Config) KeyFile() string    { return c.keyFile }

// Scopes returns a copy of the requested scopes.
func (c Config) Scopes() []string { return append([]string(nil), c.scopes...) }

// Validate reports blank API identifiers or an empty or blank scope. The key
// file path is checked by the CredentialLoader, which reports a blank path as
// a *keyfile.CredentialError.
func (c Config) Validate() error {
	switch {
	case c.apiName == "":
		return fmt.Errorf("%w: api name is required", ErrInvalidConfig)
	case c.apiVersion == "":
		return fmt.Errorf("%w: api version is required", ErrInvalidConfig)
	case len(c.scopes) == 0:
		return fmt.Errorf("%w: at least one scope is required", ErrInvalidConfig)
	}
	for i, s := range c.scopes {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: scope %d is blank", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Factory composes a CredentialLoader and a ClientBuilder.
type Factory struct {
	loader  CredentialLoader
	builder ClientBuilder
}

func New(loader CredentialLoader, builder ClientBuilder) *Factory {
	return &Factory{loader: loader, builder: builder}
}

// NewDefault uses the filesystem key loader and the default API registry.
func NewDefault() *Factory {
	return New(keyfile.NewLoader(), apiregistry.Default())
}

// GetService loads credentials for cfg and builds a client for its API.
// The builder is not called when loading credentials fails.
func (f *Factory) GetService(ctx context.Context, cfg Config) (*Handle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cred, err := f.loader.LoadCredential(ctx, cfg.keyFile, cfg.Scopes())
	if err != nil {
		return nil, err
	}

	client, err := f.builder.BuildClient(ctx, cfg.apiName, cfg.apiVersion, cred)
	if err != nil {
		return nil, err
	}

	return &Handle{API: cfg.apiName, Version: cfg.apiVersion, Client: client}, nil
}

// InitializeHandle is GetService for read-only Analytics Reporting v4.
func (f *Factory) InitializeHandle(ctx context.Context, keyFile string) (*Handle, error) {
	cfg, err := AnalyticsReportingConfig(keyFile)
	if err != nil {
		return nil, err
	}
	return f.GetService(ctx, cfg)
}

// InitializeService returns a read-only Analytics Reporting v4 client.
func (f *Factory) InitializeService(ctx context.Context, keyFile string) (*analyticsreporting.Service, error) {
	h, err := f.InitializeHandle(ctx, keyFile)
	if err != nil {
		return nil, err
	}
	svc, ok := h.Client.(*analyticsreporting.Service)
	if !ok {
		return nil, &apiregistry.BuildError{
			API:     h.API,
			Version: h.Version,
			Err:     fmt.Errorf("builder returned %T, want *analyticsreporting.Service", h.Client),
		}
	}
	return svc, nil
}

// GetService builds a client with the default factory.
func GetService(ctx context.Context, apiName, apiVersion string, scopes []string, keyFile string) (*Handle, error) {
	cfg, err := NewConfig(apiName, apiVersion, scopes, keyFile)
	if err != nil {
		return nil, err
	}
	return NewDefault().GetService(ctx, cfg)
}

// InitializeService returns a read-only Analytics Reporting v4 client built
// with the default factory.
func InitializeService(ctx context.Context, keyFile string) (*analyticsreporting.Service, error) {
	return NewDefault().InitializeService(ctx, keyFile)
}
