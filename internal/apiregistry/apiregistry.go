// Package apiregistry builds generated Google API clients by name and
// version, the way a discovery-based builder would.
package apiregistry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/analyticsreporting/v4"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/slides/v1"
)

var ErrUnknownAPI = errors.New("unknown API")

// BuildError reports a client that could not be constructed for an API.
type BuildError struct {
	API     string
	Version string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s %s client: %v", e.API, e.Version, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Constructor creates a client from the given options.
type Constructor func(ctx context.Context, opts ...option.ClientOption) (any, error)

// Adapt turns a generated NewService function into a Constructor.
func Adapt[T any](newService func(context.Context, ...option.ClientOption) (T, error)) Constructor {
	return func(ctx context.Context, opts ...option.ClientOption) (any, error) {
		svc, err := newService(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
}

// Registry maps "name/version" to a client constructor.
type Registry struct {
	constructors map[string]Constructor
	opts         []option.ClientOption
}

// New returns an empty registry. opts are appended to every build.
func New(opts ...option.ClientOption) *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
		opts:         opts,
	}
}

// Default returns a registry preloaded with the APIs this module calls:
// Analytics Reporting v4, Sheets v4 and Slides v1.
func Default(opts ...option.ClientOption) *Registry {
	r := New(opts...)
	r.Register("analyticsreporting", "v4", Adapt(analyticsreporting.NewService))
	r.Register("sheets", "v4", Adapt(sheets.NewService))
	r.Register("slides", "v1", Adapt(slides.NewService))
	return r
}

// Register adds or replaces the constructor for name/version.
func (r *Registry) Register(name, version string, c Constructor) {
	r.constructors[key(name, version)] = c
}

// Known lists the registered "name/version" keys in sorted order.
func (r *Registry) Known() []string {
	out := make([]string, 0, len(r.constructors))
	for k := range r.constructors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BuildClient constructs the client for name/version authorized by cred.
func (r *Registry) BuildClient(ctx context.Context, name, version string, cred *google.Credentials) (any, error) {
	c, ok := r.constructors[key(name, version)]
	if !ok {
		return nil, &BuildError{API: name, Version: version, Err: ErrUnknownAPI}
	}
	if cred == nil {
		return nil, &BuildError{API: name, Version: version, Err: errors.New("nil credentials")}
	}

	opts := make([]option.ClientOption, 0, len(r.opts)+1)
	opts = append(opts, option.WithCredentials(cred))
	opts = append(opts, r.opts...)

	client, err := c(ctx, opts...)
	if err != nil {
		return nil, &BuildError{API: name, Version: version, Err: err}
	}
	return client, nil
}

func key(name, version string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "/" + strings.ToLower(strings.TrimSpace(version))
}
