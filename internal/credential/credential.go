// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package credential resolves the summarization API key from pluggable
// providers: an explicit value, a secrets directory, and a persisted sqlite
// store. Keys are validated by prefix only.
package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

var (
	// ErrMissingCredential is returned when no provider holds a key.
	ErrMissingCredential = errors.New("missing summarization API key")

	// ErrInvalidCredential is returned when a key fails the prefix check.
	ErrInvalidCredential = errors.New("invalid summarization API key")
)

// Provider looks up a named credential. A missing credential is reported
// with ok=false and a nil error.
type Provider interface {
	Lookup(ctx context.Context, name string) (value string, ok bool, err error)
}

// Static serves credentials from a fixed map, typically filled from flags,
// environment or the config file.
type Static map[string]string

// Lookup returns the non-empty value stored under name.
func (s Static) Lookup(_ context.Context, name string) (string, bool, error) {
	v := strings.TrimSpace(s[name])
	return v, v != "", nil
}

// Chain consults providers in order; the first hit wins.
type Chain []Provider

// Lookup returns the first value found. A provider error stops the chain.
func (c Chain) Lookup(ctx context.Context, name string) (string, bool, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		v, ok, err := p.Lookup(ctx, name)
		if err != nil {
			return "", false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return "", false, nil
}

// KeyName is the credential name under which a provider's key is stored.
func KeyName(p types.SummaryProvider) string {
	return string(p) + "-api-key"
}

// Prefix is the required key prefix for a provider.
func Prefix(p types.SummaryProvider) string {
	switch p {
	case types.ProviderAnthropic:
		return "sk-ant-"
	default:
		return "sk-"
	}
}

// Validate checks key against the provider's prefix.
func Validate(p types.SummaryProvider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrMissingCredential
	}
	if !strings.HasPrefix(key, Prefix(p)) {
		return fmt.Errorf("%w: %s keys start with %q", ErrInvalidCredential, p, Prefix(p))
	}
	return nil
}

// Resolve looks up and validates the key for provider p.
func Resolve(ctx context.Context, src Provider, p types.SummaryProvider) (string, error) {
	if src == nil {
		return "", fmt.Errorf("%w for %s", ErrMissingCredential, p)
	}
	key, ok, err := src.Lookup(ctx, KeyName(p))
	if err != nil {
		return "", fmt.Errorf("looking up %s: %w", KeyName(p), err)
	}
	if !ok {
		return "", fmt.Errorf("%w for %s: run \"scholar-digest key set\"", ErrMissingCredential, p)
	}
	if err := Validate(p, key); err != nil {
		return "", err
	}
	return strings.TrimSpace(key), nil
}

// Mask hides all but the prefix and last four characters of key.
func Mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:3] + strings.Repeat("*", len(key)-7) + key[len(key)-4:]
}
