// Package auth supplies the current-user identity that scopes every
// repository. The core never mixes data across users; with no user present a
// caller sees an empty collection.
package auth

import (
	"context"
	"strings"
	"sync"
)

// UserID identifies an authenticated user.
type UserID string

type contextKey struct{}

// WithUser binds a user identity to the context.
func WithUser(ctx context.Context, user UserID) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns the user identity bound to ctx, if any.
func FromContext(ctx context.Context) (UserID, bool) {
	user, ok := ctx.Value(contextKey{}).(UserID)
	return user, ok && user != ""
}

// Provider resolves the current user and announces sign-in/sign-out.
type Provider interface {
	// CurrentUser returns the identity bound to ctx, if any.
	CurrentUser(ctx context.Context) (UserID, bool)
	// Authenticate resolves a bearer token to a user.
	Authenticate(token string) (UserID, bool)
	// OnAuthChange registers fn, invoked on sign-in (signedIn=true) and
	// sign-out (signedIn=false).
	OnAuthChange(fn func(user UserID, signedIn bool))
}

// TokenProvider maps static bearer tokens to user ids, parsed from a
// "token:user,token:user" config string.
type TokenProvider struct {
	mu        sync.RWMutex
	tokens    map[string]UserID
	listeners []func(UserID, bool)
}

// NewTokenProvider parses the users spec. Malformed entries are skipped.
func NewTokenProvider(spec string) *TokenProvider {
	tokens := make(map[string]UserID)
	for _, pair := range strings.Split(spec, ",") {
		token, user, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || token == "" || user == "" {
			continue
		}
		tokens[token] = UserID(user)
	}
	return &TokenProvider{tokens: tokens}
}

func (p *TokenProvider) CurrentUser(ctx context.Context) (UserID, bool) {
	return FromContext(ctx)
}

func (p *TokenProvider) Authenticate(token string) (UserID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	user, ok := p.tokens[token]
	return user, ok
}

func (p *TokenProvider) OnAuthChange(fn func(UserID, bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Revoke removes a token and announces the sign-out of its user.
func (p *TokenProvider) Revoke(token string) {
	p.mu.Lock()
	user, ok := p.tokens[token]
	if ok {
		delete(p.tokens, token)
	}
	listeners := append(([]func(UserID, bool))(nil), p.listeners...)
	p.mu.Unlock()

	if ok {
		for _, fn := range listeners {
			fn(user, false)
		}
	}
}
