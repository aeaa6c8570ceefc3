// SPDX-License-Identifier: MIT

// Package auth owns the participant identity: the persisted login, the
// in-memory snapshot read by the attendance flow, and the login/register API.
package auth

import (
	"context"
	"strings"
	"sync"
)

// IdentitySource exposes the cached participant identity. Reads are
// synchronous and never touch the network or disk.
type IdentitySource interface {
	CurrentParticipantID() (string, bool)
}

// Identity is the logged-in participant as seen by the rest of the app.
type Identity struct {
	ID    string
	Email string
	Name  string
}

func identityFromUser(u User) Identity {
	name := u.Email
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return Identity{ID: u.ID, Email: u.Email, Name: name}
}

// Provider caches the current identity in memory, backed by Storage.
type Provider struct {
	mu      sync.RWMutex
	current *Identity
	storage *Storage
}

// NewProvider returns a provider with no identity loaded.
func NewProvider(storage *Storage) *Provider {
	return &Provider{storage: storage}
}

// Load restores the identity from storage. A missing or unreadable record
// leaves the provider logged out.
func (p *Provider) Load(ctx context.Context) {
	u := p.storage.User(ctx)
	p.mu.Lock()
	defer p.mu.Unlock()
	if u == nil {
		p.current = nil
		return
	}
	id := identityFromUser(*u)
	p.current = &id
}

// SetUser persists u and makes it the current identity.
func (p *Provider) SetUser(ctx context.Context, u User, token string) error {
	if err := p.storage.SaveUser(ctx, u, token); err != nil {
		return err
	}
	id := identityFromUser(u)
	p.mu.Lock()
	p.current = &id
	p.mu.Unlock()
	return nil
}

// Logout clears both the cached identity and storage.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	return p.storage.Clear(ctx)
}

// Current returns a copy of the current identity.
func (p *Provider) Current() (Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return Identity{}, false
	}
	return *p.current, true
}

// CurrentParticipantID implements IdentitySource.
func (p *Provider) CurrentParticipantID() (string, bool) {
	id, ok := p.Current()
	if !ok || id.ID == "" {
		return "", false
	}
	return id.ID, true
}

// Token returns the persisted session token, or "" when logged out.
func (p *Provider) Token(ctx context.Context) string {
	return p.storage.Token(ctx)
}
