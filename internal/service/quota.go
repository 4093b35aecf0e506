// Package service implements the application's business logic.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"quickforge/internal/clients"
	"quickforge/internal/observability"
)

// ErrQuotaExceeded is returned when a free-tier account has used up
// its generation allowance.
var ErrQuotaExceeded = errors.New("free usage limit reached")

// TextGenerator is the slice of the generator client the services use.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	ReviewResume(ctx context.Context, filename string, file io.Reader) (string, error)
	EnhancePrompt(ctx context.Context, prompt string) (string, error)
}

// BlobStore uploads images and returns public URLs.
type BlobStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
	UploadWithTransform(ctx context.Context, name string, r io.Reader, transform string) (string, error)
}

// IdentityProvider reads and writes identity provider user records.
type IdentityProvider interface {
	GetUser(ctx context.Context, userID string) (clients.IdentityUser, error)
	SetFreeUsage(ctx context.Context, userID string, usage int) error
}

// QuotaGate enforces the free-tier generation allowance. Premium
// accounts pass unconditionally and never accrue usage.
type QuotaGate struct {
	identity IdentityProvider
	limit    int
}

func NewQuotaGate(identity IdentityProvider, limit int) *QuotaGate {
	return &QuotaGate{identity: identity, limit: limit}
}

// Check returns the user's current snapshot, or ErrQuotaExceeded when
// the account is out of free generations. It never mutates usage;
// ReportUsage does that after the generation succeeds.
func (g *QuotaGate) Check(ctx context.Context, userID string) (clients.IdentityUser, error) {
	user, err := g.identity.GetUser(ctx, userID)
	if err != nil {
		return user, err
	}
	if user.Plan != clients.PlanPremium && user.FreeUsage >= g.limit {
		observability.QuotaDeclines.Inc()
		return user, ErrQuotaExceeded
	}
	return user, nil
}

// ReportUsage increments the free usage counter after a successful
// generation. Failure to record usage is logged but does not fail the
// generation the user already received.
func (g *QuotaGate) ReportUsage(ctx context.Context, user clients.IdentityUser) {
	if user.Plan == clients.PlanPremium {
		return
	}
	if err := g.identity.SetFreeUsage(ctx, user.ID, user.FreeUsage+1); err != nil {
		slog.ErrorContext(ctx, "failed to record usage", "user_id", user.ID, "error", err)
	}
}
