package token

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"BangerBoard/internal/ports"
)

const (
	// DefaultTTL is how long an emailed moderation link stays valid.
	DefaultTTL = 7 * 24 * time.Hour
	tokenBytes = 32
	actionPath = "/api/submission-action"
)

// Issued describes a freshly minted action token and its moderation links.
type Issued struct {
	Token         string
	ApproveURL    string
	DisapproveURL string
	ExpiresAt     time.Time
}

// Service issues and verifies action tokens binding approve/disapprove to one submission.
type Service struct {
	store   ports.TokenStore
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewService wires a token store with the public base URL used in action links.
func NewService(store ports.TokenStore, baseURL string, opts ...Option) *Service {
	s := &Service{
		store:   store,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue mints a new token for submissionID, replacing any previous one.
func (s *Service) Issue(ctx context.Context, submissionID string) (Issued, error) {
	if submissionID == "" {
		return Issued{}, fmt.Errorf("issue token: empty submission id")
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return Issued{}, fmt.Errorf("generate token: %w", err)
	}
	tok := hex.EncodeToString(raw)
	expiresAt := s.now().Add(s.ttl)

	if err := s.store.Put(ctx, submissionID, tok, expiresAt); err != nil {
		return Issued{}, fmt.Errorf("store token: %w", err)
	}

	return Issued{
		Token:         tok,
		ApproveURL:    s.actionURL("approve", submissionID, tok),
		DisapproveURL: s.actionURL("disapprove", submissionID, tok),
		ExpiresAt:     expiresAt,
	}, nil
}

// Verify reports whether tok is the current, unexpired token of submissionID.
// Every failure, including store errors, yields false.
func (s *Service) Verify(ctx context.Context, submissionID, tok string) bool {
	if submissionID == "" || tok == "" {
		return false
	}

	stored, expiresAt, ok, err := s.store.Get(ctx, submissionID)
	if err != nil || !ok {
		return false
	}
	if s.now().After(expiresAt) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(tok)) == 1
}

func (s *Service) actionURL(action, submissionID, tok string) string {
	q := url.Values{}
	q.Set("action", action)
	q.Set("id", submissionID)
	q.Set("token", tok)
	return s.baseURL + actionPath + "?" + q.Encode()
}
