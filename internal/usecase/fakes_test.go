package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/platform"
	"BangerBoard/internal/ports"
	"BangerBoard/internal/token"
)

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type stubEvaluator struct {
	check ContentCheck
	calls atomic.Int32
}

func (s *stubEvaluator) Evaluate(context.Context, string, domain.Platform) ContentCheck {
	s.calls.Add(1)
	return s.check
}

type recordingRequester struct {
	mu   sync.Mutex
	reqs []ReviewRequest
	err  error
}

func (r *recordingRequester) RequestReview(_ context.Context, req ReviewRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return r.err
}

type staticVerifier struct {
	id, token string
}

func (v staticVerifier) Verify(_ context.Context, id, tok string) bool {
	return id == v.id && tok == v.token
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (p *recordingPublisher) PublishChange(_ context.Context, e domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type recordingMessenger struct {
	name string
	err  error
	sent []ports.Message
}

func (m *recordingMessenger) Name() string { return m.name }

func (m *recordingMessenger) Send(_ context.Context, msg ports.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

type stubIssuer struct {
	err error
}

func (s stubIssuer) Issue(_ context.Context, id string) (token.Issued, error) {
	if s.err != nil {
		return token.Issued{}, s.err
	}
	return token.Issued{
		Token:         "tok-" + id,
		ApproveURL:    "https://example.test/api/submission-action?action=approve&id=" + id + "&token=tok-" + id,
		DisapproveURL: "https://example.test/api/submission-action?action=disapprove&id=" + id + "&token=tok-" + id,
		ExpiresAt:     fixedNow.Add(token.DefaultTTL),
	}, nil
}

type stubInspector struct {
	meta ports.PageMetadata
	err  error
}

func (s stubInspector) Inspect(context.Context, string) (ports.PageMetadata, error) {
	return s.meta, s.err
}

// fakeAdapter scripts a platform adapter.
type fakeAdapter struct {
	platform   domain.Platform
	configured bool

	channelID  string
	channelErr error
	latest     platform.Item
	latestErr  error
	items      []platform.Item
	itemsErr   error
	panicOn    string
}

func (f *fakeAdapter) Platform() domain.Platform { return f.platform }
func (f *fakeAdapter) Configured() bool          { return f.configured }

func (f *fakeAdapter) ResolveChannelID(context.Context, domain.Show) (string, error) {
	if f.panicOn == "channel" {
		panic("boom")
	}
	return f.channelID, f.channelErr
}

func (f *fakeAdapter) LatestItem(context.Context, string) (platform.Item, error) {
	return f.latest, f.latestErr
}

func (f *fakeAdapter) RecentItems(context.Context, string) ([]platform.Item, error) {
	return f.items, f.itemsErr
}

type liveAdapter struct {
	fakeAdapter
	live bool
}

func (l *liveAdapter) IsLive(context.Context, string) (bool, error) { return l.live, nil }

var errBoom = errors.New("boom")
