package platform

import (
	"context"
	"fmt"
	"time"

	"BangerBoard/internal/domain"
)

// Item is one piece of platform content normalized into a common shape.
type Item struct {
	ID           string
	Title        string
	Description  string
	URL          string
	ThumbnailURL string
	PublishedAt  time.Time
	ViewCount    int64
	LikeCount    int
	// IsReview is set when the platform itself classified the item as a review.
	IsReview bool
}

// Adapter normalizes one platform's content for the scrape orchestrator.
type Adapter interface {
	Platform() domain.Platform
	// Configured reports whether the adapter has the credentials it needs.
	Configured() bool
	// ResolveChannelID derives the stable platform-native channel/user id of a show.
	ResolveChannelID(ctx context.Context, show domain.Show) (string, error)
	// LatestItem returns the most recent upload of the channel.
	LatestItem(ctx context.Context, channelID string) (Item, error)
	// RecentItems lists recent uploads that may contain reviews.
	RecentItems(ctx context.Context, channelID string) ([]Item, error)
}

// LiveChecker is implemented by adapters able to report live status.
type LiveChecker interface {
	IsLive(ctx context.Context, channelID string) (bool, error)
}

// Registry keeps a mapping from platforms to their adapters.
type Registry struct {
	adapters map[domain.Platform]Adapter
}

// NewRegistry builds a registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: map[domain.Platform]Adapter{}}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an adapter implementation.
func (r *Registry) Register(adapter Adapter) {
	if r.adapters == nil {
		r.adapters = map[domain.Platform]Adapter{}
	}
	r.adapters[adapter.Platform()] = adapter
}

// Resolve returns the adapter for a platform or an error if it is absent.
func (r *Registry) Resolve(p domain.Platform) (Adapter, error) {
	if adapter, ok := r.adapters[p]; ok {
		return adapter, nil
	}
	return nil, fmt.Errorf("unsupported platform: %s", p)
}
