package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/platform"
	"BangerBoard/internal/ports"
)

const (
	snippetLimit      = 200
	noDescription     = "No description available"
	fetchErrorSnippet = "Error fetching content from URL"
	fastPathKeyword   = "review"
)

// ContentCheck is the normalized descriptor the evaluator derived for a URL.
type ContentCheck struct {
	MeetsCriteria  bool
	Title          string
	Description    string
	ChannelID      string
	Thumbnail      string
	ViewCount      int64
	ContentSnippet string
}

// CriteriaEvaluator decides whether submitted content may be published unattended.
type CriteriaEvaluator struct {
	keywords  []string
	inspector ports.PageInspector
	logger    *slog.Logger
}

// NewCriteriaEvaluator builds an evaluator; inspector may be nil to stay URL-only.
func NewCriteriaEvaluator(keywords []string, inspector ports.PageInspector, logger *slog.Logger) *CriteriaEvaluator {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &CriteriaEvaluator{keywords: lowered, inspector: inspector, logger: logger}
}

// Evaluate never fails: derivation errors degrade to MeetsCriteria=false so
// the submission is routed to a human.
func (e *CriteriaEvaluator) Evaluate(ctx context.Context, rawURL string, p domain.Platform) (check ContentCheck) {
	defer func() {
		if r := recover(); r != nil {
			e.warn("content check panicked", "url", rawURL, "panic", r)
			check = ContentCheck{ContentSnippet: fetchErrorSnippet}
		}
	}()

	check = describeFromURL(rawURL, p)
	lowerURL := strings.ToLower(rawURL)

	if strings.Contains(lowerURL, fastPathKeyword) {
		check.MeetsCriteria = true
		check.ContentSnippet = snippet(check.Description)
		return check
	}

	if e.inspector != nil {
		meta, err := e.inspector.Inspect(ctx, rawURL)
		if err != nil {
			e.warn("content fetch failed", "url", rawURL, "error", err)
			return ContentCheck{ContentSnippet: fetchErrorSnippet}
		}
		mergeMetadata(&check, meta)
	}

	combined := strings.ToLower(check.Title + " " + check.Description)
	check.MeetsCriteria = e.matches(lowerURL) || e.matches(combined)
	check.ContentSnippet = snippet(check.Description)
	return check
}

func (e *CriteriaEvaluator) matches(text string) bool {
	for _, k := range e.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func (e *CriteriaEvaluator) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

func describeFromURL(rawURL string, p domain.Platform) ContentCheck {
	var c ContentCheck
	switch p {
	case domain.PlatformYouTube:
		if id, ok := platform.YouTubeVideoID(rawURL); ok {
			c.Title = fmt.Sprintf("YouTube Video (ID: %s)", id)
			c.Description = fmt.Sprintf("Content from YouTube video at %s", rawURL)
			c.Thumbnail = fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", id)
		}
		if id, ok := platform.YouTubeChannelID(rawURL); ok {
			c.ChannelID = id
		}
	case domain.PlatformTwitch:
		if name, ok := platform.TwitchChannel(rawURL); ok {
			c.Title = fmt.Sprintf("Twitch Channel: %s", name)
			c.Description = fmt.Sprintf("Content from Twitch channel %s", name)
			c.ChannelID = name
		}
	case domain.PlatformInstagram:
		c.Title = "Instagram Content"
		c.Description = fmt.Sprintf("Content from Instagram at %s", rawURL)
	case domain.PlatformTikTok:
		c.Title = "TikTok Content"
		c.Description = fmt.Sprintf("Content from TikTok at %s", rawURL)
	}
	return c
}

func mergeMetadata(c *ContentCheck, meta ports.PageMetadata) {
	if meta.Title != "" {
		c.Title = meta.Title
	}
	if meta.Description != "" {
		c.Description = meta.Description
	}
	if c.Thumbnail == "" && meta.Image != "" {
		c.Thumbnail = meta.Image
	}
	if meta.ViewCount > 0 {
		c.ViewCount = meta.ViewCount
	}
}

func snippet(description string) string {
	if description == "" {
		return noDescription
	}
	if utf8.RuneCountInString(description) <= snippetLimit {
		return description
	}
	return string([]rune(description)[:snippetLimit])
}
