package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultRating is the middle of the 1-5 scale assigned to new shows.
	DefaultRating = 3
	// PlaceholderThumbnail is shown until a scrape finds a real thumbnail.
	PlaceholderThumbnail = "/placeholder.svg?height=400&width=400"
)

// Show is a published, displayable content source (one per platform+URL).
type Show struct {
	ID              int64
	Title           string
	Description     string
	Platform        Platform
	URL             string
	ChannelID       string
	Thumbnail       string
	VideoID         string
	Rating          int
	NextShow        string
	IsLive          bool
	LastUpdated     time.Time
	ReviewContent   string
	ArtistsReviewed []string
	ViewCount       int64
	EngagementRate  float64
	HostID          string
}

// ShowUpdate carries the scraped fields to write back; nil fields are left untouched.
type ShowUpdate struct {
	ChannelID       *string
	Thumbnail       *string
	VideoID         *string
	IsLive          *bool
	ReviewContent   *string
	ArtistsReviewed []string
	LastUpdated     *time.Time
}

// Empty reports whether the update would change nothing.
func (u ShowUpdate) Empty() bool {
	return u.ChannelID == nil && u.Thumbnail == nil && u.VideoID == nil && u.IsLive == nil &&
		u.ReviewContent == nil && u.ArtistsReviewed == nil && u.LastUpdated == nil
}

// Apply copies the set fields onto the show.
func (u ShowUpdate) Apply(s *Show) {
	if u.ChannelID != nil {
		s.ChannelID = *u.ChannelID
	}
	if u.Thumbnail != nil {
		s.Thumbnail = *u.Thumbnail
	}
	if u.VideoID != nil {
		s.VideoID = *u.VideoID
	}
	if u.IsLive != nil {
		s.IsLive = *u.IsLive
	}
	if u.ReviewContent != nil {
		s.ReviewContent = *u.ReviewContent
	}
	if u.ArtistsReviewed != nil {
		s.ArtistsReviewed = append([]string(nil), u.ArtistsReviewed...)
	}
	if u.LastUpdated != nil {
		s.LastUpdated = *u.LastUpdated
	}
}

// NewPlaceholderShow builds the default profile created when a submission is approved.
func NewPlaceholderShow(platform Platform, url string, now time.Time) Show {
	return Show{
		Title:           fmt.Sprintf("New %s Show", platform.DisplayName()),
		Description:     fmt.Sprintf("Approved show profile from %s", url),
		Platform:        platform,
		URL:             url,
		Thumbnail:       PlaceholderThumbnail,
		Rating:          DefaultRating,
		NextShow:        "TBD",
		LastUpdated:     now,
		ArtistsReviewed: []string{},
	}
}

// SummarizeArtists renders the show's review blurb from distinct artist names.
func SummarizeArtists(artists []string) string {
	if len(artists) == 0 {
		return ""
	}
	shown := artists
	if len(shown) > 3 {
		shown = shown[:3]
	}
	summary := "Reviews of " + strings.Join(shown, ", ")
	if len(artists) > 3 {
		summary += " and more"
	}
	return summary
}
