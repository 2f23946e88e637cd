package httpapi

import (
	"time"

	"BangerBoard/internal/domain"
)

type submissionJSON struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	Platform      string    `json:"platform"`
	SubmittedAt   time.Time `json:"submittedAt"`
	Status        string    `json:"status"`
	MeetsCriteria bool      `json:"meetsCriteria"`
}

func toSubmissionJSON(s domain.Submission) submissionJSON {
	return submissionJSON{
		ID:            s.ID,
		URL:           s.URL,
		Platform:      string(s.Platform),
		SubmittedAt:   s.SubmittedAt,
		Status:        string(s.Status),
		MeetsCriteria: s.MeetsCriteria,
	}
}

type showJSON struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Platform        string    `json:"platform"`
	URL             string    `json:"url"`
	ChannelID       string    `json:"channelId,omitempty"`
	Thumbnail       string    `json:"thumbnail"`
	VideoID         string    `json:"videoId,omitempty"`
	Rating          int       `json:"rating"`
	NextShow        string    `json:"nextShow"`
	IsLive          bool      `json:"isLive"`
	LastUpdated     time.Time `json:"lastUpdated"`
	ReviewContent   string    `json:"reviewContent"`
	ArtistsReviewed []string  `json:"artistsReviewed"`
	ViewCount       int64     `json:"viewCount"`
	EngagementRate  float64   `json:"engagementRate"`
	HostID          string    `json:"hostId,omitempty"`
}

func toShowJSON(s domain.Show) showJSON {
	artists := s.ArtistsReviewed
	if artists == nil {
		artists = []string{}
	}
	return showJSON{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		Platform:        string(s.Platform),
		URL:             s.URL,
		ChannelID:       s.ChannelID,
		Thumbnail:       s.Thumbnail,
		VideoID:         s.VideoID,
		Rating:          s.Rating,
		NextShow:        s.NextShow,
		IsLive:          s.IsLive,
		LastUpdated:     s.LastUpdated,
		ReviewContent:   s.ReviewContent,
		ArtistsReviewed: artists,
		ViewCount:       s.ViewCount,
		EngagementRate:  s.EngagementRate,
		HostID:          s.HostID,
	}
}

type reviewJSON struct {
	ID            int64     `json:"id"`
	ShowID        int64     `json:"showId"`
	ArtistName    string    `json:"artistName"`
	SongTitle     string    `json:"songTitle,omitempty"`
	AlbumTitle    string    `json:"albumTitle,omitempty"`
	ReviewContent string    `json:"reviewContent"`
	Rating        int       `json:"rating"`
	Timestamp     time.Time `json:"timestamp"`
	URL           string    `json:"url,omitempty"`
	HostResponse  string    `json:"hostResponse,omitempty"`
	Likes         int       `json:"likes"`
	Dislikes      int       `json:"dislikes"`
	IsVerified    bool      `json:"isVerified"`
}

func toReviewJSON(r domain.Review) reviewJSON {
	return reviewJSON{
		ID:            r.ID,
		ShowID:        r.ShowID,
		ArtistName:    r.ArtistName,
		SongTitle:     r.SongTitle,
		AlbumTitle:    r.AlbumTitle,
		ReviewContent: r.ReviewContent,
		Rating:        r.Rating,
		Timestamp:     r.Timestamp,
		URL:           r.URL,
		HostResponse:  r.HostResponse,
		Likes:         r.Likes,
		Dislikes:      r.Dislikes,
		IsVerified:    r.IsVerified,
	}
}
