package domain

import "time"

// Review is a single scraped artist/track critique associated with a show.
type Review struct {
	ID            int64
	ShowID        int64
	ArtistName    string
	SongTitle     string
	AlbumTitle    string
	ReviewContent string
	Rating        int
	Timestamp     time.Time
	URL           string
	HostResponse  string
	Likes         int
	Dislikes      int
	IsVerified    bool
}

// ChangeEvent is emitted after a successful write so caches above storage can refresh.
type ChangeEvent struct {
	Entity string
	ID     int64
	Action string
	At     time.Time
}
