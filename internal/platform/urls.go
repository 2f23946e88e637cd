package platform

import "regexp"

var (
	youtubeVideoExpr   = regexp.MustCompile(`^.*((youtu.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?]*).*`)
	youtubeChannelExpr = regexp.MustCompile(`(?i)youtube\.com/channel/(UC[a-zA-Z0-9_-]{22})`)
	youtubeHandleExpr  = regexp.MustCompile(`(?i)youtube\.com/@([a-zA-Z0-9_.-]+)`)
	twitchChannelExpr  = regexp.MustCompile(`(?i)twitch\.tv/([a-zA-Z0-9_]+)`)
	instagramUserExpr  = regexp.MustCompile(`(?i)instagram\.com/([a-zA-Z0-9._]+)/?`)
	tiktokUserExpr     = regexp.MustCompile(`(?i)tiktok\.com/@([a-zA-Z0-9._]+)/?`)
)

// instagramReserved are path segments that are not account names.
var instagramReserved = map[string]bool{"p": true, "reel": true, "reels": true, "stories": true, "explore": true, "tv": true}

// YouTubeVideoID returns the 11-character video id of a watch/short/embed URL.
func YouTubeVideoID(rawURL string) (string, bool) {
	m := youtubeVideoExpr.FindStringSubmatch(rawURL)
	if m == nil || len(m[7]) != 11 {
		return "", false
	}
	return m[7], true
}

// YouTubeChannelID returns the UC... id of a /channel/ URL.
func YouTubeChannelID(rawURL string) (string, bool) {
	m := youtubeChannelExpr.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// YouTubeHandle returns the @handle of a channel URL without the @.
func YouTubeHandle(rawURL string) (string, bool) {
	m := youtubeHandleExpr.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// TwitchChannel returns the channel login of a twitch.tv URL.
func TwitchChannel(rawURL string) (string, bool) {
	m := twitchChannelExpr.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// InstagramUsername returns the account name of an instagram.com profile URL.
func InstagramUsername(rawURL string) (string, bool) {
	m := instagramUserExpr.FindStringSubmatch(rawURL)
	if m == nil || instagramReserved[m[1]] {
		return "", false
	}
	return m[1], true
}

// TikTokUsername returns the @account of a tiktok.com URL without the @.
func TikTokUsername(rawURL string) (string, bool) {
	m := tiktokUserExpr.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}
