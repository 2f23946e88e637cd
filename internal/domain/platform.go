package domain

import "strings"

// Platform names a content host a show lives on.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTwitch    Platform = "twitch"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

var platformDomains = []struct {
	domain   string
	platform Platform
}{
	{"youtube.com", PlatformYouTube},
	{"youtu.be", PlatformYouTube},
	{"twitch.tv", PlatformTwitch},
	{"instagram.com", PlatformInstagram},
	{"tiktok.com", PlatformTikTok},
}

// DetectPlatform classifies a URL by substring match on known domains.
func DetectPlatform(rawURL string) (Platform, bool) {
	lower := strings.ToLower(rawURL)
	for _, d := range platformDomains {
		if strings.Contains(lower, d.domain) {
			return d.platform, true
		}
	}
	return "", false
}

// DisplayName capitalizes the platform identifier, e.g. "Youtube".
func (p Platform) DisplayName() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}
