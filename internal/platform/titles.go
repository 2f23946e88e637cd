package platform

import (
	"regexp"
	"strings"
)

// UnknownArtist is recorded when no title pattern yields an artist.
const UnknownArtist = "Unknown Artist"

// TitlePattern pairs an expression with the extractor applied to its submatches.
type TitlePattern struct {
	Name    string
	Expr    *regexp.Regexp
	Extract func(groups []string) (artist, song string)
}

func artistAndSong(groups []string) (string, string) {
	artist := strings.TrimSpace(groups[1])
	song := ""
	if len(groups) > 2 {
		song = strings.TrimSpace(groups[2])
	}
	return artist, song
}

func artistOnly(groups []string) (string, string) {
	return strings.TrimSpace(groups[1]), ""
}

// TitlePatterns is evaluated in order; the first match wins, so entries go
// from most to least specific.
var TitlePatterns = []TitlePattern{
	{Name: "reviewing-prefix", Expr: regexp.MustCompile(`(?i)reviewing:?\s*([^-]+)\s*-\s*(.+)`), Extract: artistAndSong},
	{Name: "review-prefix", Expr: regexp.MustCompile(`(?i)review:?\s*([^-]+)\s*-\s*(.+)`), Extract: artistAndSong},
	{Name: "review-suffix", Expr: regexp.MustCompile(`(?i)([^-|]+)\s*-\s*([^|]+).*review`), Extract: artistAndSong},
	{Name: "reviewed-from", Expr: regexp.MustCompile(`(?i)reviewed the latest from\s+([^!.,?]+)`), Extract: artistOnly},
	{Name: "possessive-release", Expr: regexp.MustCompile(`(?i)\bis\s+(.+?)'s\s+new\s+(?:album|song|track|project|single)`), Extract: artistOnly},
	{Name: "artist-dash-song", Expr: regexp.MustCompile(`(?i)([^-|]+)\s*-\s*([^|]+)`), Extract: artistAndSong},
}

// ExtractArtist runs patterns against title and returns the first non-empty artist.
func ExtractArtist(patterns []TitlePattern, title string) (artist, song string) {
	for _, p := range patterns {
		groups := p.Expr.FindStringSubmatch(title)
		if groups == nil {
			continue
		}
		artist, song = p.Extract(groups)
		if artist != "" {
			return artist, song
		}
	}
	return UnknownArtist, ""
}

var (
	reviewTitleTerms       = []string{"review", "reaction", "reacting", "critique"}
	reviewDescriptionTerms = []string{"review", "critique", "rating the"}
)

// LooksLikeReview applies the review-detection heuristic to an item.
func LooksLikeReview(item Item) bool {
	if item.IsReview {
		return true
	}
	title := strings.ToLower(item.Title)
	for _, term := range reviewTitleTerms {
		if strings.Contains(title, term) {
			return true
		}
	}
	desc := strings.ToLower(item.Description)
	for _, term := range reviewDescriptionTerms {
		if strings.Contains(desc, term) {
			return true
		}
	}
	return false
}
