package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// SubmissionStatus enumerates moderation milestones.
type SubmissionStatus string

const (
	StatusPending       SubmissionStatus = "pending"
	StatusApproved      SubmissionStatus = "approved"
	StatusRejected      SubmissionStatus = "rejected"
	StatusHoldForReview SubmissionStatus = "hold_for_review"
)

// Submission is a user-proposed URL awaiting or having completed moderation.
type Submission struct {
	ID            int64
	URL           string
	URLHash       string
	Platform      Platform
	SubmittedAt   time.Time
	Status        SubmissionStatus
	MeetsCriteria bool
}

// NormalizeURL trims and case-folds a URL for duplicate detection.
func NormalizeURL(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// HashURL returns the stable dedup key of a submitted URL.
func HashURL(raw string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(raw)))
	return hex.EncodeToString(sum[:])
}
