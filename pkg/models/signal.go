package models

import "time"

// Platform identifies a community signal source.
type Platform string

const (
	PlatformReddit      Platform = "reddit"
	PlatformHackerNews  Platform = "hackernews"
	PlatformYouTube     Platform = "youtube"
	PlatformProductHunt Platform = "producthunt"
)

// Sentiment is the coarse tone of a signal.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// SignalOrigin tells whether a signal came from the real platform or from
// the synthetic fallback set.
type SignalOrigin string

const (
	OriginLive SignalOrigin = "live"
	OriginMock SignalOrigin = "mock"
)

// Engagement holds platform-dependent interaction counts. Absent counts are nil.
type Engagement struct {
	Upvotes  *int `json:"upvotes,omitempty"`
	Comments *int `json:"comments,omitempty"`
	Likes    *int `json:"likes,omitempty"`
	Shares   *int `json:"shares,omitempty"`
	Views    *int `json:"views,omitempty"`
}

// UpvoteCount returns upvotes, or 0 when the platform has none.
func (e Engagement) UpvoteCount() int {
	if e.Upvotes == nil {
		return 0
	}
	return *e.Upvotes
}

// CommentCount returns comments, or 0 when the platform has none.
func (e Engagement) CommentCount() int {
	if e.Comments == nil {
		return 0
	}
	return *e.Comments
}

// Count is a helper for building Engagement literals.
func Count(n int) *int {
	return &n
}

// CommunitySignal is one normalized community post used as evidence of
// market interest or pain. It is produced per request and never stored.
type CommunitySignal struct {
	ID                string       `json:"id"`
	Platform          Platform     `json:"platform"`
	Source            string       `json:"source"`
	Title             string       `json:"title"`
	Content           string       `json:"content"`
	URL               string       `json:"url"`
	Engagement        Engagement   `json:"engagement"`
	Sentiment         Sentiment    `json:"sentiment"`
	SignalStrength    int          `json:"signalStrength"`
	ExtractedProblems []string     `json:"extractedProblems"`
	Keywords          []string     `json:"keywords"`
	CreatedAt         time.Time    `json:"createdAt"`
	Origin            SignalOrigin `json:"origin"`
}

// RelevanceMatch is a signal scored against one idea.
type RelevanceMatch struct {
	CommunitySignal
	RelevanceScore int    `json:"relevanceScore"`
	MatchReason    string `json:"matchReason"`
}
