package models

import (
	"time"

	"github.com/google/uuid"
)

// CompetitionLevel is the coarse competition tier of a keyword.
type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "LOW"
	CompetitionMedium CompetitionLevel = "MEDIUM"
	CompetitionHigh   CompetitionLevel = "HIGH"
)

// Keyword is a search term associated with an idea.
type Keyword struct {
	ID           uuid.UUID         `json:"id"`
	IdeaID       uuid.UUID         `json:"ideaId"`
	Keyword      string            `json:"keyword"`
	SearchVolume *int              `json:"searchVolume"`
	Competition  *CompetitionLevel `json:"competition"`
	GrowthRate   *float64          `json:"growthRate"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// IdeaCommunitySignal is a community reference attached to an idea by hand,
// as opposed to the transient CommunitySignal produced by collection.
type IdeaCommunitySignal struct {
	ID              uuid.UUID `json:"id"`
	IdeaID          uuid.UUID `json:"ideaId"`
	Platform        string    `json:"platform"`
	CommunityName   string    `json:"communityName"`
	MemberCount     *int      `json:"memberCount"`
	EngagementScore *float64  `json:"engagementScore"`
	SignalStrength  *int      `json:"signalStrength"`
	SourceURL       *string   `json:"sourceUrl"`
	CreatedAt       time.Time `json:"createdAt"`
}
