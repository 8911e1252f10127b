package models

import (
	"time"

	"github.com/google/uuid"
)

// IdeaStatus is the publication state of an idea.
type IdeaStatus string

const (
	IdeaStatusDraft     IdeaStatus = "draft"
	IdeaStatusPublished IdeaStatus = "published"
	IdeaStatusArchived  IdeaStatus = "archived"
)

// IsValid checks if the status is one of the known values.
func (s IdeaStatus) IsValid() bool {
	switch s {
	case IdeaStatusDraft, IdeaStatusPublished, IdeaStatusArchived:
		return true
	}
	return false
}

// Idea is a submitted startup idea.
// Stored in ideas table.
type Idea struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Problem      *string    `json:"problem"`
	Solution     *string    `json:"solution"`
	TargetMarket *string    `json:"targetMarket"`
	RevenueModel *string    `json:"revenueModel"`
	Status       IdeaStatus `json:"status"`
	UserID       uuid.UUID  `json:"userId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IdeaUpdate carries a partial update. Nil fields are left unchanged.
type IdeaUpdate struct {
	Title        *string     `json:"title"`
	Description  *string     `json:"description"`
	Problem      *string     `json:"problem"`
	Solution     *string     `json:"solution"`
	TargetMarket *string     `json:"targetMarket"`
	RevenueModel *string     `json:"revenueModel"`
	Status       *IdeaStatus `json:"status"`
}

// IsEmpty reports whether the update changes nothing.
func (u *IdeaUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Problem == nil && u.Solution == nil &&
		u.TargetMarket == nil && u.RevenueModel == nil && u.Status == nil
}

// Apply copies the set fields onto the idea.
func (u *IdeaUpdate) Apply(idea *Idea) {
	if u.Title != nil {
		idea.Title = *u.Title
	}
	if u.Description != nil {
		idea.Description = *u.Description
	}
	if u.Problem != nil {
		idea.Problem = u.Problem
	}
	if u.Solution != nil {
		idea.Solution = u.Solution
	}
	if u.TargetMarket != nil {
		idea.TargetMarket = u.TargetMarket
	}
	if u.RevenueModel != nil {
		idea.RevenueModel = u.RevenueModel
	}
	if u.Status != nil {
		idea.Status = *u.Status
	}
}

// IdeaCounts holds the number of related records for an idea.
type IdeaCounts struct {
	Analyses         int `json:"analyses"`
	Keywords         int `json:"keywords"`
	CommunitySignals int `json:"communitySignals"`
}

// IdeaScores are the four core scores copied from the latest analysis.
type IdeaScores struct {
	Opportunity int `json:"opportunity"`
	Problem     int `json:"problem"`
	Feasibility int `json:"feasibility"`
	WhyNow      int `json:"whyNow"`
}

// ScoresFromAnalysis returns nil when there is no analysis.
func ScoresFromAnalysis(a *Analysis) *IdeaScores {
	if a == nil {
		return nil
	}
	return &IdeaScores{
		Opportunity: a.OpportunityScore,
		Problem:     a.ProblemScore,
		Feasibility: a.FeasibilityScore,
		WhyNow:      a.TimingScore,
	}
}

// IdeaSummary is the list view of an idea.
type IdeaSummary struct {
	*Idea
	User            *UserSummary `json:"user"`
	LatestAnalysis  *Analysis    `json:"latestAnalysis"`
	Counts          IdeaCounts   `json:"_count"`
	RevenueEstimate string       `json:"revenueEstimate"`
	Scores          *IdeaScores  `json:"scores"`
}

// IdeaDetail is the single-idea view with all related records.
type IdeaDetail struct {
	*Idea
	User             *UserSummary           `json:"user"`
	Analyses         []*Analysis            `json:"analyses"`
	Keywords         []*Keyword             `json:"keywords"`
	CommunitySignals []*IdeaCommunitySignal `json:"communitySignals"`
	RevenueEstimate  string                 `json:"revenueEstimate"`
	Scores           *IdeaScores            `json:"scores"`
}

// IdeaPage is one page of the idea listing.
type IdeaPage struct {
	Ideas      []*IdeaSummary `json:"ideas"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination describes the position of a page within a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for a listing.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
