package models

import (
	"time"

	"github.com/google/uuid"
)

// Demo account that owns anonymously submitted ideas.
const (
	DemoUserEmail = "demo@upstart.com"
	DemoUserName  = "Demo User"
)

// User is the owner of submitted ideas.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is the subset of a user embedded in idea responses.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  *string   `json:"name"`
	Email string    `json:"email"`
}
