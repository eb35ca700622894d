package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/credits"
)

// Session owns one workload list for the lifetime of a user session.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	Workloads *credits.List `json:"workloads"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func NewSession(id uuid.UUID) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Workloads: credits.Initialize(nil),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
