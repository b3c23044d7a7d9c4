package models

import (
	"time"
)

// FlipbookView is an immutable analytics event: one row per recorded view.
type FlipbookView struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FlipbookID uint      `json:"flipbook_id" gorm:"not null;index"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}

type FlipbookStats struct {
	FlipbookID  uint           `json:"flipbook_id"`
	ViewCount   int64          `json:"view_count"`
	RecentViews []FlipbookView `json:"recent_views"`
}
