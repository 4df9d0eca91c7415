package models

import (
	"time"

	"gorm.io/gorm"
)

// Session is a completed, qualifying focus session. Once queued it is never mutated.
type Session struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	StartedAt   time.Time      `gorm:"not null;index" json:"started_at"`
	EndedAt     time.Time      `gorm:"not null;index" json:"ended_at"`
	Duration    time.Duration  `gorm:"not null" json:"duration"`
	ProcessName string         `gorm:"not null;index" json:"process_name"`
	WindowTitle string         `gorm:"not null" json:"window_title"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// DurationSeconds returns the duration truncated to whole seconds.
func (s Session) DurationSeconds() int64 {
	return int64(s.Duration / time.Second)
}

type AppSummary struct {
	ProcessName  string  `json:"process_name"`
	TotalSeconds int64   `json:"total_seconds"`
	TotalMinutes float64 `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	SessionCount int     `json:"session_count"`
	Percentage   float64 `json:"percentage,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period       ReportPeriod `json:"period"`
	Apps         []AppSummary `json:"apps"`
	TotalSeconds int64        `json:"total_seconds"`
	TotalMinutes float64      `json:"total_minutes"`
	TotalHours   float64      `json:"total_hours"`
	GeneratedAt  time.Time    `json:"generated_at"`
}
