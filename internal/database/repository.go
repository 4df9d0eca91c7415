package database

import (
	"time"

	"github.com/actionsum/workwatch/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all database operations for sessions and error logs
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateSession inserts a completed session. The caller's value is copied so
// the queued record is never mutated by gorm filling in the primary key.
func (r *Repository) CreateSession(session models.Session) error {
	row := session
	row.ID = 0
	if result := r.db.Create(&row); result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert session")
	}
	return nil
}

// GetSessionsSince retrieves sessions that ended at or after since, oldest first
func (r *Repository) GetSessionsSince(since time.Time) ([]models.Session, error) {
	var sessions []models.Session
	result := r.db.Where("ended_at >= ?", since).Order("ended_at ASC, id ASC").Find(&sessions)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query sessions")
	}
	return sessions, nil
}

// GetLatestSessions returns the newest limit sessions, oldest first
func (r *Repository) GetLatestSessions(limit int) ([]models.Session, error) {
	var sessions []models.Session
	result := r.db.Order("ended_at DESC, id DESC").Limit(limit).Find(&sessions)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query latest sessions")
	}
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// GetAppSummarySince aggregates session time per process since a given time.
// Durations are stored in nanoseconds; the sum is converted to whole seconds.
func (r *Repository) GetAppSummarySince(since time.Time) ([]models.AppSummary, error) {
	var summaries []models.AppSummary

	result := r.db.Model(&models.Session{}).
		Select("process_name, SUM(duration) / ? as total_seconds, COUNT(*) as session_count", int64(time.Second)).
		Where("ended_at >= ?", since).
		Group("process_name").
		Order("total_seconds DESC").
		Scan(&summaries)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query app summary")
	}

	return summaries, nil
}

// GetLatest retrieves the most recent session, or nil if none exist
func (r *Repository) GetLatest() (*models.Session, error) {
	var session models.Session
	result := r.db.Order("ended_at DESC, id DESC").First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest session")
	}
	return &session, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetErrorLogsSince retrieves error logs since a given time, newest first
func (r *Repository) GetErrorLogsSince(since time.Time) ([]models.ErrorLog, error) {
	var logs []models.ErrorLog
	result := r.db.Where("timestamp >= ?", since).Order("timestamp DESC").Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// Clear removes all sessions from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM sessions")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear sessions")
	}
	return nil
}
