package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/actionsum/workwatch/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Connect(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	return NewRepository(db)
}

func session(process, title string, start time.Time, d time.Duration) models.Session {
	return models.Session{
		StartedAt:   start,
		EndedAt:     start.Add(d),
		Duration:    d,
		ProcessName: process,
		WindowTitle: title,
	}
}

func TestCreateSessionDoesNotMutateInput(t *testing.T) {
	repo := newTestRepo(t)
	s := session("chrome", "Inbox", time.Now(), 6*time.Second)

	if err := repo.CreateSession(s); err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	if s.ID != 0 {
		t.Errorf("input ID = %d, want 0", s.ID)
	}

	latest, err := repo.GetLatest()
	if err != nil {
		t.Fatalf("GetLatest() error: %v", err)
	}
	if latest == nil || latest.ProcessName != "chrome" || latest.Duration != 6*time.Second {
		t.Errorf("GetLatest() = %+v", latest)
	}
}

func TestGetLatestEmpty(t *testing.T) {
	repo := newTestRepo(t)
	latest, err := repo.GetLatest()
	if err != nil {
		t.Fatalf("GetLatest() error: %v", err)
	}
	if latest != nil {
		t.Errorf("GetLatest() = %+v, want nil", latest)
	}
}

func TestGetSessionsSinceOrdered(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)

	repo.CreateSession(session("old", "x", base.Add(-48*time.Hour), time.Minute))
	repo.CreateSession(session("chrome", "a", base, time.Minute))
	repo.CreateSession(session("code", "b", base.Add(time.Minute), time.Minute))

	got, err := repo.GetSessionsSince(base)
	if err != nil {
		t.Fatalf("GetSessionsSince() error: %v", err)
	}
	if len(got) != 2 || got[0].ProcessName != "chrome" || got[1].ProcessName != "code" {
		t.Errorf("GetSessionsSince() = %+v", got)
	}
}

func TestGetLatestSessions(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Now().Add(-time.Hour)
	for i, p := range []string{"a", "b", "c"} {
		repo.CreateSession(session(p, p, base.Add(time.Duration(i)*time.Minute), 10*time.Second))
	}

	got, err := repo.GetLatestSessions(2)
	if err != nil {
		t.Fatalf("GetLatestSessions() error: %v", err)
	}
	if len(got) != 2 || got[0].ProcessName != "b" || got[1].ProcessName != "c" {
		t.Errorf("GetLatestSessions() = %+v", got)
	}
}

func TestGetAppSummarySince(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Now().Add(-time.Hour)

	repo.CreateSession(session("chrome", "a", base, 90*time.Second))
	repo.CreateSession(session("chrome", "b", base.Add(2*time.Minute), 30*time.Second))
	repo.CreateSession(session("code", "c", base.Add(4*time.Minute), 60*time.Second))

	got, err := repo.GetAppSummarySince(base)
	if err != nil {
		t.Fatalf("GetAppSummarySince() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetAppSummarySince() len = %d, want 2", len(got))
	}
	if got[0].ProcessName != "chrome" || got[0].TotalSeconds != 120 || got[0].SessionCount != 2 {
		t.Errorf("chrome summary = %+v", got[0])
	}
	if got[1].ProcessName != "code" || got[1].TotalSeconds != 60 {
		t.Errorf("code summary = %+v", got[1])
	}
}

func TestErrorLogs(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now()

	if err := repo.CreateErrorLog(&models.ErrorLog{Timestamp: now, Kind: "*fs.PathError", ErrorMsg: "disk full"}); err != nil {
		t.Fatalf("CreateErrorLog() error: %v", err)
	}

	logs, err := repo.GetErrorLogsSince(now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("GetErrorLogsSince() error: %v", err)
	}
	if len(logs) != 1 || logs[0].ErrorMsg != "disk full" {
		t.Errorf("GetErrorLogsSince() = %+v", logs)
	}
}

func TestClear(t *testing.T) {
	repo := newTestRepo(t)
	repo.CreateSession(session("chrome", "a", time.Now(), 10*time.Second))

	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	latest, _ := repo.GetLatest()
	if latest != nil {
		t.Errorf("GetLatest() after Clear = %+v, want nil", latest)
	}
}
