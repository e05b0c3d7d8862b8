package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// EventType represents the type of ingest event
type EventType string

const (
	EventIngest EventType = "ingest"
	EventFail   EventType = "fail"
	EventCancel EventType = "cancel"
	EventSave   EventType = "save"
	EventDelete EventType = "delete"
)

// Logger handles ingest event logging
type Logger struct {
	db *sql.DB
}

// New creates a new metrics logger
func New(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// LogEvent inserts an ingest event into the database. Failures are logged
// and returned but must never interrupt the pipeline itself.
func (l *Logger) LogEvent(ctx context.Context, eventType EventType, photoID, detail string) error {
	var photoIDParam sql.NullString
	if photoID != "" {
		photoIDParam = sql.NullString{String: photoID, Valid: true}
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO ingest_events (event_type, photo_id, detail, created_at) VALUES (?, ?, ?, ?)`,
		string(eventType), photoIDParam, detail, time.Now().UTC())
	if err != nil {
		log.Printf("metrics: failed to log event %s: %v", eventType, err)
	}

	return err
}

// LogIngest logs a successfully processed photo
func (l *Logger) LogIngest(ctx context.Context, photoID string) error {
	return l.LogEvent(ctx, EventIngest, photoID, "")
}

// LogFail logs a file that could not be processed
func (l *Logger) LogFail(ctx context.Context, originalName string, cause error) error {
	return l.LogEvent(ctx, EventFail, "", originalName+": "+cause.Error())
}

// LogCancel logs a cancelled batch with how many files had completed
func (l *Logger) LogCancel(ctx context.Context, processed, total int) error {
	detail := fmt.Sprintf("%d/%d", processed, total)
	return l.LogEvent(ctx, EventCancel, "", detail)
}

// LogSave logs a session save
func (l *Logger) LogSave(ctx context.Context, target string, photoCount int) error {
	return l.LogEvent(ctx, EventSave, "", fmt.Sprintf("%s: %d photos", target, photoCount))
}

// Stats holds aggregated ingest counts
type Stats struct {
	Ingests7Days  int64
	Ingests30Days int64
	Fails7Days    int64
	Fails30Days   int64
	Saves7Days    int64
	Saves30Days   int64
}

// GetStats retrieves ingest statistics
func (l *Logger) GetStats(ctx context.Context) (*Stats, error) {
	now := time.Now().UTC()
	sevenDaysAgo := now.Add(-7 * 24 * time.Hour)
	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)

	stats := &Stats{}

	counts := []struct {
		dst   *int64
		event EventType
		since time.Time
	}{
		{&stats.Ingests7Days, EventIngest, sevenDaysAgo},
		{&stats.Ingests30Days, EventIngest, thirtyDaysAgo},
		{&stats.Fails7Days, EventFail, sevenDaysAgo},
		{&stats.Fails30Days, EventFail, thirtyDaysAgo},
		{&stats.Saves7Days, EventSave, sevenDaysAgo},
		{&stats.Saves30Days, EventSave, thirtyDaysAgo},
	}

	for _, c := range counts {
		err := l.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM ingest_events WHERE event_type = ? AND created_at >= ?`,
			string(c.event), c.since).Scan(c.dst)
		if err != nil {
			return nil, err
		}
	}

	return stats, nil
}
