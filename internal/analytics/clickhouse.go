package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/patrickwarner/chatads/internal/models"
)

// Service mirrors SDK events and decision outcomes into the analytics store.
// Implementations return ErrUnavailable when no store is configured.
type Service interface {
	RecordEvent(ctx context.Context, ev models.Event) error
	RecordDecision(ctx context.Context, rec models.RequestRecord) error
}

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = errors.New("analytics unavailable")

// Analytics wraps a ClickHouse DB connection.
type Analytics struct {
	DB *sql.DB
}

var _ Service = (*Analytics)(nil)

const createEvents = `CREATE TABLE IF NOT EXISTS events (
    timestamp       DateTime,
    event_id        String,
    event_type      String,
    ad_id           String,
    advertiser_id   String,
    request_id      String,
    user_id         Nullable(String),
    conversation_id Nullable(String),
    app_id          Nullable(String),
    tap_action      Nullable(String),
    form_data       Map(String, String)
) ENGINE=MergeTree() ORDER BY (event_type, timestamp)`

const createDecisions = `CREATE TABLE IF NOT EXISTS decisions (
    timestamp     DateTime,
    request_id    String,
    request_type  String,
    app_id        Nullable(String),
    language      Nullable(String),
    decided_ad_id Nullable(String),
    status        String,
    reason        Nullable(String),
    latency_ms    Int64,
    device_type   Nullable(String),
    geo           Nullable(String)
) ENGINE=MergeTree() ORDER BY (request_type, timestamp)`

// InitClickHouse connects to ClickHouse and ensures the tables exist.
func InitClickHouse(dsn string) (*Analytics, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(25)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	for _, stmt := range []string{createEvents, createDecisions} {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			return nil, fmt.Errorf("clickhouse create table: %w", err)
		}
	}

	zap.L().Info("Connected to ClickHouse")
	return &Analytics{DB: db}, nil
}

// RecordEvent inserts a single event row into the events table.
func (a *Analytics) RecordEvent(ctx context.Context, ev models.Event) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	stmt := `INSERT INTO events (timestamp, event_id, event_type, ad_id, advertiser_id, request_id, user_id, conversation_id, app_id, tap_action, form_data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := a.DB.ExecContext(ctx, stmt, eventArgs(ev)...); err != nil {
		zap.L().Error("clickhouse insert failed", zap.Error(err), zap.String("event_type", string(ev.Type)))
		return fmt.Errorf("insert %s event: %w", ev.Type, err)
	}
	return nil
}

// RecordDecision inserts one decision outcome into the decisions table.
func (a *Analytics) RecordDecision(ctx context.Context, rec models.RequestRecord) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	stmt := `INSERT INTO decisions (timestamp, request_id, request_type, app_id, language, decided_ad_id, status, reason, latency_ms, device_type, geo) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := a.DB.ExecContext(ctx, stmt, decisionArgs(rec)...); err != nil {
		zap.L().Error("clickhouse insert failed", zap.Error(err), zap.String("request_type", string(rec.Type)))
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func eventArgs(ev models.Event) []any {
	ts := ev.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	formData := map[string]string{}
	var tap sql.NullString
	if ev.EventData != nil {
		for k, v := range ev.EventData.FormData {
			formData[k] = v
		}
		tap = nullString(string(ev.EventData.TapAction))
	}
	return []any{ts, ev.ID, string(ev.Type), ev.AdID, ev.AdvertiserID, ev.RequestID,
		nullString(ev.UserID), nullString(ev.ConversationID), nullString(ev.AppID), tap, formData}
}

func decisionArgs(rec models.RequestRecord) []any {
	ts := rec.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	var device, geo sql.NullString
	if rec.Targeting != nil {
		device = nullString(rec.Targeting.DeviceType)
		geo = nullString(rec.Targeting.Geo)
	}
	return []any{ts, rec.ID, string(rec.Type), nullString(rec.AppID), nullString(string(rec.Language)),
		nullString(rec.DecidedAdID), string(rec.Status), nullString(rec.Reason), rec.LatencyMs, device, geo}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// EventRecord mirrors a row in the events table.
type EventRecord struct {
	Timestamp time.Time `json:"timestamp"`
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	AdID      string    `json:"ad_id"`
}

// EventsByRequestID returns all events for a decision ordered by timestamp.
func (a *Analytics) EventsByRequestID(ctx context.Context, id string) ([]EventRecord, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	query := `SELECT timestamp, event_id, event_type, ad_id FROM events WHERE request_id=? ORDER BY timestamp`
	rows, err := a.DB.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	var events []EventRecord
	for rows.Next() {
		var ev EventRecord
		if err := rows.Scan(&ev.Timestamp, &ev.EventID, &ev.EventType, &ev.AdID); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return events, nil
}

// Close terminates the ClickHouse connection.
func (a *Analytics) Close() {
	if a != nil && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}
