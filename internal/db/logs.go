package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/patrickwarner/chatads/internal/models"
)

// InsertRequest appends a decision outcome to the request log.
func (p *Postgres) InsertRequest(ctx context.Context, rec models.RequestRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	var targeting []byte
	if rec.Targeting != nil {
		b, err := json.Marshal(rec.Targeting)
		if err != nil {
			return fmt.Errorf("encode targeting: %w", err)
		}
		targeting = b
	}
	_, err := p.DB.ExecContext(ctx, `INSERT INTO requests (id, request_type, app_id, conversation_id, message_id, context_text,
        language, decided_ad_id, status, reason, latency_ms, sdk_version, user_id, targeting, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		rec.ID, string(rec.Type), nullString(rec.AppID), nullString(rec.ConversationID), nullString(rec.MessageID),
		nullString(rec.ContextText), nullString(string(rec.Language)), nullString(rec.DecidedAdID), string(rec.Status),
		nullString(rec.Reason), rec.LatencyMs, nullString(rec.SDKVersion), nullString(rec.UserID), nullJSON(targeting), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// RecentSuccessfulContexts returns the newest successful context texts of a
// user, newest first.
func (p *Postgres) RecentSuccessfulContexts(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT context_text FROM requests
        WHERE user_id=$1 AND status='success' AND context_text IS NOT NULL
        ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ContextText); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertEvent stores an SDK event and returns it with id and timestamp set.
func (p *Postgres) InsertEvent(ctx context.Context, ev models.Event) (models.Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	var data []byte
	if ev.EventData != nil {
		b, err := json.Marshal(ev.EventData)
		if err != nil {
			return models.Event{}, fmt.Errorf("encode event data: %w", err)
		}
		data = b
	}
	_, err := p.DB.ExecContext(ctx, `INSERT INTO events (id, event_type, ad_id, advertiser_id, request_id, user_id,
        conversation_id, app_id, submitted_email, event_data, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		ev.ID, string(ev.Type), ev.AdID, ev.AdvertiserID, ev.RequestID, nullString(ev.UserID),
		nullString(ev.ConversationID), nullString(ev.AppID), nullString(ev.SubmittedEmail), nullJSON(data), ev.CreatedAt)
	if err != nil {
		return models.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return ev, nil
}

// InsertAudit appends an audit entry.
func (p *Postgres) InsertAudit(ctx context.Context, entry models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := p.DB.ExecContext(ctx, `INSERT INTO audit_logs (id, actor_id, actor_email, action, entity_type, entity_id,
        before_state, after_state, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		entry.ID, entry.ActorID, entry.ActorEmail, string(entry.Action), string(entry.EntityType), entry.EntityID,
		nullJSON(entry.Before), nullJSON(entry.After), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
