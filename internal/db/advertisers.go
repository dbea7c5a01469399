package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/patrickwarner/chatads/internal/models"
)

const advertiserColumns = `id, name, status, website_url, created_at, updated_at, created_by, updated_by`

func scanAdvertiser(s scanner) (models.Advertiser, error) {
	var a models.Advertiser
	var website sql.NullString
	if err := s.Scan(&a.ID, &a.Name, &a.Status, &website, &a.Meta.CreatedAt, &a.Meta.UpdatedAt, &a.Meta.CreatedBy, &a.Meta.UpdatedBy); err != nil {
		return models.Advertiser{}, err
	}
	a.WebsiteURL = website.String
	return a, nil
}

// CreateAdvertiser inserts adv, assigning an id when empty and stamping
// creation metadata.
func (p *Postgres) CreateAdvertiser(ctx context.Context, adv models.Advertiser) (models.Advertiser, error) {
	if adv.ID == "" {
		adv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	adv.Meta.CreatedAt, adv.Meta.UpdatedAt = now, now
	if adv.Meta.UpdatedBy == "" {
		adv.Meta.UpdatedBy = adv.Meta.CreatedBy
	}
	_, err := p.DB.ExecContext(ctx, `INSERT INTO advertisers (`+advertiserColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		adv.ID, adv.Name, adv.Status, nullString(adv.WebsiteURL), adv.Meta.CreatedAt, adv.Meta.UpdatedAt, adv.Meta.CreatedBy, adv.Meta.UpdatedBy)
	if err != nil {
		return models.Advertiser{}, fmt.Errorf("insert advertiser: %w", err)
	}
	return adv, nil
}

// GetAdvertiser returns the advertiser or models.ErrNotFound.
func (p *Postgres) GetAdvertiser(ctx context.Context, id string) (models.Advertiser, error) {
	row := p.DB.QueryRowContext(ctx, `SELECT `+advertiserColumns+` FROM advertisers WHERE id=$1`, id)
	adv, err := scanAdvertiser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Advertiser{}, models.ErrNotFound
	}
	if err != nil {
		return models.Advertiser{}, fmt.Errorf("get advertiser: %w", err)
	}
	return adv, nil
}

// UpdateAdvertiser writes every mutable field of adv and bumps updated_at.
func (p *Postgres) UpdateAdvertiser(ctx context.Context, adv models.Advertiser) (models.Advertiser, error) {
	adv.Meta.UpdatedAt = time.Now().UTC()
	res, err := p.DB.ExecContext(ctx, `UPDATE advertisers SET name=$1, status=$2, website_url=$3, updated_at=$4, updated_by=$5 WHERE id=$6`,
		adv.Name, adv.Status, nullString(adv.WebsiteURL), adv.Meta.UpdatedAt, adv.Meta.UpdatedBy, adv.ID)
	if err != nil {
		return models.Advertiser{}, fmt.Errorf("update advertiser: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Advertiser{}, models.ErrNotFound
	}
	return adv, nil
}

// ListAdvertisers pages through advertisers ordered by id. Q matches the
// name case-insensitively.
func (p *Postgres) ListAdvertisers(ctx context.Context, params models.ListAdvertisersParams) (models.Page[models.Advertiser], error) {
	var q listQuery
	if params.Q != "" {
		q.add(`name ILIKE $%d`, likePattern(params.Q))
	}
	if params.Status != "" {
		q.add(`status = $%d`, string(params.Status))
	}
	query, args := q.build(`SELECT `+advertiserColumns+` FROM advertisers`, "id", params.Cursor, params.Limit)

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return models.Page[models.Advertiser]{}, fmt.Errorf("list advertisers: %w", err)
	}
	defer rows.Close()

	var out []models.Advertiser
	for rows.Next() {
		adv, err := scanAdvertiser(rows)
		if err != nil {
			return models.Page[models.Advertiser]{}, fmt.Errorf("scan advertiser: %w", err)
		}
		out = append(out, adv)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.Advertiser]{}, err
	}
	return paginate(out, params.Limit, func(a models.Advertiser) string { return a.ID }), nil
}

// LoadAdvertisers returns every advertiser for the serving catalog.
func (p *Postgres) LoadAdvertisers(ctx context.Context) ([]models.Advertiser, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT `+advertiserColumns+` FROM advertisers`)
	if err != nil {
		return nil, fmt.Errorf("load advertisers: %w", err)
	}
	defer rows.Close()

	var out []models.Advertiser
	for rows.Next() {
		adv, err := scanAdvertiser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan advertiser: %w", err)
		}
		out = append(out, adv)
	}
	return out, rows.Err()
}

// AdvertiserName resolves a display name or returns models.ErrNotFound.
func (p *Postgres) AdvertiserName(ctx context.Context, id string) (string, error) {
	var name string
	err := p.DB.QueryRowContext(ctx, `SELECT name FROM advertisers WHERE id=$1`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("advertiser name: %w", err)
	}
	return name, nil
}
