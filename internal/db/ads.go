package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/patrickwarner/chatads/internal/models"
)

const adColumns = `id, advertiser_id, format, title, description, cta_text, cta_url, tags, status, cpc, base_ctr, config, created_at, updated_at, created_by, updated_by`

func scanAd(s scanner) (models.Ad, error) {
	var (
		ad                       models.Ad
		format                   string
		title, desc, cta, config []byte
		cpc, ctr                 sql.NullFloat64
		tags                     pq.StringArray
	)
	if err := s.Scan(&ad.ID, &ad.AdvertiserID, &format, &title, &desc, &cta, &ad.CTAURL, &tags, &ad.Status,
		&cpc, &ctr, &config, &ad.Meta.CreatedAt, &ad.Meta.UpdatedAt, &ad.Meta.CreatedBy, &ad.Meta.UpdatedBy); err != nil {
		return models.Ad{}, err
	}
	for _, f := range []struct {
		raw []byte
		dst *models.LocalizedText
	}{{title, &ad.Title}, {desc, &ad.Description}, {cta, &ad.CTAText}} {
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return models.Ad{}, fmt.Errorf("decode ad %s text: %w", ad.ID, err)
		}
	}
	cfg, err := models.UnmarshalFormatConfig(models.Format(format), config)
	if err != nil {
		return models.Ad{}, fmt.Errorf("ad %s: %w", ad.ID, err)
	}
	ad.Config = cfg
	ad.Tags = []string(tags)
	ad.CPC = floatPtr(cpc)
	ad.BaseCTR = floatPtr(ctr)
	return ad, nil
}

type adRow struct {
	title, desc, cta, config []byte
}

func encodeAd(ad models.Ad) (adRow, error) {
	var r adRow
	var err error
	if r.title, err = json.Marshal(ad.Title); err != nil {
		return r, err
	}
	if r.desc, err = json.Marshal(ad.Description); err != nil {
		return r, err
	}
	if r.cta, err = json.Marshal(ad.CTAText); err != nil {
		return r, err
	}
	if r.config, err = models.MarshalFormatConfig(ad.Config); err != nil {
		return r, err
	}
	return r, nil
}

// CreateAd inserts ad, assigning an id when empty.
func (p *Postgres) CreateAd(ctx context.Context, ad models.Ad) (models.Ad, error) {
	if ad.ID == "" {
		ad.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ad.Meta.CreatedAt, ad.Meta.UpdatedAt = now, now
	if ad.Meta.UpdatedBy == "" {
		ad.Meta.UpdatedBy = ad.Meta.CreatedBy
	}
	row, err := encodeAd(ad)
	if err != nil {
		return models.Ad{}, fmt.Errorf("encode ad: %w", err)
	}
	_, err = p.DB.ExecContext(ctx, `INSERT INTO ads (`+adColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		ad.ID, ad.AdvertiserID, string(ad.Format()), row.title, row.desc, row.cta, ad.CTAURL, pq.Array(ad.Tags),
		string(ad.Status), nullFloat(ad.CPC), nullFloat(ad.BaseCTR), nullJSON(row.config),
		ad.Meta.CreatedAt, ad.Meta.UpdatedAt, ad.Meta.CreatedBy, ad.Meta.UpdatedBy)
	if err != nil {
		return models.Ad{}, fmt.Errorf("insert ad: %w", err)
	}
	return ad, nil
}

// GetAd returns the ad or models.ErrNotFound.
func (p *Postgres) GetAd(ctx context.Context, id string) (models.Ad, error) {
	ad, err := scanAd(p.DB.QueryRowContext(ctx, `SELECT `+adColumns+` FROM ads WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ad{}, models.ErrNotFound
	}
	if err != nil {
		return models.Ad{}, fmt.Errorf("get ad: %w", err)
	}
	return ad, nil
}

// UpdateAd overwrites every mutable column of ad.
func (p *Postgres) UpdateAd(ctx context.Context, ad models.Ad) (models.Ad, error) {
	ad.Meta.UpdatedAt = time.Now().UTC()
	row, err := encodeAd(ad)
	if err != nil {
		return models.Ad{}, fmt.Errorf("encode ad: %w", err)
	}
	res, err := p.DB.ExecContext(ctx, `UPDATE ads SET format=$1, title=$2, description=$3, cta_text=$4, cta_url=$5, tags=$6,
        status=$7, cpc=$8, base_ctr=$9, config=$10, updated_at=$11, updated_by=$12 WHERE id=$13`,
		string(ad.Format()), row.title, row.desc, row.cta, ad.CTAURL, pq.Array(ad.Tags), string(ad.Status),
		nullFloat(ad.CPC), nullFloat(ad.BaseCTR), nullJSON(row.config), ad.Meta.UpdatedAt, ad.Meta.UpdatedBy, ad.ID)
	if err != nil {
		return models.Ad{}, fmt.Errorf("update ad: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Ad{}, models.ErrNotFound
	}
	return ad, nil
}

// ListAds pages through ads ordered by id. Q matches the English title.
func (p *Postgres) ListAds(ctx context.Context, params models.ListAdsParams) (models.Page[models.AdWithAdvertiser], error) {
	var q listQuery
	if params.Q != "" {
		q.add(`a.title->>'eng' ILIKE $%d`, likePattern(params.Q))
	}
	if params.Status != "" {
		q.add(`a.status = $%d`, string(params.Status))
	}
	if params.AdvertiserID != "" {
		q.add(`a.advertiser_id = $%d`, params.AdvertiserID)
	}
	if params.Tag != "" {
		q.add(`$%d = ANY(a.tags)`, params.Tag)
	}
	base := `SELECT a.id, a.advertiser_id, a.format, a.title, a.description, a.cta_text, a.cta_url, a.tags, a.status,
        a.cpc, a.base_ctr, a.config, a.created_at, a.updated_at, a.created_by, a.updated_by, COALESCE(v.name, '')
        FROM ads a LEFT JOIN advertisers v ON v.id = a.advertiser_id`
	query, args := q.build(base, "a.id", params.Cursor, params.Limit)

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return models.Page[models.AdWithAdvertiser]{}, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()

	var out []models.AdWithAdvertiser
	for rows.Next() {
		var name string
		ad, err := scanAd(withTrailing(rows, &name))
		if err != nil {
			return models.Page[models.AdWithAdvertiser]{}, fmt.Errorf("scan ad: %w", err)
		}
		out = append(out, models.AdWithAdvertiser{Ad: ad, AdvertiserName: advertiserDisplayName(name)})
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.AdWithAdvertiser]{}, err
	}
	return paginate(out, params.Limit, func(a models.AdWithAdvertiser) string { return a.ID }), nil
}

// ActiveAds reads serving candidates straight from the database. Formats
// filters on the format column; empty means every format.
func (p *Postgres) ActiveAds(ctx context.Context, formats []models.Format) ([]models.Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads WHERE status = 'active'`
	var args []any
	if len(formats) > 0 {
		fs := make([]string, len(formats))
		for i, f := range formats {
			fs[i] = string(f)
		}
		query += ` AND format = ANY($1)`
		args = append(args, pq.Array(fs))
	}
	return p.queryAds(ctx, query, args...)
}

// LoadAds returns every ad, used to build the serving catalog.
func (p *Postgres) LoadAds(ctx context.Context) ([]models.Ad, error) {
	return p.queryAds(ctx, `SELECT `+adColumns+` FROM ads`)
}

func (p *Postgres) queryAds(ctx context.Context, query string, args ...any) ([]models.Ad, error) {
	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ads: %w", err)
	}
	defer rows.Close()

	var out []models.Ad
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		out = append(out, ad)
	}
	return out, rows.Err()
}

// PauseActiveAds pauses every active ad of the advertiser and returns the
// affected ids.
func (p *Postgres) PauseActiveAds(ctx context.Context, advertiserID, actor string) ([]string, error) {
	rows, err := p.DB.QueryContext(ctx, `UPDATE ads SET status='paused', updated_at=now(), updated_by=$2
        WHERE advertiser_id=$1 AND status='active' RETURNING id`, advertiserID, actor)
	if err != nil {
		return nil, fmt.Errorf("pause ads: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func advertiserDisplayName(name string) string {
	if name == "" {
		return models.UnknownAdvertiserName
	}
	return name
}

// trailingScanner appends extra destinations after the ones scanAd supplies.
type trailingScanner struct {
	s     scanner
	extra []any
}

func (t trailingScanner) Scan(dest ...any) error {
	return t.s.Scan(append(dest, t.extra...)...)
}

func withTrailing(s scanner, extra ...any) scanner {
	return trailingScanner{s: s, extra: extra}
}
