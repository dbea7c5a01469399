// Package decision chooses which ad to serve for a conversation message or
// a page load.
package decision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/patrickwarner/chatads/internal/language"
	logic "github.com/patrickwarner/chatads/internal/logic"
	"github.com/patrickwarner/chatads/internal/logic/filters"
	"github.com/patrickwarner/chatads/internal/logic/render"
	"github.com/patrickwarner/chatads/internal/logic/selectors"
	"github.com/patrickwarner/chatads/internal/models"
	"github.com/patrickwarner/chatads/internal/observability"
	"github.com/patrickwarner/chatads/internal/translate"
)

// Reason codes for decisions that return no ad.
const (
	ReasonNoMatch             = "no_match"
	ReasonNoMatchingAds       = "no_matching_ads"
	ReasonNoTargetingMatch    = "no_targeting_match"
	ReasonUnsupportedLanguage = "unsupported_language"
)

// outcomeServed labels decisions that returned an ad in metrics.
const outcomeServed = "served"

var tracer = otel.Tracer("chatads/decision")

// CandidateSource lists active ads, optionally restricted to formats.
type CandidateSource interface {
	ActiveAds(ctx context.Context, formats []models.Format) ([]models.Ad, error)
}

// AdvertiserSource resolves advertiser display names. Unknown ids return
// models.ErrNotFound.
type AdvertiserSource interface {
	AdvertiserName(ctx context.Context, advertiserID string) (string, error)
}

// HistorySource returns a user's most recent successful requests, newest first.
type HistorySource interface {
	RecentSuccessfulContexts(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error)
}

// Translator translates to English and never fails.
type Translator interface {
	ToEnglish(ctx context.Context, text string) translate.Result
}

// Options configures an Engine. Candidates and Advertisers are required.
type Options struct {
	Candidates   CandidateSource
	Advertisers  AdvertiserSource
	History      HistorySource
	Detector     language.Detector
	Translator   Translator
	Selector     selectors.Selector
	HistoryLimit int
	Logger       *zap.Logger
	Metrics      observability.MetricsRegistry
}

// Engine runs both decision paths. It holds no per-request state and is
// safe for concurrent use.
type Engine struct {
	candidates   CandidateSource
	advertisers  AdvertiserSource
	history      HistorySource
	detector     language.Detector
	translator   Translator
	selector     selectors.Selector
	historyLimit int
	logger       *zap.Logger
	metrics      observability.MetricsRegistry
}

// NewEngine fills unset options with defaults: whatlang detection, no
// translation, random tie-breaks, a history of 50 and no-op telemetry.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		candidates:   opts.Candidates,
		advertisers:  opts.Advertisers,
		history:      opts.History,
		detector:     opts.Detector,
		translator:   opts.Translator,
		selector:     opts.Selector,
		historyLimit: opts.HistoryLimit,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
	if e.detector == nil {
		e.detector = language.NewWhatlang()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.metrics == nil {
		e.metrics = observability.NewNoOpRegistry()
	}
	if e.translator == nil {
		e.translator = translate.NewAdapter(nil, 0, e.logger, e.metrics)
	}
	if e.selector == nil {
		e.selector = selectors.NewMaxScore(nil)
	}
	if e.historyLimit <= 0 {
		e.historyLimit = logic.DefaultHistoryLimit
	}
	return e
}

// ContextResult is the outcome of DecideByContext. Ad is nil when Reason is set.
type ContextResult struct {
	Ad          *models.ResolvedAd   `json:"ad"`
	Language    models.Language      `json:"language"`
	Reason      string               `json:"reason,omitempty"`
	Translation translate.Status     `json:"translation,omitempty"`
	Trace       *logic.DecisionTrace `json:"trace,omitempty"`
}

// DecideByContext matches the message text against ad tags.
//
// Unsupported languages end the decision with ReasonUnsupportedLanguage and
// report English. Japanese text is translated before tokenizing; a failed
// translation matches on the original text. Only store errors are returned.
func (e *Engine) DecideByContext(ctx context.Context, contextText string, formats []models.Format) (ContextResult, error) {
	ctx, span := tracer.Start(ctx, "decision.context")
	defer span.End()

	res, err := e.decideByContext(ctx, contextText, formats)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decision failed")
		return ContextResult{}, err
	}
	span.SetAttributes(
		attribute.String("decision.language", string(res.Language)),
		attribute.String("decision.outcome", outcome(res.Ad, res.Reason)),
	)
	e.metrics.IncrementDecisions(string(models.RequestTypeContext), outcome(res.Ad, res.Reason))
	return res, nil
}

func (e *Engine) decideByContext(ctx context.Context, contextText string, formats []models.Format) (ContextResult, error) {
	lang, ok := e.detector.Detect(contextText)
	if !ok {
		e.metrics.IncrementLanguage("unsupported")
		e.logger.Debug("no ad decided", zap.String("reason", ReasonUnsupportedLanguage))
		return ContextResult{Language: models.LanguageEng, Reason: ReasonUnsupportedLanguage}, nil
	}
	e.metrics.IncrementLanguage(string(lang))

	trace := &logic.DecisionTrace{}
	res := ContextResult{Language: lang, Trace: trace}

	// translation and candidate fetch are independent
	text := contextText
	var ads []models.Ad
	g, gctx := errgroup.WithContext(ctx)
	if lang == models.LanguageJpn {
		g.Go(func() error {
			tr := e.translator.ToEnglish(gctx, contextText)
			text = tr.Text
			res.Translation = tr.Status
			return nil
		})
	}
	g.Go(func() error {
		var err error
		ads, err = e.candidates.ActiveAds(gctx, formats)
		if err != nil {
			return fmt.Errorf("fetch candidates: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ContextResult{}, err
	}

	ads = filters.Eligible(ads, formats)
	if len(ads) == 0 {
		res.Reason = ReasonNoMatch
		e.logger.Debug("no ad decided", zap.String("reason", res.Reason), zap.String("stage", "candidates"))
		return res, nil
	}

	tokens := logic.Tokenize(strings.ToLower(text))
	scored := logic.ScoreContext(ads, tokens)
	trace.AddStepWithDetails("scored", scored, logic.ScoreDetails(scored))
	if len(scored) == 0 {
		res.Reason = ReasonNoMatch
		e.logger.Debug("no ad decided", zap.String("reason", res.Reason), zap.Int("candidates", len(ads)))
		return res, nil
	}

	ad, err := e.pick(ctx, scored, lang, trace)
	if err != nil {
		return ContextResult{}, err
	}
	res.Ad = ad
	return res, nil
}

// StaticRequest is the page-load targeting context.
type StaticRequest struct {
	UserID      string
	PublisherID string
	Language    models.Language
	DeviceType  string
	Geo         string
	Formats     []models.Format
}

// StaticResult is the outcome of DecideStatic. Ad is nil when Reason is set.
type StaticResult struct {
	Ad        *models.ResolvedAd   `json:"ad"`
	Reason    string               `json:"reason,omitempty"`
	Interests []string             `json:"interests,omitempty"`
	Trace     *logic.DecisionTrace `json:"trace,omitempty"`
}

// DecideStatic selects a page-load ad from the user's past interests and
// the request's device and geo. Formats default to static.
func (e *Engine) DecideStatic(ctx context.Context, req StaticRequest) (StaticResult, error) {
	ctx, span := tracer.Start(ctx, "decision.static")
	defer span.End()
	span.SetAttributes(
		attribute.String("static.publisher_id", req.PublisherID),
		attribute.String("static.device_type", req.DeviceType),
		attribute.String("static.geo", req.Geo),
	)

	res, err := e.decideStatic(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decision failed")
		return StaticResult{}, err
	}
	span.SetAttributes(attribute.String("decision.outcome", outcome(res.Ad, res.Reason)))
	e.metrics.IncrementDecisions(string(models.RequestTypeStatic), outcome(res.Ad, res.Reason))
	return res, nil
}

func (e *Engine) decideStatic(ctx context.Context, req StaticRequest) (StaticResult, error) {
	formats := req.Formats
	if len(formats) == 0 {
		formats = []models.Format{models.FormatStatic}
	}

	var (
		interests []string
		ads       []models.Ad
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		interests, err = e.interests(gctx, req.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		ads, err = e.candidates.ActiveAds(gctx, formats)
		if err != nil {
			return fmt.Errorf("fetch candidates: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return StaticResult{}, err
	}

	trace := &logic.DecisionTrace{}
	res := StaticResult{Interests: interests, Trace: trace}

	ads = filters.Eligible(ads, formats)
	if len(ads) == 0 {
		res.Reason = ReasonNoMatchingAds
		e.logger.Debug("no ad decided", zap.String("reason", res.Reason))
		return res, nil
	}

	scored := logic.ScoreStatic(ads, logic.StaticRequest{
		Interests:  interests,
		DeviceType: req.DeviceType,
		Geo:        req.Geo,
	})
	trace.AddStepWithDetails("targeting", scored, logic.ScoreDetails(scored))
	if len(scored) == 0 {
		res.Reason = ReasonNoTargetingMatch
		e.logger.Debug("no ad decided", zap.String("reason", res.Reason), zap.Int("candidates", len(ads)))
		return res, nil
	}

	lang := req.Language
	if lang == "" {
		lang = models.LanguageEng
	}
	ad, err := e.pick(ctx, scored, lang, trace)
	if err != nil {
		return StaticResult{}, err
	}
	res.Ad = ad
	return res, nil
}

// interests mines the user's history. Without a history source, or for
// anonymous users, there are no interests.
func (e *Engine) interests(ctx context.Context, userID string) ([]string, error) {
	if e.history == nil || userID == "" {
		return nil, nil
	}
	entries, err := e.history.RecentSuccessfulContexts(ctx, userID, e.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return logic.ExtractInterests(entries), nil
}

// pick selects among the top scorers and resolves the winner.
func (e *Engine) pick(ctx context.Context, scored []logic.Scored, lang models.Language, trace *logic.DecisionTrace) (*models.ResolvedAd, error) {
	trace.AddStep("tie_set", selectors.TieSet(scored))
	winner, err := e.selector.Select(scored)
	if err != nil {
		return nil, err
	}
	trace.AddStep("selected", []logic.Scored{winner})

	name, err := e.advertisers.AdvertiserName(ctx, winner.Ad.AdvertiserID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("fetch advertiser: %w", err)
	}
	resolved := render.Resolve(winner.Ad, render.AdvertiserName(name, err), lang)
	return &resolved, nil
}

func outcome(ad *models.ResolvedAd, reason string) string {
	if ad != nil {
		return outcomeServed
	}
	return reason
}
