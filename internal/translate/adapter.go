package translate

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/observability"
)

// Status is the outcome of a translation attempt.
type Status string

const (
	StatusTranslated Status = "translated"
	StatusFallback   Status = "fallback" // backend failed, original text returned
	StatusSkipped    Status = "skipped"  // blank input, backend not called
)

// Result is the explicit outcome of ToEnglish. Text is always usable.
type Result struct {
	Text   string
	Status Status
	Err    error // set when Status is StatusFallback
}

// Adapter turns a fallible Backend into a translation that never fails.
type Adapter struct {
	backend Backend
	timeout time.Duration
	logger  *zap.Logger
	metrics observability.MetricsRegistry
}

// NewAdapter wraps backend. A zero timeout uses the default of two seconds.
func NewAdapter(backend Backend, timeout time.Duration, logger *zap.Logger, metrics observability.MetricsRegistry) *Adapter {
	if backend == nil {
		backend = Unavailable{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Adapter{backend: backend, timeout: timeout, logger: logger, metrics: metrics}
}

// ToEnglish translates Japanese text to English. Blank input is returned
// unchanged without calling the backend; any backend error or timeout
// returns the original text with StatusFallback.
func (a *Adapter) ToEnglish(ctx context.Context, text string) Result {
	name := a.backend.Name()
	if strings.TrimSpace(text) == "" {
		a.metrics.IncrementTranslations(name, string(StatusSkipped))
		return Result{Text: text, Status: StatusSkipped}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out, err := a.backend.Translate(ctx, text, "ja", "en")
	a.metrics.RecordTranslationLatency(name, time.Since(start))
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		a.metrics.IncrementTranslations(name, string(StatusFallback))
		a.logger.Warn("translation failed, using original text",
			zap.String("backend", name),
			zap.Error(err))
		return Result{Text: text, Status: StatusFallback, Err: err}
	}
	a.metrics.IncrementTranslations(name, string(StatusTranslated))
	return Result{Text: out, Status: StatusTranslated}
}
