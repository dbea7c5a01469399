// Package translate provides best-effort machine translation of ad request
// text into English. Backends may fail; the Adapter turns every failure
// into a fallback to the original text.
package translate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickwarner/chatads/internal/config"
)

// ErrBackendUnavailable is returned by backends that cannot serve requests,
// such as the "none" backend or a breaker in the open state.
var ErrBackendUnavailable = errors.New("translation backend unavailable")

// Backend translates text between two ISO 639-1 language codes.
type Backend interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
	Name() string
}

// Unavailable is the backend used when translation is disabled.
type Unavailable struct{}

func (Unavailable) Translate(context.Context, string, string, string) (string, error) {
	return "", ErrBackendUnavailable
}

func (Unavailable) Name() string { return "none" }

// NewBackend builds the configured backend. Remote clients are constructed
// on first use and every backend except "none" sits behind a circuit breaker.
func NewBackend(cfg config.Config) (Backend, error) {
	var inner Backend
	switch cfg.TranslatorBackend {
	case "google":
		inner = NewLazy("google", func() (Backend, error) {
			return NewGoogle(context.Background(), GoogleConfig{
				Credentials: cfg.GoogleTranslationCredentials,
				APIKey:      cfg.GoogleTranslateAPIKey,
				Endpoint:    cfg.GoogleTranslateURL,
			})
		})
	case "aws":
		inner = NewLazy("aws", func() (Backend, error) {
			return NewAWS(cfg.AWSRegion)
		})
	case "none", "":
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown translator backend %q", cfg.TranslatorBackend)
	}
	return NewBreaker(inner, BreakerSettings{
		MaxFailures: uint32(cfg.TranslateBreakerFailures),
		Cooldown:    cfg.TranslateBreakerCooldown,
	}), nil
}

// defaultTimeout bounds a translation when none is configured.
const defaultTimeout = 2 * time.Second
