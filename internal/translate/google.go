package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gtranslate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleConfig selects how the Cloud Translation client authenticates.
// Credentials holds either a service account JSON document or a path to
// one. With neither Credentials nor APIKey set, Application Default
// Credentials are used.
type GoogleConfig struct {
	Credentials string
	APIKey      string
	Endpoint    string
}

type googleClient interface {
	Translate(ctx context.Context, inputs []string, target language.Tag, opts *gtranslate.Options) ([]gtranslate.Translation, error)
	Close() error
}

// Google translates through the Cloud Translation v2 client.
type Google struct {
	client googleClient
}

// NewGoogle dials a Cloud Translation client using cfg.
func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	client, err := gtranslate.NewClient(ctx, googleOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("google translate client: %w", err)
	}
	return newGoogleWithClient(client), nil
}

func newGoogleWithClient(c googleClient) *Google {
	return &Google{client: c}
}

const (
	credentialsJSON    = "json"
	credentialsFile    = "file"
	credentialsAPIKey  = "api_key"
	credentialsDefault = "default"
)

func credentialMode(cfg GoogleConfig) string {
	creds := strings.TrimSpace(cfg.Credentials)
	switch {
	case creds != "" && json.Valid([]byte(creds)):
		return credentialsJSON
	case creds != "":
		return credentialsFile
	case cfg.APIKey != "":
		return credentialsAPIKey
	default:
		return credentialsDefault
	}
}

func googleOptions(cfg GoogleConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch credentialMode(cfg) {
	case credentialsJSON:
		opts = append(opts, option.WithCredentialsJSON([]byte(strings.TrimSpace(cfg.Credentials))))
	case credentialsFile:
		opts = append(opts, option.WithCredentialsFile(strings.TrimSpace(cfg.Credentials)))
	case credentialsAPIKey:
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	return opts
}

func (g *Google) Name() string { return "google" }

func (g *Google) Translate(ctx context.Context, text, from, to string) (string, error) {
	source, err := language.Parse(from)
	if err != nil {
		return "", fmt.Errorf("source language %q: %w", from, err)
	}
	target, err := language.Parse(to)
	if err != nil {
		return "", fmt.Errorf("target language %q: %w", to, err)
	}

	out, err := g.client.Translate(ctx, []string{text}, target, &gtranslate.Options{
		Source: source,
		Format: gtranslate.Text,
	})
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	if len(out) == 0 {
		return "", errors.New("google translate: empty response")
	}
	return out[0].Text, nil
}

// Close releases the underlying client connection.
func (g *Google) Close() error {
	return g.client.Close()
}
