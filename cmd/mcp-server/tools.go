package main

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/decision"
	"github.com/patrickwarner/chatads/internal/models"
)

// toolTimeout bounds a single tool call.
const toolTimeout = 10 * time.Second

type DecideAdInput struct {
	ContextText string          `json:"contextText" jsonschema:"the latest chat message to match ads against"`
	Formats     []models.Format `json:"formats,omitempty" jsonschema:"allowed ad formats, all formats when empty"`
}

type DecideAdOutput struct {
	Ad       *models.ResolvedAd `json:"ad,omitempty"`
	Language models.Language    `json:"language"`
	Reason   string             `json:"reason,omitempty"`
}

type DecideStaticInput struct {
	UserID      string          `json:"userId" jsonschema:"user whose chat history drives targeting"`
	PublisherID string          `json:"publisherId" jsonschema:"publisher requesting the placement"`
	Language    models.Language `json:"language,omitempty" jsonschema:"eng or jpn, defaults to eng"`
	DeviceType  string          `json:"deviceType,omitempty" jsonschema:"desktop, mobile or tablet"`
	Geo         string          `json:"geo,omitempty" jsonschema:"ISO country code"`
	Formats     []models.Format `json:"formats,omitempty" jsonschema:"allowed ad formats, static when empty"`
}

type DecideStaticOutput struct {
	Ad        *models.ResolvedAd `json:"ad,omitempty"`
	Reason    string             `json:"reason,omitempty"`
	Interests []string           `json:"interests,omitempty"`
}

type ListActiveAdsInput struct {
	Formats []models.Format `json:"formats,omitempty" jsonschema:"only list ads of these formats"`
}

type ActiveAd struct {
	ID             string        `json:"id"`
	AdvertiserID   string        `json:"advertiserId"`
	AdvertiserName string        `json:"advertiserName"`
	Format         models.Format `json:"format"`
	Title          string        `json:"title"`
	Tags           []string      `json:"tags"`
}

type ListActiveAdsOutput struct {
	Ads []ActiveAd `json:"ads"`
}

// ToolServer answers MCP tool calls from the decision engine and catalog.
type ToolServer struct {
	engine  *decision.Engine
	catalog *models.Catalog
	logger  *zap.Logger
}

// DecideAd runs the conversational decision path.
func (s *ToolServer) DecideAd(ctx context.Context, _ *mcp.CallToolRequest, in DecideAdInput) (*mcp.CallToolResult, DecideAdOutput, error) {
	if in.ContextText == "" {
		return nil, DecideAdOutput{}, fmt.Errorf("contextText is required")
	}
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	res, err := s.engine.DecideByContext(ctx, in.ContextText, in.Formats)
	if err != nil {
		s.logger.Error("decide_ad failed", zap.Error(err))
		return nil, DecideAdOutput{}, fmt.Errorf("decide ad: %w", err)
	}
	return nil, DecideAdOutput{Ad: res.Ad, Language: res.Language, Reason: res.Reason}, nil
}

// DecideStatic runs the page-load decision path.
func (s *ToolServer) DecideStatic(ctx context.Context, _ *mcp.CallToolRequest, in DecideStaticInput) (*mcp.CallToolResult, DecideStaticOutput, error) {
	q := models.StaticQuery{
		UserID:      in.UserID,
		PublisherID: in.PublisherID,
		Language:    in.Language,
		DeviceType:  in.DeviceType,
		Geo:         in.Geo,
		Formats:     in.Formats,
	}
	if err := q.Validate(); err != nil {
		return nil, DecideStaticOutput{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	res, err := s.engine.DecideStatic(ctx, decision.StaticRequest{
		UserID:      q.UserID,
		PublisherID: q.PublisherID,
		Language:    q.Language,
		DeviceType:  q.DeviceType,
		Geo:         q.Geo,
		Formats:     q.Formats,
	})
	if err != nil {
		s.logger.Error("decide_static failed", zap.Error(err))
		return nil, DecideStaticOutput{}, fmt.Errorf("decide static: %w", err)
	}
	return nil, DecideStaticOutput{Ad: res.Ad, Reason: res.Reason, Interests: res.Interests}, nil
}

// ListActiveAds lists the serving catalog with English titles.
func (s *ToolServer) ListActiveAds(ctx context.Context, _ *mcp.CallToolRequest, in ListActiveAdsInput) (*mcp.CallToolResult, ListActiveAdsOutput, error) {
	ads, err := s.catalog.ActiveAds(ctx, in.Formats)
	if err != nil {
		return nil, ListActiveAdsOutput{}, err
	}
	out := ListActiveAdsOutput{Ads: make([]ActiveAd, 0, len(ads))}
	for _, ad := range ads {
		name, err := s.catalog.AdvertiserName(ctx, ad.AdvertiserID)
		if err != nil || name == "" {
			name = models.UnknownAdvertiserName
		}
		out.Ads = append(out.Ads, ActiveAd{
			ID:             ad.ID,
			AdvertiserID:   ad.AdvertiserID,
			AdvertiserName: name,
			Format:         ad.Format(),
			Title:          ad.Title.Eng,
			Tags:           ad.Tags,
		})
	}
	return nil, out, nil
}

// newMCPServer registers every tool on a fresh MCP server.
func newMCPServer(ts *ToolServer, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "chatads", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "decide_ad",
		Description: "Pick the best ad for a chat message by matching its words against ad tags",
	}, ts.DecideAd)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "decide_static",
		Description: "Pick a page-load ad from a user's chat history, device and country",
	}, ts.DecideStatic)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_active_ads",
		Description: "List the ads currently eligible to serve",
	}, ts.ListActiveAds)
	return server
}
