package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/analytics"
	"github.com/patrickwarner/chatads/internal/config"
	"github.com/patrickwarner/chatads/internal/db"
	"github.com/patrickwarner/chatads/internal/decision"
	"github.com/patrickwarner/chatads/internal/geoip"
	"github.com/patrickwarner/chatads/internal/language"
	"github.com/patrickwarner/chatads/internal/logic/selectors"
	"github.com/patrickwarner/chatads/internal/models"
	"github.com/patrickwarner/chatads/internal/observability"
	"github.com/patrickwarner/chatads/internal/ratelimit"
)

const testSecret = "test-secret"

func english(string) (models.Language, bool) { return models.LanguageEng, true }

type testEnv struct {
	srv    *Server
	store  *memStore
	router *mux.Router
	mock   *analytics.MockAnalytics
}

func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	store := newMemStore()
	catalog := models.NewCatalog()
	engine := decision.NewEngine(decision.Options{
		Candidates:  catalog,
		Advertisers: catalog,
		History:     store,
		Detector:    language.DetectorFunc(english),
		Selector:    selectors.NewMaxScore(selectors.PickerFunc(func(int) int { return 0 })),
		Logger:      zap.NewNop(),
	})
	cfg.AdminJWTSecret = testSecret
	srv := NewServer(zap.NewNop(), engine, store, catalog, observability.NewNoOpRegistry(), cfg)
	mock := analytics.NewMockAnalytics()
	srv.Analytics = mock
	srv.Limiter = ratelimit.NewAppLimiter(ratelimit.Config{Enabled: false}, nil)

	return &testEnv{srv: srv, store: store, router: newRouter(srv), mock: mock}
}

func (e *testEnv) seed(t *testing.T, advs []models.Advertiser, ads []models.Ad) {
	t.Helper()
	ctx := context.Background()
	for _, adv := range advs {
		_, _ = e.store.CreateAdvertiser(ctx, adv)
	}
	for _, ad := range ads {
		_, _ = e.store.CreateAd(ctx, ad)
	}
	require.NoError(t, e.srv.Reload(ctx))
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func actionCard(id, advertiserID string, tags ...string) models.Ad {
	return models.Ad{
		ID:           id,
		AdvertiserID: advertiserID,
		Title:        models.LocalizedText{Eng: "Title " + id, Jpn: "タイトル"},
		Description:  models.LocalizedText{Eng: "Description"},
		CTAText:      models.LocalizedText{Eng: "Go"},
		CTAURL:       "https://example.com/" + id,
		Tags:         tags,
		Status:       models.AdStatusActive,
		Config:       models.ActionCardConfig{},
	}
}

func decodeDecision(t *testing.T, rr *httptest.ResponseRecorder) decisionResponse {
	t.Helper()
	var resp decisionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp
}

func postRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

const laptopRequest = `{"appId":"app1","conversationId":"c1","messageId":"m1","contextText":"I need a new laptop","userId":"u1"}`

func TestRequestsHandlerServesBestAd(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	env.seed(t,
		[]models.Advertiser{{ID: "adv-a", Name: "Acme", Status: models.AdvertiserActive}},
		[]models.Ad{actionCard("ad-laptop", "adv-a", "laptop", "computer"), actionCard("ad-shoes", "adv-a", "shoes")},
	)

	rr := env.do(postRequest(laptopRequest))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeDecision(t, rr)
	assert.True(t, resp.OK)
	require.NotNil(t, resp.Ad)
	assert.Equal(t, "ad-laptop", resp.Ad.ID)
	assert.Equal(t, "Acme", resp.Ad.AdvertiserName)
	require.NotNil(t, resp.RequestID)

	rec := env.store.lastRequest()
	assert.Equal(t, *resp.RequestID, rec.ID)
	assert.Equal(t, models.RequestSuccess, rec.Status)
	assert.Equal(t, models.LanguageEng, rec.Language)
	assert.Equal(t, "ad-laptop", rec.DecidedAdID)
	assert.Equal(t, 1, env.mock.DecisionCount())
}

func TestRequestsHandlerNoMatch(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	env.seed(t, nil, nil)

	rr := env.do(postRequest(laptopRequest))
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeDecision(t, rr)
	assert.False(t, resp.OK)
	assert.Nil(t, resp.Ad)
	assert.NotNil(t, resp.RequestID)

	rec := env.store.lastRequest()
	assert.Equal(t, models.RequestNoAd, rec.Status)
	assert.Equal(t, decision.ReasonNoMatch, rec.Reason)
}

func TestRequestsHandlerBadInput(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"malformed", `{"appId":`},
		{"missing context", `{"appId":"a","conversationId":"c","messageId":"m"}`},
		{"unknown field", `{"appId":"a","conversationId":"c","messageId":"m","contextText":"x","extra":1}`},
		{"bad format", `{"appId":"a","conversationId":"c","messageId":"m","contextText":"x","formats":["banner"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(postRequest(tt.body))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			resp := decodeDecision(t, rr)
			assert.False(t, resp.OK)
			assert.Nil(t, resp.RequestID)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRequestsHandlerRateLimited(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	env.seed(t, nil, nil)
	env.srv.Limiter = ratelimit.NewAppLimiter(ratelimit.Config{Enabled: true, Capacity: 1, RefillRate: 0}, nil)

	assert.Equal(t, http.StatusOK, env.do(postRequest(laptopRequest)).Code)
	rr := env.do(postRequest(laptopRequest))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

type brokenSource struct{}

func (brokenSource) ActiveAds(context.Context, []models.Format) ([]models.Ad, error) {
	return nil, errors.New("catalog down")
}

func TestRequestsHandlerInfrastructureFailure(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	env.srv.Engine = decision.NewEngine(decision.Options{
		Candidates:  brokenSource{},
		Advertisers: env.srv.Catalog,
		Detector:    language.DetectorFunc(english),
	})

	rr := env.do(postRequest(laptopRequest))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"ok":false,"requestId":null,"ad":null}`, rr.Body.String())
	assert.Equal(t, models.RequestError, env.store.lastRequest().Status)
}

func TestRequestsHandlerRecordsRedisHistory(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := newTestEnv(t, config.Config{})
	env.srv.History = db.NewRedisHistory(client, 50)
	env.seed(t,
		[]models.Advertiser{{ID: "adv-a", Name: "Acme", Status: models.AdvertiserActive}},
		[]models.Ad{actionCard("ad-laptop", "adv-a", "laptop")},
	)

	require.Equal(t, http.StatusOK, env.do(postRequest(laptopRequest)).Code)

	vals, err := mr.List("history:u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"I need a new laptop"}, vals)
}

func staticAd(id, advertiserID string, tp *models.StaticTargetingParams, tags ...string) models.Ad {
	ad := actionCard(id, advertiserID, tags...)
	ad.Config = models.StaticConfig{DisplayPosition: models.PositionTop, TargetingParams: tp}
	return ad
}

func TestStaticAdHandler(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	env.seed(t,
		[]models.Advertiser{{ID: "adv-a", Name: "Acme", Status: models.AdvertiserActive}},
		[]models.Ad{staticAd("ad-coffee", "adv-a", &models.StaticTargetingParams{Geo: []string{"US"}}, "coffee")},
	)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/ads/static?userId=u1&publisherId=pub1&geo=US&language=jpn", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "private, max-age=60", rr.Header().Get("Cache-Control"))

	resp := decodeDecision(t, rr)
	require.True(t, resp.OK)
	assert.Equal(t, "ad-coffee", resp.Ad.ID)
	assert.Equal(t, "タイトル", resp.Ad.Title)
	require.NotNil(t, resp.Ad.StaticConfig)

	rec := env.store.lastRequest()
	assert.Equal(t, models.RequestTypeStatic, rec.Type)
	assert.Equal(t, "pub1", rec.AppID)
	require.NotNil(t, rec.Targeting)
	assert.Equal(t, "US", rec.Targeting.Geo)

	rr = env.do(httptest.NewRequest(http.MethodGet, "/api/ads/static?userId=u1&publisherId=pub1&geo=JP", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeDecision(t, rr).OK)
	assert.Equal(t, decision.ReasonNoTargetingMatch, env.store.lastRequest().Reason)
}

func TestStaticAdHandlerValidation(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	tests := []struct {
		name  string
		query string
	}{
		{"missing user", "publisherId=p"},
		{"missing publisher", "userId=u"},
		{"bad language", "userId=u&publisherId=p&language=fra"},
		{"bad device", "userId=u&publisherId=p&deviceType=watch"},
		{"bad format", "userId=u&publisherId=p&formats=static,banner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(httptest.NewRequest(http.MethodGet, "/api/ads/static?"+tt.query, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, rr.Header().Get("Cache-Control"))
		})
	}
}

func TestStaticAdHandlerInfersTargeting(t *testing.T) {
	env := newTestEnv(t, config.Config{InferTargeting: true})
	g, err := geoip.Open("../geoip/testdata/geo_table.json")
	require.NoError(t, err)
	env.srv.GeoIP = g
	env.seed(t,
		[]models.Advertiser{{ID: "adv-a", Name: "Acme", Status: models.AdvertiserActive}},
		[]models.Ad{staticAd("ad-us", "adv-a", &models.StaticTargetingParams{Geo: []string{"US"}}, "coffee")},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/ads/static?userId=u1&publisherId=pub1", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1")
	rr := env.do(req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeDecision(t, rr).OK, "JP visitor must not see a US-only ad")

	rec := env.store.lastRequest()
	require.NotNil(t, rec.Targeting)
	assert.Equal(t, "JP", rec.Targeting.Geo)
	assert.Equal(t, "mobile", rec.Targeting.DeviceType)
}

func TestStaticAdHandlerUsesHistory(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	env.seed(t,
		[]models.Advertiser{{ID: "adv-a", Name: "Acme", Status: models.AdvertiserActive}},
		[]models.Ad{
			staticAd("ad-coffee", "adv-a", &models.StaticTargetingParams{}, "coffee"),
			staticAd("ad-tea", "adv-a", &models.StaticTargetingParams{}, "tea"),
		},
	)
	for _, text := range []string{"coffee beans", "more coffee please"} {
		_ = env.store.InsertRequest(context.Background(), models.RequestRecord{
			UserID: "u1", ContextText: text, Status: models.RequestSuccess, CreatedAt: time.Now(),
		})
	}

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/ads/static?userId=u1&publisherId=pub1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeDecision(t, rr)
	require.True(t, resp.OK)
	assert.Equal(t, "ad-coffee", resp.Ad.ID)
}

func TestParseFormats(t *testing.T) {
	assert.Nil(t, parseFormats(""))
	assert.Equal(t, []models.Format{models.FormatStatic, models.FormatLeadGen}, parseFormats(" static, ,lead_gen "))
}

func postEvent(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
}

func TestEventsHandler(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	rr := env.do(postEvent(`{"type":"submit","adId":"a1","advertiserId":"v1","requestId":"r1","submittedEmail":"me@example.com","eventData":{"formData":{"email":"me@example.com"}}}`))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp eventResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.EventID)
	require.Equal(t, 1, env.mock.EventCount())
	assert.Equal(t, resp.EventID, env.mock.Events[0].ID)
	assert.Equal(t, "me@example.com", env.mock.Events[0].EventData.FormData["email"])
}

func TestEventsHandlerErrors(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown type", `{"type":"view","adId":"a","advertiserId":"v","requestId":"r"}`, http.StatusBadRequest},
		{"missing ad", `{"type":"click","advertiserId":"v","requestId":"r"}`, http.StatusBadRequest},
		{"bad email", `{"type":"submit","adId":"a","advertiserId":"v","requestId":"r","submittedEmail":"nope"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.do(postEvent(tt.body)).Code)
		})
	}

	env.store.eventErr = errors.New("db down")
	rr := env.do(postEvent(`{"type":"click","adId":"a","advertiserId":"v","requestId":"r"}`))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"success":false,"eventId":""}`, rr.Body.String())
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	env.seed(t, nil, []models.Ad{actionCard("a", "v", "x")})

	rr := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","catalogAds":1}`, rr.Body.String())
}

func newRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}
