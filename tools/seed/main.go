package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/config"
	"github.com/patrickwarner/chatads/internal/db"
	"github.com/patrickwarner/chatads/internal/models"
	"github.com/patrickwarner/chatads/internal/observability"
)

var (
	advCount  = flag.Int("advertisers", 5, "number of generated advertisers")
	adsPerAdv = flag.Int("ads", 4, "ads per generated advertiser")
	seed      = flag.Uint64("seed", uint64(time.Now().UnixNano()), "rng seed")
	skipDemo  = flag.Bool("skip-demo", false, "skip the fixed demo advertiser")
)

const seedActor = "seed@chatads.local"

func main() {
	flag.Parse()

	logger, err := observability.InitLogger("chatads-seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	ctx := context.Background()
	pg, err := db.InitPostgres(ctx, cfg.PostgresDSN, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnectRetries:  cfg.DBConnectRetries,
	})
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pg.Close()

	r := rand.New(rand.NewPCG(*seed, *seed>>1))
	var total int

	if !*skipDemo {
		n, err := seedDemo(ctx, pg)
		if err != nil {
			logger.Fatal("seed demo advertiser", zap.Error(err))
		}
		total += n
	}

	for i := 0; i < *advCount; i++ {
		adv, err := pg.CreateAdvertiser(ctx, models.Advertiser{
			Name:       fakeCompany(r),
			Status:     models.AdvertiserActive,
			WebsiteURL: "https://" + fakeDomain(r),
			Meta:       models.Meta{CreatedBy: seedActor, UpdatedBy: seedActor},
		})
		if err != nil {
			logger.Fatal("insert advertiser", zap.Error(err))
		}
		for j := 0; j < *adsPerAdv; j++ {
			ad := randomAd(r, adv.ID, models.AllFormats[j%len(models.AllFormats)])
			if _, err := pg.CreateAd(ctx, ad); err != nil {
				logger.Fatal("insert ad", zap.Error(err))
			}
			total++
		}
	}

	logger.Info("seed complete", zap.Int("advertisers", *advCount), zap.Int("ads", total), zap.Uint64("seed", *seed))
}

// seedDemo inserts a fixed advertiser with one bilingual ad per format.
func seedDemo(ctx context.Context, pg *db.Postgres) (int, error) {
	adv, err := pg.CreateAdvertiser(ctx, models.Advertiser{
		Name:       "Demo Electronics",
		Status:     models.AdvertiserActive,
		WebsiteURL: "https://demo-electronics.example",
		Meta:       models.Meta{CreatedBy: seedActor, UpdatedBy: seedActor},
	})
	if err != nil {
		return 0, err
	}
	ads := demoAds(adv.ID)
	for _, ad := range ads {
		if _, err := pg.CreateAd(ctx, ad); err != nil {
			return 0, fmt.Errorf("insert %s ad: %w", ad.Format(), err)
		}
	}
	return len(ads), nil
}

func demoAds(advertiserID string) []models.Ad {
	base := func(title, titleJa string, tags ...string) models.Ad {
		return models.Ad{
			AdvertiserID: advertiserID,
			Title:        models.LocalizedText{Eng: title, Jpn: titleJa},
			Description:  models.LocalizedText{Eng: "Free shipping on every order", Jpn: "全品送料無料"},
			CTAText:      models.LocalizedText{Eng: "Shop now", Jpn: "今すぐ購入"},
			CTAURL:       "https://demo-electronics.example/shop",
			Tags:         tags,
			Status:       models.AdStatusActive,
			Meta:         models.Meta{CreatedBy: seedActor, UpdatedBy: seedActor},
		}
	}

	card := base("Laptops for every budget", "お手頃なノートパソコン", "laptop", "computer", "notebook")
	card.Config = models.ActionCardConfig{}

	lead := base("Get gadget deals by email", "お得な情報をメールで", "deals", "gadget", "newsletter")
	lead.Config = models.LeadGenConfig{
		Placeholder:      models.LocalizedText{Eng: "you@example.com", Jpn: "メールアドレス"},
		SubmitButtonText: models.LocalizedText{Eng: "Subscribe", Jpn: "登録"},
		AutocompleteType: models.AutocompleteEmail,
		SuccessMessage:   models.LocalizedText{Eng: "Thanks for subscribing!", Jpn: "ご登録ありがとうございます"},
	}

	static := base("Headphones sale", "ヘッドホンセール", "headphones", "audio", "music")
	static.Config = models.StaticConfig{
		DisplayPosition: models.PositionSidebar,
		TargetingParams: &models.StaticTargetingParams{
			Keywords:    []string{"music", "podcast"},
			Geo:         []string{"US", "JP"},
			DeviceTypes: []string{"desktop", "mobile"},
		},
	}

	followup := base("Compare phone plans", "料金プランを比較", "phone", "smartphone", "mobile")
	followup.Config = models.FollowupConfig{
		QuestionText: models.LocalizedText{Eng: "Want to compare phone plans?", Jpn: "料金プランを比較しますか?"},
		TapAction:    models.TapRedirect,
		TapActionURL: "https://demo-electronics.example/plans",
	}

	return []models.Ad{card, lead, static, followup}
}

var (
	companyPrefixes = []string{"Blue", "Bright", "North", "Swift", "Green", "Urban"}
	companySuffixes = []string{"Labs", "Goods", "Outfitters", "Travel", "Foods", "Fitness"}
	tagPool         = []string{
		"coffee", "tea", "travel", "hotel", "flight", "running", "shoes", "fitness",
		"yoga", "recipe", "cooking", "camera", "photo", "gaming", "books", "finance",
	}
	statuses = []models.AdStatus{models.AdStatusActive, models.AdStatusActive, models.AdStatusPaused}
)

func fakeCompany(r *rand.Rand) string {
	return companyPrefixes[r.IntN(len(companyPrefixes))] + " " + companySuffixes[r.IntN(len(companySuffixes))]
}

func fakeDomain(r *rand.Rand) string {
	return fmt.Sprintf("shop%d.example", r.IntN(10000))
}

func randomTags(r *rand.Rand) []string {
	n := 2 + r.IntN(3)
	idx := r.Perm(len(tagPool))[:n]
	tags := make([]string, n)
	for i, j := range idx {
		tags[i] = tagPool[j]
	}
	return tags
}

func randomAd(r *rand.Rand, advertiserID string, format models.Format) models.Ad {
	tags := randomTags(r)
	cpc := float64(5+r.IntN(200)) / 100
	ctr := float64(r.IntN(50)) / 1000
	ad := models.Ad{
		AdvertiserID: advertiserID,
		Title:        models.LocalizedText{Eng: "Best " + tags[0] + " picks", Jpn: tags[0] + "のおすすめ"},
		Description:  models.LocalizedText{Eng: "Curated " + tags[1] + " offers", Jpn: "厳選されたオファー"},
		CTAText:      models.LocalizedText{Eng: "Learn more", Jpn: "詳しく見る"},
		CTAURL:       fmt.Sprintf("https://offers.example/%s/%d", tags[0], r.IntN(1000)),
		Tags:         tags,
		Status:       statuses[r.IntN(len(statuses))],
		CPC:          &cpc,
		BaseCTR:      &ctr,
		Meta:         models.Meta{CreatedBy: seedActor, UpdatedBy: seedActor},
	}
	switch format {
	case models.FormatLeadGen:
		ad.Config = models.LeadGenConfig{
			Placeholder:      models.LocalizedText{Eng: "Email address"},
			SubmitButtonText: models.LocalizedText{Eng: "Sign up"},
			AutocompleteType: models.AutocompleteEmail,
			SuccessMessage:   models.LocalizedText{Eng: "You're in!"},
		}
	case models.FormatStatic:
		positions := []models.DisplayPosition{models.PositionTop, models.PositionBottom, models.PositionInline, models.PositionSidebar}
		ad.Config = models.StaticConfig{
			DisplayPosition: positions[r.IntN(len(positions))],
			TargetingParams: &models.StaticTargetingParams{Keywords: tags[:1]},
		}
	case models.FormatFollowup:
		ad.Config = models.FollowupConfig{
			QuestionText: models.LocalizedText{Eng: "Curious about " + tags[0] + "?"},
			TapAction:    models.TapExpand,
		}
	default:
		ad.Config = models.ActionCardConfig{}
	}
	return ad
}
