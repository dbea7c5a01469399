package logic

import (
	"slices"
	"strings"

	"github.com/patrickwarner/chatads/internal/models"
)

// Scored pairs a candidate ad with its relevance score.
type Scored struct {
	Ad    models.Ad
	Score int
}

// ScoreTags counts the ad's tags present in tokens.
func ScoreTags(ad models.Ad, tokens TokenSet) int {
	score := 0
	for _, tag := range ad.Tags {
		if tokens.Has(tag) {
			score++
		}
	}
	return score
}

// ScoreContext scores every ad against the context tokens and drops ads
// without a single matching tag.
func ScoreContext(ads []models.Ad, tokens TokenSet) []Scored {
	var out []Scored
	for _, ad := range ads {
		if s := ScoreTags(ad, tokens); s > 0 {
			out = append(out, Scored{Ad: ad, Score: s})
		}
	}
	return out
}

// StaticRequest is the page-load context the static path targets against.
type StaticRequest struct {
	Interests  []string
	DeviceType string
	Geo        string
}

// MatchTargeting applies an ad's static targeting to req.
//
// An ad without targeting parameters matches with score 1. Device type and
// geo lists are hard filters, checked only when the request supplies a
// value, and add 1 each on a match. With a keyword list, matching keywords
// and matching tags both add to the score; without one only tags do.
// Keyword misses never exclude.
func MatchTargeting(ad models.Ad, req StaticRequest) (matches bool, score int) {
	tp := ad.StaticTargeting()
	if tp == nil {
		return true, 1
	}

	if len(tp.DeviceTypes) > 0 && req.DeviceType != "" {
		if !slices.Contains(tp.DeviceTypes, req.DeviceType) {
			return false, 0
		}
		score++
	}
	if len(tp.Geo) > 0 && req.Geo != "" {
		if !slices.Contains(tp.Geo, req.Geo) {
			return false, 0
		}
		score++
	}

	interests := make(TokenSet, len(req.Interests))
	for _, k := range req.Interests {
		interests[k] = struct{}{}
	}
	if len(tp.Keywords) > 0 {
		for _, kw := range tp.Keywords {
			if interests.Has(strings.ToLower(kw)) {
				score++
			}
		}
	}
	for _, tag := range ad.Tags {
		if interests.Has(strings.ToLower(tag)) {
			score++
		}
	}
	return true, score
}

// ScoreStatic keeps the ads that pass the hard filters, whatever their score.
func ScoreStatic(ads []models.Ad, req StaticRequest) []Scored {
	var out []Scored
	for _, ad := range ads {
		if ok, s := MatchTargeting(ad, req); ok {
			out = append(out, Scored{Ad: ad, Score: s})
		}
	}
	return out
}
