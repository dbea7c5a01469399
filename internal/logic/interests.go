package logic

import (
	"sort"
	"strings"

	"github.com/patrickwarner/chatads/internal/models"
)

const (
	// DefaultHistoryLimit is how many past successful requests are mined.
	DefaultHistoryLimit = 50
	// MinInterestFrequency drops tokens mentioned only once.
	MinInterestFrequency = 2
	// MaxInterests caps the interest list.
	MaxInterests = 20
)

// ExtractInterests ranks the tokens of a user's past request texts by
// frequency. Only tokens of at least three characters that occur twice or
// more are kept; ties keep first-seen order. Empty history yields nil.
func ExtractInterests(history []models.HistoryEntry) []string {
	texts := make([]string, 0, len(history))
	for _, h := range history {
		if h.ContextText != "" {
			texts = append(texts, h.ContextText)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, tok := range Tokens(strings.Join(texts, " "), MinInterestTokenLength) {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	var out []string
	for _, tok := range order {
		if counts[tok] >= MinInterestFrequency {
			out = append(out, tok)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return counts[out[i]] > counts[out[j]]
	})
	if len(out) > MaxInterests {
		out = out[:MaxInterests]
	}
	return out
}
