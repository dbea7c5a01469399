package language

import (
	"github.com/abadojack/whatlanggo"

	"github.com/patrickwarner/chatads/internal/models"
)

// Whatlang detects language with whatlanggo trigram profiles.
//
// Rules, in order:
//   - blank text or text without letters is undetermined, treated as English
//   - any Hiragana or Katakana means Japanese
//   - Han-only text under ten characters is undetermined (English)
//   - English and Japanese results are returned as is
//   - an unreliable result on Latin-script text is undetermined (English)
//   - anything else is unsupported
type Whatlang struct{}

// NewWhatlang returns the default detector.
func NewWhatlang() *Whatlang { return &Whatlang{} }

func (Whatlang) Detect(text string) (models.Language, bool) {
	if blank(text) {
		return models.LanguageEng, true
	}
	if hasKana(text) {
		return models.LanguageJpn, true
	}
	latin, _, hasLetters := letterScript(text)
	if !hasLetters || shortHan(text) {
		return models.LanguageEng, true
	}

	info := whatlanggo.Detect(text)
	switch info.Lang {
	case whatlanggo.Eng:
		return models.LanguageEng, true
	case whatlanggo.Jpn:
		return models.LanguageJpn, true
	}
	if latin && !info.IsReliable() {
		return models.LanguageEng, true
	}
	return "", false
}
