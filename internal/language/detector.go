// Package language classifies free text into the locales the ad catalog
// supports. Detection is a pure function of the input.
package language

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/patrickwarner/chatads/internal/models"
)

// Detector classifies text. ok is false when the text is in a language the
// catalog does not serve; callers treat that as a terminal no-match.
type Detector interface {
	Detect(text string) (lang models.Language, ok bool)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(text string) (models.Language, bool)

func (f DetectorFunc) Detect(text string) (models.Language, bool) { return f(text) }

// New returns the detector registered under name ("whatlang" or "lingua").
// Unknown names get the whatlang detector.
func New(name string) Detector {
	if name == "lingua" {
		return NewLingua()
	}
	return NewWhatlang()
}

// hasKana reports whether text contains Hiragana or Katakana, which only
// Japanese uses.
func hasKana(text string) bool {
	for _, r := range text {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana) {
			return true
		}
	}
	return false
}

// letterScript returns the script of the first letters in text: Latin,
// Han, or nil for other scripts. hasLetters is false for text without any
// letters (digits, punctuation, emoji).
func letterScript(text string) (latin, han, hasLetters bool) {
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		hasLetters = true
		switch {
		case unicode.Is(unicode.Latin, r):
			latin = true
		case unicode.Is(unicode.Han, r):
			han = true
		default:
			return false, false, true
		}
	}
	return latin, han, hasLetters
}

// minHanLength is the shortest Han-only text classified by trigrams.
// Shorter text such as a place name cannot be told apart from Chinese.
const minHanLength = 10

// shortHan reports whether text is Han-only and too short to classify.
func shortHan(text string) bool {
	latin, han, _ := letterScript(text)
	return han && !latin && utf8.RuneCountInString(strings.TrimSpace(text)) < minHanLength
}

func blank(text string) bool {
	return strings.TrimSpace(text) == ""
}
