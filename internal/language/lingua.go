package language

import (
	"github.com/pemistahl/lingua-go"

	"github.com/patrickwarner/chatads/internal/models"
)

// linguaLanguages is the candidate set. Including common non-supported
// languages lets lingua reject them instead of forcing English.
var linguaLanguages = []lingua.Language{
	lingua.English,
	lingua.Japanese,
	lingua.Chinese,
	lingua.Korean,
	lingua.Russian,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Portuguese,
	lingua.Arabic,
}

// Lingua detects language with lingua-go n-gram models. It is more accurate
// on short text than whatlang at the cost of memory for the loaded models.
type Lingua struct {
	detector lingua.LanguageDetector
}

// NewLingua builds the detector. Models are loaded lazily by lingua.
func NewLingua() *Lingua {
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(linguaLanguages...).
		WithMinimumRelativeDistance(0.1).
		Build()
	return &Lingua{detector: d}
}

func (l *Lingua) Detect(text string) (models.Language, bool) {
	if blank(text) {
		return models.LanguageEng, true
	}
	if hasKana(text) {
		return models.LanguageJpn, true
	}
	if shortHan(text) {
		return models.LanguageEng, true
	}
	lang, exists := l.detector.DetectLanguageOf(text)
	if !exists {
		// undetermined
		return models.LanguageEng, true
	}
	switch lang {
	case lingua.English:
		return models.LanguageEng, true
	case lingua.Japanese:
		return models.LanguageJpn, true
	}
	return "", false
}
