package models

// Language is a supported locale code.
type Language string

const (
	LanguageEng Language = "eng"
	LanguageJpn Language = "jpn"
)

// Valid reports whether l is a supported locale.
func (l Language) Valid() bool {
	return l == LanguageEng || l == LanguageJpn
}

// LocalizedText holds display text per locale. English is required on
// every admin-managed field, Japanese is optional.
type LocalizedText struct {
	Eng string `json:"eng" validate:"required"`
	Jpn string `json:"jpn,omitempty"`
}

// In returns the text for lang when present and non-empty, otherwise the
// English text, which may itself be empty.
func (t LocalizedText) In(lang Language) string {
	if lang == LanguageJpn && t.Jpn != "" {
		return t.Jpn
	}
	return t.Eng
}
