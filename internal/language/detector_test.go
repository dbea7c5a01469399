package language

import (
	"testing"

	"github.com/patrickwarner/chatads/internal/models"
)

func TestWhatlangDetect(t *testing.T) {
	d := NewWhatlang()
	tests := []struct {
		name   string
		text   string
		want   models.Language
		wantOK bool
	}{
		{"empty", "", models.LanguageEng, true},
		{"whitespace", "   \n\t", models.LanguageEng, true},
		{"no letters", "12345 !!! ???", models.LanguageEng, true},
		{"japanese", "これはテストです", models.LanguageJpn, true},
		{"japanese with kanji", "新しい靴が欲しいです", models.LanguageJpn, true},
		{"english sentence", "The quick brown fox jumps over the lazy dog and then looks for a new laptop computer to buy", models.LanguageEng, true},
		{"short han place name", "東京駅", models.LanguageEng, true},
		{"short han with spaces", "  北京  ", models.LanguageEng, true},
		{"long han chinese", "我需要一台新的笔记本电脑来工作和学习编程", "", false},
		{"cyrillic", "Привет, как у тебя дела сегодня? Мне нужен новый ноутбук", "", false},
		{"greek", "Γεια σου, χρειάζομαι έναν καινούργιο υπολογιστή σήμερα", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.Detect(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Detect(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestHasKana(t *testing.T) {
	if !hasKana("ラップトップ") {
		t.Error("katakana should be detected")
	}
	if hasKana("漢字") {
		t.Error("han alone is not kana")
	}
	if hasKana("laptop") {
		t.Error("latin is not kana")
	}
}

func TestLetterScript(t *testing.T) {
	latin, han, letters := letterScript("hello 123")
	if !latin || han || !letters {
		t.Errorf("latin text: got latin=%v han=%v letters=%v", latin, han, letters)
	}
	latin, _, letters = letterScript("Привет")
	if latin || !letters {
		t.Errorf("cyrillic text: got latin=%v letters=%v", latin, letters)
	}
	_, _, letters = letterScript("42!")
	if letters {
		t.Error("digits have no letters")
	}
}

func TestShortHan(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"station name", "東京駅", true},
		{"nine characters", "一二三四五六七八九", true},
		{"ten characters", "一二三四五六七八九十", false},
		{"mixed latin", "東京 station", false},
		{"latin only", "Tokyo", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shortHan(tt.text); got != tt.want {
				t.Errorf("shortHan(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestLinguaShortHan(t *testing.T) {
	if got, ok := NewLingua().Detect("東京駅"); !ok || got != models.LanguageEng {
		t.Errorf("Detect(東京駅) = %q, %v, want eng", got, ok)
	}
}

func TestDetectorFunc(t *testing.T) {
	var d Detector = DetectorFunc(func(string) (models.Language, bool) { return models.LanguageJpn, true })
	if got, ok := d.Detect("anything"); !ok || got != models.LanguageJpn {
		t.Errorf("DetectorFunc returned (%q, %v)", got, ok)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	if _, ok := New("whatlang").(*Whatlang); !ok {
		t.Error("expected whatlang detector")
	}
	if _, ok := New("unknown").(*Whatlang); !ok {
		t.Error("unknown names should fall back to whatlang")
	}
}
