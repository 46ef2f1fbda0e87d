package domain

import (
	"fmt"
	"strings"
)

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneCasual       Tone = "casual"
	ToneFormal       Tone = "formal"
)

type Language string

const (
	LanguageEnglish Language = "english"
	LanguageSpanish Language = "spanish"
	LanguageFrench  Language = "french"
)

type EmailLength string

const (
	LengthShort  EmailLength = "short"  // 100-150 words
	LengthMedium EmailLength = "medium" // 150-250 words
	LengthLong   EmailLength = "long"   // 250-350 words
)

type Preferences struct {
	Tone        Tone        `json:"tone"`
	Language    Language    `json:"language"`
	EmailLength EmailLength `json:"emailLength"`
}

type User struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Preferences Preferences `json:"preferences"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Tone:        ToneProfessional,
		Language:    LanguageEnglish,
		EmailLength: LengthMedium,
	}
}

func ParseTone(s string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ToneProfessional, ToneFriendly, ToneCasual, ToneFormal:
		return t, nil
	}
	return "", fmt.Errorf("unknown tone %q", s)
}

func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	switch l {
	case LanguageEnglish, LanguageSpanish, LanguageFrench:
		return l, nil
	}
	return "", fmt.Errorf("unknown language %q", s)
}

func ParseEmailLength(s string) (EmailLength, error) {
	l := EmailLength(strings.ToLower(strings.TrimSpace(s)))
	switch l {
	case LengthShort, LengthMedium, LengthLong:
		return l, nil
	}
	return "", fmt.Errorf("unknown email length %q", s)
}

// Normalize fills empty fields with defaults and rejects unknown values.
func (p Preferences) Normalize() (Preferences, error) {
	def := DefaultPreferences()
	out := def

	if strings.TrimSpace(string(p.Tone)) != "" {
		t, err := ParseTone(string(p.Tone))
		if err != nil {
			return def, err
		}
		out.Tone = t
	}
	if strings.TrimSpace(string(p.Language)) != "" {
		l, err := ParseLanguage(string(p.Language))
		if err != nil {
			return def, err
		}
		out.Language = l
	}
	if strings.TrimSpace(string(p.EmailLength)) != "" {
		l, err := ParseEmailLength(string(p.EmailLength))
		if err != nil {
			return def, err
		}
		out.EmailLength = l
	}
	return out, nil
}
