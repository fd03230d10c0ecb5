// Package speech turns voice queries into text and advice into MP3 audio.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTranscriptionFailed wraps every transcription error.
	ErrTranscriptionFailed = errors.New("failed to convert speech to text")

	// ErrSynthesisFailed wraps every synthesis error. Callers treat it as
	// "no audio" rather than a failed request.
	ErrSynthesisFailed = errors.New("failed to synthesize speech")
)

// DefaultLanguage is the only language the advisor speaks.
const DefaultLanguage = "en-IN"

// Gender selects the synthesis voice.
type Gender string

const (
	Female Gender = "FEMALE"
	Male   Gender = "MALE"
)

// ParseGender reads a configured gender, defaulting to Female.
func ParseGender(s string) Gender {
	if strings.EqualFold(strings.TrimSpace(s), string(Male)) {
		return Male
	}
	return Female
}

// VoiceName returns the standard voice for a language and gender.
func VoiceName(language string, g Gender) string {
	if language == "" {
		language = DefaultLanguage
	}
	variant := "A"
	if g == Male {
		variant = "B"
	}
	return fmt.Sprintf("%s-Standard-%s", language, variant)
}

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// Synthesizer voices text for a user and returns a URL to the audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, uid string, voice Gender) (string, error)
}

// Disabled is used when speech is switched off. It never produces audio
// and rejects voice queries.
type Disabled struct{}

func (Disabled) Transcribe(context.Context, []byte, string) (string, error) {
	return "", fmt.Errorf("%w: speech is disabled", ErrTranscriptionFailed)
}

func (Disabled) Synthesize(context.Context, string, string, Gender) (string, error) {
	return "", nil
}
