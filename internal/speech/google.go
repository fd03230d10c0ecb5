package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	googleTTSURL = "https://texttospeech.googleapis.com/v1/text:synthesize"
	googleSTTURL = "https://speech.googleapis.com/v1/speech:recognize"

	speakingRate     = 0.9
	recordSampleRate = 16000
)

// Google uses the Google Cloud Speech-to-Text and Text-to-Speech REST APIs.
// Synthesized audio is written to the AudioStore.
type Google struct {
	apiKey   string
	language string
	ttsURL   string
	sttURL   string
	client   *http.Client
	store    *AudioStore
}

// NewGoogle creates a Google speech client for language (en-IN when empty).
func NewGoogle(apiKey, language string, store *AudioStore, timeout time.Duration) *Google {
	if language == "" {
		language = DefaultLanguage
	}
	return &Google{
		apiKey:   apiKey,
		language: language,
		ttsURL:   googleTTSURL,
		sttURL:   googleSTTURL,
		client:   &http.Client{Timeout: timeout},
		store:    store,
	}
}

// WithEndpoints overrides the synthesis and recognition URLs.
func (g *Google) WithEndpoints(tts, stt string) *Google {
	g.ttsURL, g.sttURL = tts, stt
	return g
}

type ttsRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
		SSMLGender   Gender `json:"ssmlGender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate"`
		Pitch         float64 `json:"pitch"`
		VolumeGainDb  float64 `json:"volumeGainDb"`
	} `json:"audioConfig"`
}

type ttsResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize voices text and stores the MP3. Empty text produces no audio
// and no error.
func (g *Google) Synthesize(ctx context.Context, text, uid string, voice Gender) (string, error) {
	spoken := PlainText(text)
	if spoken == "" {
		return "", nil
	}

	var req ttsRequest
	req.Input.Text = spoken
	req.Voice.LanguageCode = g.language
	req.Voice.Name = VoiceName(g.language, voice)
	req.Voice.SSMLGender = voice
	req.AudioConfig.AudioEncoding = "MP3"
	req.AudioConfig.SpeakingRate = speakingRate

	var resp ttsResponse
	if err := g.post(ctx, g.ttsURL, req, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}
	if resp.AudioContent == "" {
		return "", fmt.Errorf("%w: no audio content generated", ErrSynthesisFailed)
	}
	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return "", fmt.Errorf("%w: decoding audio: %w", ErrSynthesisFailed, err)
	}
	u, err := g.store.Save(uid, audio)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}
	return u, nil
}

type sttRequest struct {
	Config struct {
		Encoding                   string `json:"encoding"`
		SampleRateHertz            int    `json:"sampleRateHertz"`
		LanguageCode               string `json:"languageCode"`
		EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	} `json:"config"`
	Audio struct {
		Content string `json:"content"`
	} `json:"audio"`
}

type sttResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Transcribe recognises WEBM/Opus audio recorded at 16 kHz. Each result's
// best alternative becomes one line of the transcript.
func (g *Google) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if language == "" {
		language = g.language
	}
	var req sttRequest
	req.Config.Encoding = "WEBM_OPUS"
	req.Config.SampleRateHertz = recordSampleRate
	req.Config.LanguageCode = language
	req.Config.EnableAutomaticPunctuation = true
	req.Audio.Content = base64.StdEncoding.EncodeToString(audio)

	var resp sttResponse
	if err := g.post(ctx, g.sttURL, req, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	var lines []string
	for _, r := range resp.Results {
		if len(r.Alternatives) > 0 {
			lines = append(lines, r.Alternatives[0].Transcript)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (g *Google) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+url.QueryEscape(g.apiKey), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
