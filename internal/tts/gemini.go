// Package tts синтезирует речь для напоминаний через Gemini generateContent
// с модальностью AUDIO. При недоступности синтеза вызывающая сторона
// переключается на нативное озвучивание на стороне клиента.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voiceminder/voiceminder/internal/config"
)

// ErrNoSpeech синтезатор не вернул аудиоданные в ответе.
var ErrNoSpeech = errors.New("no speech generated")

// Speech результат синтеза: base64-строка с PCM16-данными и их mime-тип.
type Speech struct {
	Data string
	MIME string
}

// Client клиент синтеза речи.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities"`
	SpeechConfig       speechConfig `json:"speechConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

// New создает клиента синтеза. Возвращает nil при отсутствии API-ключа:
// в этом случае приложение работает только с нативным озвучиванием.
func New(cfg config.TTS) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// GenerateSpeech синтезирует речь для текста напоминания. Голос выбирается
// по витринному идентификатору, при его отсутствии — по настроению.
func (c *Client) GenerateSpeech(ctx context.Context, text, mood, voiceID string) (*Speech, error) {
	const op = "tts.GenerateSpeech"

	reqBody := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: text}}},
		},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{
						VoiceName: ResolveVoice(voiceID, mood),
					},
				},
			},
		},
	}

	jsonReq, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	url := fmt.Sprintf("%s?key=%s", c.baseURL, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonReq))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, cand := range genResp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return &Speech{
					Data: p.InlineData.Data,
					MIME: p.InlineData.MIMEType,
				}, nil
			}
		}
	}
	return nil, fmt.Errorf("%s: %w", op, ErrNoSpeech)
}
