package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1"
	defaultModelID = "eleven_multilingual_v2"
	defaultTimeout = 120 * time.Second

	// DefaultVoiceID is used when the voice listing cannot be read.
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

	errorBodyLimit = 4096
)

// preferredVoices are matched case-insensitively against voice names, in order.
var preferredVoices = []string{"jonathan", "adam"}

// Settings are the prosody parameters sent with every synthesis request.
type Settings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// NarrationSettings favour calm, consistent delivery.
var NarrationSettings = Settings{
	Stability:       0.85,
	SimilarityBoost: 0.65,
	Style:           0.0,
	UseSpeakerBoost: true,
}

// Voice is an entry of the provider's voice listing.
type Voice struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
}

type Options struct {
	BaseURL    string
	ModelID    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// ElevenLabs renders narration audio through the ElevenLabs HTTP API.
type ElevenLabs struct {
	baseURL string
	modelID string
	client  *http.Client
	logger  *infra.Logger
}

type synthesisRequest struct {
	Text          string   `json:"text"`
	ModelID       string   `json:"model_id"`
	VoiceSettings Settings `json:"voice_settings"`
}

func NewElevenLabs(opts Options) *ElevenLabs {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	modelID := strings.TrimSpace(opts.ModelID)
	if modelID == "" {
		modelID = defaultModelID
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &ElevenLabs{baseURL: baseURL, modelID: modelID, client: client, logger: infra.OrNop(opts.Logger)}
}

// Synthesize returns audio bytes for text spoken by the preferred voice.
func (e *ElevenLabs) Synthesize(ctx context.Context, text, key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: elevenlabs api key", domain.ErrMissingCredential)
	}
	voiceID := e.ResolveVoice(ctx, key)

	body, err := json.Marshal(synthesisRequest{Text: text, ModelID: e.modelID, VoiceSettings: NarrationSettings})
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/text-to-speech/%s", e.baseURL, url.PathEscape(voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", key)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: elevenlabs request: %v", domain.ErrProviderCall, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, fmt.Errorf("%w: %w: elevenlabs status %d: %s", domain.ErrSynthesis, domain.ErrProviderCall, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", domain.ErrProviderCall, err)
	}
	return audio, nil
}

// ResolveVoice picks the narration voice. Listing failures fall back to
// DefaultVoiceID.
func (e *ElevenLabs) ResolveVoice(ctx context.Context, key string) string {
	voices, err := e.listVoices(ctx, key)
	if err != nil {
		e.logger.Warn().Err(err).Msg("voice: listing failed, using default voice")
		return DefaultVoiceID
	}
	voice, ok := SelectVoice(voices)
	if !ok {
		return DefaultVoiceID
	}
	e.logger.Debug().Str("voice_id", voice.VoiceID).Str("voice", voice.Name).Msg("voice: selected")
	return voice.VoiceID
}

// SelectVoice applies the preference order: a name containing "jonathan",
// then "adam", then the first listed voice.
func SelectVoice(voices []Voice) (Voice, bool) {
	for _, want := range preferredVoices {
		if v, ok := lo.Find(voices, func(v Voice) bool {
			return strings.Contains(strings.ToLower(v.Name), want)
		}); ok {
			return v, true
		}
	}
	return lo.First(voices)
}

func (e *ElevenLabs) listVoices(ctx context.Context, key string) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", key)
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("elevenlabs voices status %d", resp.StatusCode)
	}
	var out struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return lo.Filter(out.Voices, func(v Voice, _ int) bool { return v.VoiceID != "" }), nil
}
