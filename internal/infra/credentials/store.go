package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/sqlinline"
)

const (
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderElevenLabs = "elevenlabs"
	ProviderPexels     = "pexels"
	ProviderEncoder    = "encoder"
)

// Providers lists every row the settings surface manages.
var Providers = []string{ProviderOpenAI, ProviderGemini, ProviderElevenLabs, ProviderPexels, ProviderEncoder}

// Store keeps provider keys and the hardware encoder flag in integration_tokens.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the trimmed token for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("load %s token: %w", provider, err)
	}
	return strings.TrimSpace(token), nil
}

// Load assembles the credentials a batch runs with.
func (s *Store) Load(ctx context.Context) (domain.GenerationCredentials, error) {
	tokens := make(map[string]string, len(Providers))
	for _, provider := range Providers {
		token, err := s.Token(ctx, provider)
		if err != nil {
			return domain.GenerationCredentials{}, err
		}
		tokens[provider] = token
	}
	useGPU, _ := strconv.ParseBool(tokens[ProviderEncoder])
	return domain.GenerationCredentials{
		ContentKey:         tokens[ProviderOpenAI],
		SafetyKey:          tokens[ProviderGemini],
		VoiceKey:           tokens[ProviderElevenLabs],
		FootageKey:         tokens[ProviderPexels],
		UseHardwareEncoder: useGPU,
	}, nil
}

// Status reports which credentials are present.
func (s *Store) Status(ctx context.Context) (domain.SettingsStatus, error) {
	creds, err := s.Load(ctx)
	if err != nil {
		return domain.SettingsStatus{}, err
	}
	return domain.SettingsStatus{
		HasOpenAI:     creds.ContentKey != "",
		HasGemini:     creds.SafetyKey != "",
		HasElevenLabs: creds.VoiceKey != "",
		HasPexels:     creds.FootageKey != "",
		UseGPU:        creds.UseHardwareEncoder,
		DBConnected:   infra.Ping(ctx, s.sql),
	}, nil
}

// Save applies a partial update; empty keys and a nil UseGPU are left as stored.
func (s *Store) Save(ctx context.Context, update domain.SettingsUpdate) error {
	keys := []struct {
		provider string
		value    string
	}{
		{ProviderOpenAI, update.OpenAIKey},
		{ProviderGemini, update.GeminiKey},
		{ProviderElevenLabs, update.ElevenLabsKey},
		{ProviderPexels, update.PexelsKey},
	}
	for _, k := range keys {
		if strings.TrimSpace(k.value) == "" {
			continue
		}
		if err := s.SetToken(ctx, k.provider, k.value); err != nil {
			return err
		}
	}
	if update.UseGPU != nil {
		return s.SetHardwareEncoder(ctx, *update.UseGPU)
	}
	return nil
}

// SetToken stores a provider key.
func (s *Store) SetToken(ctx context.Context, provider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%s api key is required", provider)
	}
	if !lo.Contains(Providers, provider) || provider == ProviderEncoder {
		return errors.New("unsupported provider " + strconv.Quote(provider))
	}
	return s.upsert(ctx, provider, key, nil)
}

// SetHardwareEncoder toggles the hardware H.264 encoder.
func (s *Store) SetHardwareEncoder(ctx context.Context, enabled bool) error {
	return s.upsert(ctx, ProviderEncoder, strconv.FormatBool(enabled), map[string]any{"codec": "h264_amf"})
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
