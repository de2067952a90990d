package domain

import (
	"fmt"
	"strings"
)

// GenerationCredentials are the provider keys a batch runs with. SafetyKey and
// FootageKey are optional at batch start.
type GenerationCredentials struct {
	ContentKey         string
	SafetyKey          string
	VoiceKey           string
	FootageKey         string
	UseHardwareEncoder bool
}

// Validate fails when a key required before the day loop starts is absent.
func (c GenerationCredentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ContentKey) == "" {
		missing = append(missing, "content")
	}
	if strings.TrimSpace(c.VoiceKey) == "" {
		missing = append(missing, "voice")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s key required", ErrMissingCredential, strings.Join(missing, ", "))
	}
	return nil
}

// SettingsStatus reports which credentials are configured without exposing them.
type SettingsStatus struct {
	HasOpenAI     bool `json:"hasOpenAI"`
	HasGemini     bool `json:"hasGemini"`
	HasElevenLabs bool `json:"hasElevenLabs"`
	HasPexels     bool `json:"hasPexels"`
	UseGPU        bool `json:"useGpu"`
	DBConnected   bool `json:"dbConnected"`
}

// SettingsUpdate is a partial settings change; nil or empty fields keep the
// stored value.
type SettingsUpdate struct {
	OpenAIKey     string `json:"OPENAI_API_KEY"`
	GeminiKey     string `json:"GEMINI_API_KEY"`
	ElevenLabsKey string `json:"ELEVENLABS_API_KEY"`
	PexelsKey     string `json:"PEXELS_API_KEY"`
	UseGPU        *bool  `json:"USE_GPU"`
}
