package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultMaxAttempts = 3
	defaultBackoff     = time.Second
)

// adPayload is the structured reply requested from the model.
type adPayload struct {
	Theme    string           `json:"theme" jsonschema_description:"Brief theme of the ad"`
	Segments []segmentPayload `json:"segments" jsonschema_description:"Exactly three segments: hook, core message, call to action"`
}

type segmentPayload struct {
	Text              string  `json:"text" jsonschema_description:"Narration text for the segment"`
	VisualKeywords    string  `json:"visualKeywords" jsonschema_description:"Stock footage search terms"`
	EstimatedDuration float64 `json:"estimatedDuration" jsonschema_description:"Spoken length in seconds"`
}

// GenerateSchema reflects a strict JSON schema for T.
func GenerateSchema[T any]() any {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var adPayloadSchema = GenerateSchema[adPayload]()

// GenerateRequest asks for one day's script.
type GenerateRequest struct {
	MasterPrompt string
	DateContext  string
	APIKey       string
	// OnAttemptFailed is called after each failed attempt.
	OnAttemptFailed func(attempt, maxAttempts int, err error)
}

type Options struct {
	BaseURL     string
	Model       string
	HTTPClient  *http.Client
	Logger      *infra.Logger
	MaxAttempts int
	Backoff     time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// OpenAIGenerator writes three-segment ad scripts with OpenAI structured
// outputs.
type OpenAIGenerator struct {
	baseURL     string
	model       string
	httpClient  *http.Client
	logger      *infra.Logger
	maxAttempts int
	backoff     time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewOpenAIGenerator(opts Options) *OpenAIGenerator {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &OpenAIGenerator{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		model:       model,
		httpClient:  httpClient,
		logger:      infra.OrNop(opts.Logger),
		maxAttempts: maxAttempts,
		backoff:     backoff,
		sleep:       sleep,
	}
}

// Generate returns a validated AdContent, retrying with a fixed backoff. The
// last error is returned once attempts are exhausted.
func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (domain.AdContent, error) {
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		return domain.AdContent{}, fmt.Errorf("%w: openai api key", domain.ErrMissingCredential)
	}
	client := g.newClient(key)

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		content, err := g.generateOnce(ctx, client, req)
		if err == nil {
			return content, nil
		}
		lastErr = err
		g.logger.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", g.maxAttempts).Msg("content: generation attempt failed")
		if req.OnAttemptFailed != nil {
			req.OnAttemptFailed(attempt, g.maxAttempts, err)
		}
		if attempt == g.maxAttempts {
			break
		}
		if err := g.sleep(ctx, g.backoff); err != nil {
			return domain.AdContent{}, err
		}
	}
	return domain.AdContent{}, lastErr
}

func (g *OpenAIGenerator) newClient(key string) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithHTTPClient(g.httpClient),
		option.WithMaxRetries(0),
	}
	if g.baseURL != "" {
		opts = append(opts, option.WithBaseURL(g.baseURL))
	}
	return openai.NewClient(opts...)
}

func (g *OpenAIGenerator) generateOnce(ctx context.Context, client openai.Client, req GenerateRequest) (domain.AdContent, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "ad_content",
		Description: openai.String("A three segment vertical video ad script"),
		Schema:      adPayloadSchema,
		Strict:      openai.Bool(true),
	}
	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildSystemPrompt(req.DateContext)),
			openai.UserMessage(buildUserPrompt(req.MasterPrompt)),
		},
		Model: openai.ChatModel(g.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return domain.AdContent{}, fmt.Errorf("%w: openai: %v", domain.ErrProviderCall, err)
	}
	if len(completion.Choices) == 0 {
		return domain.AdContent{}, fmt.Errorf("%w: openai returned no choices", domain.ErrProviderCall)
	}
	raw := strings.TrimSpace(completion.Choices[0].Message.Content)
	if raw == "" {
		return domain.AdContent{}, fmt.Errorf("%w: openai returned empty content", domain.ErrProviderCall)
	}

	var payload adPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.AdContent{}, fmt.Errorf("%w: parse openai content: %v", domain.ErrProviderCall, err)
	}
	content := payload.toDomain()
	if err := content.Validate(); err != nil {
		return domain.AdContent{}, fmt.Errorf("%w: %w", domain.ErrProviderCall, err)
	}
	return content, nil
}

func (p adPayload) toDomain() domain.AdContent {
	segments := make([]domain.AdSegment, 0, len(p.Segments))
	for _, s := range p.Segments {
		segments = append(segments, domain.AdSegment{
			Text:                     strings.TrimSpace(s.Text),
			VisualKeywords:           strings.TrimSpace(s.VisualKeywords),
			EstimatedDurationSeconds: s.EstimatedDuration,
		})
	}
	return domain.AdContent{Theme: strings.TrimSpace(p.Theme), Segments: segments}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

