package safety

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adstudio/internal/infra"
)

const (
	geminiDefaultTimeout = 30 * time.Second
	geminiDefaultModel   = "gemini-1.5-flash"
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// AuditResult is the outcome of a script review.
type AuditResult struct {
	SafeScript  string `json:"safeScript"`
	WasModified bool   `json:"wasModified"`
}

type GeminiOptions struct {
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
	OnFallback func(reason string, err error)
}

// GeminiAuditor reviews ad copy for brand safety. It never fails: any problem
// with the review call yields the original text unmodified.
type GeminiAuditor struct {
	model      string
	baseURL    string
	client     *http.Client
	logger     *infra.Logger
	onFallback func(reason string, err error)
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewGeminiAuditor(opts GeminiOptions) *GeminiAuditor {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = geminiDefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiAuditor{
		model:      model,
		baseURL:    baseURL,
		client:     client,
		logger:     infra.OrNop(opts.Logger),
		onFallback: opts.OnFallback,
	}
}

// Audit reviews text with the safety model. Without a key the text is
// returned as is.
func (g *GeminiAuditor) Audit(ctx context.Context, text, key string) AuditResult {
	original := AuditResult{SafeScript: text, WasModified: false}
	key = strings.TrimSpace(key)
	if key == "" {
		return original
	}

	result, reason, err := g.review(ctx, text, key)
	if err != nil {
		g.logger.Warn().Err(err).Str("reason", reason).Str("model", g.model).Msg("safety: audit failed, using original text")
		if g.onFallback != nil {
			g.onFallback(reason, err)
		}
		return original
	}
	if !result.WasModified {
		result.SafeScript = text
	}
	return result
}

func (g *GeminiAuditor) review(ctx context.Context, text, key string) (AuditResult, string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildAuditPrompt(text)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return AuditResult{}, "encode", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return AuditResult{}, "http_request", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", key)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return AuditResult{}, "http_request", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		var apiErr geminiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return AuditResult{}, "http_status", fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return AuditResult{}, "decode", err
	}
	raw := extractText(out)
	if raw == "" {
		return AuditResult{}, "empty", errors.New("gemini returned no text")
	}
	parsed, err := parseModelPayload[AuditResult](raw)
	if err != nil {
		return AuditResult{}, "parse", err
	}
	if strings.TrimSpace(parsed.SafeScript) == "" {
		return AuditResult{}, "parse", errors.New("gemini returned an empty script")
	}
	return parsed, "", nil
}

func (g *GeminiAuditor) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func extractText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text
			}
		}
	}
	return ""
}

func buildAuditPrompt(script string) string {
	sb := &strings.Builder{}
	sb.WriteString("You are a strict legal compliance and brand safety officer reviewing one segment of an ad script.\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("1. If the script is safe (no hate speech, violence, misleading claims or explicit material), return it EXACTLY as is.\n")
	sb.WriteString("2. If it is unsafe or questionable, rewrite it to be safe while keeping the original meaning, energy and tone.\n")
	sb.WriteString("3. Respond strictly with JSON: {\"safeScript\": string, \"wasModified\": boolean}.\n")
	fmt.Fprintf(sb, "Input script: %q", script)
	return sb.String()
}
