package safety

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func geminiReply(status int, text string) *http.Response {
	body := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
		}},
	}
	raw, _ := json.Marshal(body)
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(string(raw))), Header: http.Header{}}
}

func TestAuditWithoutKeyReturnsOriginal(t *testing.T) {
	called := false
	auditor := NewGeminiAuditor(GeminiOptions{HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return nil, errors.New("unexpected")
	})}})
	for _, text := range []string{"", "Buy now!", "anything at all, even unsafe"} {
		res := auditor.Audit(context.Background(), text, "  ")
		if res.SafeScript != text || res.WasModified {
			t.Fatalf("Audit(%q) = %#v, want original unmodified", text, res)
		}
	}
	if called {
		t.Fatal("review call issued without a key")
	}
}

func TestAuditRewrite(t *testing.T) {
	var gotKey, gotPath string
	auditor := NewGeminiAuditor(GeminiOptions{HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		return geminiReply(http.StatusOK, "```json\n{\"safeScript\":\"A calmer claim.\",\"wasModified\":true}\n```"), nil
	})}})

	res := auditor.Audit(context.Background(), "Guaranteed 100x returns!", "g-key")
	if !res.WasModified || res.SafeScript != "A calmer claim." {
		t.Fatalf("Audit = %#v", res)
	}
	if gotKey != "g-key" {
		t.Fatalf("api key header = %q", gotKey)
	}
	if gotPath != "/v1beta/models/gemini-1.5-flash:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestAuditUnmodifiedKeepsExactInput(t *testing.T) {
	auditor := NewGeminiAuditor(GeminiOptions{HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return geminiReply(http.StatusOK, `{"safeScript":"Plan ahead ","wasModified":false}`), nil
	})}})
	res := auditor.Audit(context.Background(), "Plan ahead.", "g-key")
	if res.SafeScript != "Plan ahead." || res.WasModified {
		t.Fatalf("Audit = %#v, want original text", res)
	}
}

func TestAuditFallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name       string
		transport  roundTripFunc
		wantReason string
	}{
		{
			name: "transport error",
			transport: func(r *http.Request) (*http.Response, error) {
				return nil, errors.New("boom")
			},
			wantReason: "http_request",
		},
		{
			name: "bad status",
			transport: func(r *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 429, Body: io.NopCloser(strings.NewReader(`{"error":{"message":"quota"}}`))}, nil
			},
			wantReason: "http_status",
		},
		{
			name: "malformed reply",
			transport: func(r *http.Request) (*http.Response, error) {
				return geminiReply(http.StatusOK, "I cannot help with that."), nil
			},
			wantReason: "parse",
		},
		{
			name: "empty script",
			transport: func(r *http.Request) (*http.Response, error) {
				return geminiReply(http.StatusOK, `{"safeScript":"","wasModified":true}`), nil
			},
			wantReason: "parse",
		},
		{
			name: "no candidates",
			transport: func(r *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(`{"candidates":[]}`))}, nil
			},
			wantReason: "empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reason string
			auditor := NewGeminiAuditor(GeminiOptions{
				HTTPClient: &http.Client{Transport: tt.transport},
				OnFallback: func(r string, err error) { reason = r },
			})
			res := auditor.Audit(context.Background(), "Original copy.", "g-key")
			if res.SafeScript != "Original copy." || res.WasModified {
				t.Fatalf("Audit = %#v, want original", res)
			}
			if reason != tt.wantReason {
				t.Fatalf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}
