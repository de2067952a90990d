package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"adstudio/internal/domain"
	"adstudio/internal/sqlinline"
)

type execCall struct {
	query string
	args  []any
}

type stubExecutor struct {
	tokens map[string]string
	err    error
	execs  []execCall
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, execCall{query: query, args: args})
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if query == sqlinline.QPing {
		return stubRow{value: 1}
	}
	if s.err != nil {
		return stubRow{err: s.err}
	}
	token, ok := s.tokens[args[0].(string)]
	if !ok {
		return stubRow{err: pgx.ErrNoRows}
	}
	return stubRow{value: token}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	value any
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 0 {
		return errors.New("no dest")
	}
	switch ptr := dest[0].(type) {
	case *string:
		*ptr = r.value.(string)
	case *int:
		*ptr = r.value.(int)
	default:
		return errors.New("invalid dest")
	}
	return nil
}

func TestToken(t *testing.T) {
	store := NewStore(&stubExecutor{tokens: map[string]string{ProviderGemini: " abc123 "}})
	key, err := store.Token(context.Background(), ProviderGemini)
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if key != "abc123" {
		t.Fatalf("expected abc123, got %q", key)
	}
}

func TestToken_NoRows(t *testing.T) {
	store := NewStore(&stubExecutor{})
	key, err := store.Token(context.Background(), ProviderPexels)
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if key != "" {
		t.Fatalf("expected empty key, got %q", key)
	}
}

func TestToken_DBError(t *testing.T) {
	store := NewStore(&stubExecutor{err: errors.New("conn reset")})
	if _, err := store.Token(context.Background(), ProviderOpenAI); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad(t *testing.T) {
	store := NewStore(&stubExecutor{tokens: map[string]string{
		ProviderOpenAI:     "sk-openai",
		ProviderElevenLabs: "xi-key",
		ProviderPexels:     "px-key",
		ProviderEncoder:    "true",
	}})
	creds, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := domain.GenerationCredentials{
		ContentKey:         "sk-openai",
		VoiceKey:           "xi-key",
		FootageKey:         "px-key",
		UseHardwareEncoder: true,
	}
	if creds != want {
		t.Fatalf("Load = %#v, want %#v", creds, want)
	}
}

func TestStatus(t *testing.T) {
	store := NewStore(&stubExecutor{tokens: map[string]string{ProviderGemini: "g"}})
	status, err := store.Status(context.Background())
	if err != nil {
		t.Fatalf("Status error: %v", err)
	}
	if !status.HasGemini || status.HasOpenAI || status.UseGPU || !status.DBConnected {
		t.Fatalf("unexpected status: %#v", status)
	}
}

func TestSaveSkipsEmptyFields(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(exec)
	useGPU := false
	err := store.Save(context.Background(), domain.SettingsUpdate{OpenAIKey: "sk-new", PexelsKey: "  ", UseGPU: &useGPU})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if len(exec.execs) != 2 {
		t.Fatalf("expected 2 upserts, got %d", len(exec.execs))
	}
	if exec.execs[0].args[0] != ProviderOpenAI || exec.execs[0].args[1] != "sk-new" {
		t.Fatalf("unexpected first upsert args: %v", exec.execs[0].args)
	}
	if exec.execs[1].args[0] != ProviderEncoder || exec.execs[1].args[1] != "false" {
		t.Fatalf("unexpected encoder upsert args: %v", exec.execs[1].args)
	}
}

func TestSetTokenValidation(t *testing.T) {
	store := NewStore(&stubExecutor{})
	if err := store.SetToken(context.Background(), ProviderOpenAI, " "); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := store.SetToken(context.Background(), "replicate", "key"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if err := store.SetToken(context.Background(), ProviderEncoder, "true"); err == nil {
		t.Fatal("expected error for encoder via SetToken")
	}
}
