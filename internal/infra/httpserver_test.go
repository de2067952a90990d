package infra

import (
	"context"
	"testing"
	"time"
)

func TestHTTPServerShutdownCancelsRequestContexts(t *testing.T) {
	s := NewHTTPServer(&Config{Port: "0"}, nil)
	reqCtx := s.server.BaseContext(nil)
	if reqCtx.Err() != nil {
		t.Fatal("request context cancelled before shutdown")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case <-reqCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("request context still live after shutdown")
	}
}
