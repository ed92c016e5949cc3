package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "anthropic"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("openai") {
		t.Fatal("first call should pass")
	}
	if limiter.Allow("OpenAI ") {
		t.Error("expected provider names to share one bucket regardless of case")
	}
	if !limiter.Allow("ollama") {
		t.Error("expected a separate bucket per provider")
	}
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	if !limiter.Allow("openai") {
		t.Fatal("first call should pass")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "openai"); err == nil {
		t.Error("expected wait to fail once the context expires")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("openai") {
			t.Fatalf("call %d throttled with rate limiting disabled", i)
		}
	}
}

func TestLimiter_SetProviderRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetProviderRate("ollama", 0.1, 1)

	if !limiter.Allow("ollama") {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("ollama") {
		t.Errorf("second request should fail")
	}
	if !limiter.Allow("openai") {
		t.Errorf("other provider should pass")
	}
}
