package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis serves TxPipeline from fakePipe; every other command panics
// through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable
	pipe *fakePipe
}

func (f *fakeRedis) TxPipeline() redis.Pipeliner { return f.pipe }

type fakePipe struct {
	redis.Pipeliner
	counts  map[string]int64
	ttl     time.Duration
	execErr error
	calls   []string
	expiry  time.Duration
}

func (p *fakePipe) Incr(ctx context.Context, key string) *redis.IntCmd {
	p.calls = append(p.calls, "incr "+key)
	p.counts[key]++
	cmd := redis.NewIntCmd(ctx, "incr", key)
	cmd.SetVal(p.counts[key])
	return cmd
}

func (p *fakePipe) ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	p.calls = append(p.calls, "expirenx "+key)
	p.expiry = expiration
	cmd := redis.NewBoolCmd(ctx, "expire", key, expiration, "nx")
	cmd.SetVal(true)
	return cmd
}

func (p *fakePipe) TTL(ctx context.Context, key string) *redis.DurationCmd {
	p.calls = append(p.calls, "ttl "+key)
	cmd := redis.NewDurationCmd(ctx, time.Second, "ttl", key)
	cmd.SetVal(p.ttl)
	return cmd
}

func (p *fakePipe) Exec(ctx context.Context) ([]redis.Cmder, error) {
	p.calls = append(p.calls, "exec")
	return nil, p.execErr
}

func newFakeRedis(ttl time.Duration) *fakeRedis {
	return &fakeRedis{pipe: &fakePipe{counts: make(map[string]int64), ttl: ttl}}
}

func TestRedisCounterPipeline(t *testing.T) {
	client := newFakeRedis(42 * time.Second)
	counter := NewRedisCounter(client, "pbn:rl:")

	n, ttl, err := counter.Incr(context.Background(), "198.51.100.10", time.Minute)
	if err != nil {
		t.Fatalf("Incr error: %v", err)
	}
	if n != 1 || ttl != 42*time.Second {
		t.Fatalf("Incr = %d, %s", n, ttl)
	}
	want := []string{"incr pbn:rl:198.51.100.10", "expirenx pbn:rl:198.51.100.10", "ttl pbn:rl:198.51.100.10", "exec"}
	if len(client.pipe.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", client.pipe.calls, want)
	}
	for i := range want {
		if client.pipe.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", client.pipe.calls, want)
		}
	}
	if client.pipe.expiry != time.Minute {
		t.Fatalf("expiry = %s", client.pipe.expiry)
	}

	if n, _, _ := counter.Incr(context.Background(), "198.51.100.10", time.Minute); n != 2 {
		t.Fatalf("second Incr = %d", n)
	}
}

func TestRedisCounterMissingTTLFallsBackToWindow(t *testing.T) {
	for _, ttl := range []time.Duration{-1, -2} {
		counter := NewRedisCounter(newFakeRedis(ttl), "")
		_, got, err := counter.Incr(context.Background(), "ip", 30*time.Second)
		if err != nil {
			t.Fatalf("Incr error: %v", err)
		}
		if got != 30*time.Second {
			t.Fatalf("ttl %s reported %s, want the window", ttl, got)
		}
	}
}

func TestRedisCounterExecError(t *testing.T) {
	client := newFakeRedis(time.Second)
	client.pipe.execErr = errors.New("connection refused")
	counter := NewRedisCounter(client, "")

	if _, _, err := counter.Incr(context.Background(), "ip", time.Minute); err == nil {
		t.Fatalf("expected exec error")
	}
	if client.pipe.calls[0] != "incr rl:ip" {
		t.Fatalf("default prefix not applied: %v", client.pipe.calls)
	}
}
