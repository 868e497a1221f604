package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonMunkholm/csvtotext/internal/core"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
)

// memClient is an in-memory Client.
type memClient struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	closed bool
}

func newMemClient() *memClient {
	return &memClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memClient) Get(_ context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memClient) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = string(value.([]byte))
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *memClient) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *memClient) Close() error {
	m.closed = true
	return nil
}

func TestRedisCache_RoundTrip(t *testing.T) {
	client := newMemClient()
	c := New(client, 10*time.Minute, "csvtotext")
	ctx := context.Background()

	want := core.FileResult{
		Name:        "words.csv",
		Format:      core.FormatText,
		Charset:     core.CharsetUTF8,
		Delimiter:   core.Semicolon,
		Lines:       []string{"fire:f__e|ild:i_d"},
		InvalidRows: []core.InvalidRow{{Index: 2, Row: "broken"}},
	}
	if err := c.Set(ctx, "abc", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ttl := client.ttls["csvtotext:convert:abc"]; ttl != 10*time.Minute {
		t.Errorf("ttl = %v, want %v", ttl, 10*time.Minute)
	}

	got, ok, err := c.Get(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, want hit", ok, err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestRedisCache_Miss(t *testing.T) {
	c := New(newMemClient(), 0, "")
	got, ok, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() error = %v, want nil on miss", err)
	}
	if ok || got != nil {
		t.Errorf("Get() = %v, %v, want miss", got, ok)
	}
}

func TestRedisCache_GetError(t *testing.T) {
	client := newMemClient()
	client.getErr = errors.New("connection refused")

	_, ok, err := New(client, 0, "").Get(context.Background(), "k")
	if err == nil || ok {
		t.Fatalf("Get() = %v, %v, want error", ok, err)
	}
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	client := newMemClient()
	client.data["convert:k"] = "{not json"

	_, ok, err := New(client, 0, "").Get(context.Background(), "k")
	if err == nil || ok {
		t.Fatalf("Get() = %v, %v, want decode error", ok, err)
	}
}

func TestRedisCache_SkipsFailedResults(t *testing.T) {
	client := newMemClient()
	c := New(client, 0, "")

	err := c.Set(context.Background(), "k", core.FileResult{Name: "x.xls", Error: "unsupported", ErrorCode: "FILE006"})
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if len(client.data) != 0 {
		t.Errorf("failed result was cached: %v", client.data)
	}
}

func TestNew_DefaultTTL(t *testing.T) {
	client := newMemClient()
	c := New(client, -time.Second, "")
	if err := c.Set(context.Background(), "k", core.FileResult{Name: "a.csv"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ttl := client.ttls["convert:k"]; ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", ttl, DefaultTTL)
	}
	if err := c.Close(); err != nil || !client.closed {
		t.Errorf("Close() = %v, closed = %v", err, client.closed)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), Config{URL: "http://not-redis"})
	if err == nil {
		t.Fatal("Connect() expected error for non-redis URL")
	}
}
