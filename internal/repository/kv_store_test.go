package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedisKV struct {
	values  map[string]string
	lastTTL time.Duration
	getErr  error
}

func (f *fakeRedisKV) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if f.getErr != nil {
		cmd.SetErr(f.getErr)
		return cmd
	}
	v, ok := f.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeRedisKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	f.lastTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedisKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.values, k)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestRedisKVStore_RoundTrip(t *testing.T) {
	fake := &fakeRedisKV{values: map[string]string{}}
	store := &RedisKVStore{client: fake, prefix: "getabib:"}
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "goals:r1"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "goals:r1", `{"rawText":"x"}`, -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if fake.lastTTL != 0 {
		t.Fatalf("expected negative ttl to mean no expiration, got %v", fake.lastTTL)
	}
	if _, ok := fake.values["getabib:goals:r1"]; !ok {
		t.Fatalf("expected prefixed key, got %+v", fake.values)
	}

	v, ok, err := store.Get(ctx, "goals:r1")
	if err != nil || !ok || v != `{"rawText":"x"}` {
		t.Fatalf("unexpected get: %q %v %v", v, ok, err)
	}

	if err := store.Delete(ctx, "goals:r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "goals:r1"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestRedisKVStore_GetError(t *testing.T) {
	store := &RedisKVStore{client: &fakeRedisKV{values: map[string]string{}, getErr: errors.New("down")}}
	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected error to propagate")
	}
}

func TestMemoryKVStore(t *testing.T) {
	store := NewMemoryKVStore()
	ctx := context.Background()

	if err := store.Set(ctx, "a", "1", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "b", "2", 20*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, _ := store.Get(ctx, "a"); !ok || v != "1" {
		t.Fatalf("expected a=1, got %q %v", v, ok)
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "b"); ok {
		t.Fatalf("expected b to expire")
	}
	if _, ok, _ := store.Get(ctx, "a"); !ok {
		t.Fatalf("expected a to survive without ttl")
	}

	_ = store.Delete(ctx, "a")
	if _, ok, _ := store.Get(ctx, "a"); ok {
		t.Fatalf("expected a deleted")
	}
}
