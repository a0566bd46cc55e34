package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aescanero/survey/pkg/domain"
	"github.com/aescanero/survey/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionStore(client, time.Hour, zap.NewNop()), mr
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	session := domain.NewSession("abc")
	session.Select("personality")
	session.Reset()
	session.Record(domain.Answer{Choice: "wtf()", Text: "too honest"})

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if ttl := mr.TTL("survey:session:abc"); ttl != time.Hour {
		t.Fatalf("TTL = %v, want %v", ttl, time.Hour)
	}

	loaded, err := store.Load(ctx, "abc")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.SurveyCode != "personality" {
		t.Fatalf("SurveyCode = %q, want %q", loaded.SurveyCode, "personality")
	}
	if len(loaded.Responses) != 1 || loaded.Responses[0].Text != "too honest" {
		t.Fatalf("Responses = %+v", loaded.Responses)
	}
}

func TestLoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	if !errors.Is(err, ports.ErrSessionNotFound) {
		t.Fatalf("Load() error = %v, want %v", err, ports.ErrSessionNotFound)
	}
}

func TestExpiredSessionNotFound(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	if err := store.Save(ctx, domain.NewSession("abc")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	mr.FastForward(2 * time.Hour)

	if ok, err := store.Exists(ctx, "abc"); err != nil || ok {
		t.Fatalf("Exists() = %v, %v; want false, nil", ok, err)
	}
	if _, err := store.Load(ctx, "abc"); !errors.Is(err, ports.ErrSessionNotFound) {
		t.Fatalf("Load() error = %v, want %v", err, ports.ErrSessionNotFound)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if err := store.Save(ctx, domain.NewSession("abc")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ok, _ := store.Exists(ctx, "abc"); ok {
		t.Fatalf("Exists() = true after Delete")
	}
}

func TestLoadCorruptSession(t *testing.T) {
	store, mr := newTestStore(t)

	if err := mr.Set("survey:session:abc", "{not json"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := store.Load(context.Background(), "abc"); !errors.Is(err, ports.ErrSessionCorrupt) {
		t.Fatalf("Load() error = %v, want %v", err, ports.ErrSessionCorrupt)
	}
}
