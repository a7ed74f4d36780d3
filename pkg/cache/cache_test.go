package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	c, err := NewCache("", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Enabled() {
		t.Fatal("expected cache to be disabled")
	}

	if err := c.Set("key", "value", time.Minute); err != nil {
		t.Fatalf("set on disabled cache should be a no-op, got %v", err)
	}

	var dest string
	if err := c.Get("key", &dest); !errors.Is(err, ErrCacheDisabled) {
		t.Fatalf("expected ErrCacheDisabled, got %v", err)
	}

	if _, err := c.GetCachedShortLink("abc"); !errors.Is(err, ErrCacheDisabled) {
		t.Fatalf("expected ErrCacheDisabled for short link lookup, got %v", err)
	}

	if err := c.InvalidateTemplate(1); err != nil {
		t.Fatalf("invalidate on disabled cache should be a no-op, got %v", err)
	}
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	if c.Enabled() {
		t.Fatal("nil cache must report disabled")
	}
	if err := c.Delete("key"); err != nil {
		t.Fatalf("delete on nil cache should be a no-op, got %v", err)
	}
}

var errStopCommand = errors.New("command recorded")

// recordingHook captures commands and stops them before they reach the network.
type recordingHook struct {
	commands []string
}

func (h *recordingHook) BeforeProcess(ctx context.Context, cmd redis.Cmder) (context.Context, error) {
	h.commands = append(h.commands, fmt.Sprintf("%v", cmd.Args()))
	return ctx, errStopCommand
}

func (h *recordingHook) AfterProcess(context.Context, redis.Cmder) error {
	return nil
}

func (h *recordingHook) BeforeProcessPipeline(ctx context.Context, _ []redis.Cmder) (context.Context, error) {
	return ctx, errStopCommand
}

func (h *recordingHook) AfterProcessPipeline(context.Context, []redis.Cmder) error {
	return nil
}

func TestInvalidateTemplateDeletesOnlyItsKey(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	hook := &recordingHook{}
	client.AddHook(hook)
	c := &Cache{client: client, enabled: true}

	if err := c.InvalidateTemplate(42); !errors.Is(err, errStopCommand) {
		t.Fatalf("expected the recorded command error, got %v", err)
	}
	if len(hook.commands) != 1 || hook.commands[0] != "[del template:42]" {
		t.Fatalf("unexpected commands %q", hook.commands)
	}
}
