package logger

import (
	"context"
	"testing"
)

func TestContextWithFieldsMerges(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]interface{}{"request_id": "abc"})
	ctx = ContextWithFields(ctx, map[string]interface{}{"user_id": uint(7)})

	entry := FromContext(ctx)
	if entry.Data["request_id"] != "abc" {
		t.Fatalf("expected request_id to be kept, got %v", entry.Data["request_id"])
	}
	if entry.Data["user_id"] != uint(7) {
		t.Fatalf("expected user_id to be added, got %v", entry.Data["user_id"])
	}
}

func TestFromContextWithoutFields(t *testing.T) {
	entry := FromContext(context.Background())
	if len(entry.Data) != 0 {
		t.Fatalf("expected empty field set, got %v", entry.Data)
	}
}
