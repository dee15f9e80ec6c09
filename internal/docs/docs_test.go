package docs

import (
	"slices"
	"testing"
)

func TestTopics(t *testing.T) {
	topics := Topics()
	for _, want := range []string{"config", "items", "keys", "lots"} {
		if !slices.Contains(topics, want) {
			t.Fatalf("missing topic %q in %v", want, topics)
		}
	}
}

func TestGet(t *testing.T) {
	if _, ok := Get("KEYS"); !ok {
		t.Fatalf("expected case-insensitive lookup")
	}
	if _, ok := Get("../docs"); ok {
		t.Fatalf("expected path-like topics to be rejected")
	}
	if got := Title("lots"); got != "Lots" {
		t.Fatalf("unexpected title %q", got)
	}
}
