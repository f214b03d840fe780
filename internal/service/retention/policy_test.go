package retention

import (
	"testing"
	"time"

	"vanish_chat_server/internal/model"
	"vanish_chat_server/pkg/constants"
)

func TestWindow(t *testing.T) {
	if w, ok := Window(model.AutoDelete24h); !ok || w != constants.RETENTION_WINDOW_24H {
		t.Fatalf("24h window: %v %v", w, ok)
	}
	if w, ok := Window(model.AutoDelete7d); !ok || w != constants.RETENTION_WINDOW_7D {
		t.Fatalf("7d window: %v %v", w, ok)
	}
	if _, ok := Window(model.AutoDeleteOff); ok {
		t.Fatal("off preference has no window")
	}
	if _, ok := Window(model.AutoDeleteOnClose); ok {
		t.Fatal("on-close preference has no window")
	}
}

func TestCutoffFor(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cutoff, ok := CutoffFor(model.AutoDelete24h, now)
	if !ok || !cutoff.Equal(now.Add(-24*time.Hour)) {
		t.Fatalf("24h cutoff: %v %v", cutoff, ok)
	}

	cutoff, ok = CutoffFor(model.AutoDelete7d, now)
	if !ok || !cutoff.Equal(now.Add(-7*24*time.Hour)) {
		t.Fatalf("7d cutoff: %v %v", cutoff, ok)
	}

	if _, ok = CutoffFor(model.AutoDeleteOff, now); ok {
		t.Fatal("off preference must not produce a cutoff")
	}
}

func TestIsSweepable(t *testing.T) {
	if IsSweepable(model.AutoDeleteOff) || IsSweepable(model.AutoDeleteOnClose) {
		t.Fatal("off / on-close are not sweepable")
	}
	if !IsSweepable(model.AutoDelete24h) || !IsSweepable(model.AutoDelete7d) {
		t.Fatal("timed preferences are sweepable")
	}
}

func TestPlaceholderFor(t *testing.T) {
	if got := PlaceholderFor(model.MessageTypeImage); got != constants.PHOTO_EXPIRED_TEXT {
		t.Fatalf("image placeholder: %q", got)
	}
	if got := PlaceholderFor(model.MessageTypeAudio); got != constants.VOICE_EXPIRED_TEXT {
		t.Fatalf("audio placeholder: %q", got)
	}
	if got := PlaceholderFor(model.MessageTypeText); got != "" {
		t.Fatalf("text has no placeholder: %q", got)
	}
}

func TestRetentionLabel(t *testing.T) {
	cases := map[int8]string{
		model.AutoDeleteOff:     "off",
		model.AutoDeleteOnClose: "on chat close",
		model.AutoDelete24h:     "24 hours",
		model.AutoDelete7d:      "7 days",
		99:                      "unknown",
	}
	for pref, want := range cases {
		if got := RetentionLabel(pref); got != want {
			t.Fatalf("label for %d: got %q want %q", pref, got, want)
		}
	}
}
