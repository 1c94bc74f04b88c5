package input

import (
	"testing"
	"time"
)

func TestKeystrokeTyper_PressReleasePairs(t *testing.T) {
	synth := &fakeSynth{}
	typer := NewKeystrokeTyper(synth, time.Millisecond)

	if err := typer.Typewrite("Hi!"); err != nil {
		t.Fatalf("Typewrite() error = %v", err)
	}

	events := synth.recorded()
	if len(events) != 6 {
		t.Fatalf("got %d events, want 6", len(events))
	}

	wantKeys := []string{"H", "i", "!"}
	for i, key := range wantKeys {
		press := events[2*i]
		release := events[2*i+1]
		if press.kind != "press" || press.key != key {
			t.Errorf("event %d = %s %q, want press %q", 2*i, press.kind, press.key, key)
		}
		if release.kind != "release" || release.key != key {
			t.Errorf("event %d = %s %q, want release %q", 2*i+1, release.kind, release.key, key)
		}
	}
}

func TestKeystrokeTyper_IntervalBetweenCharacters(t *testing.T) {
	synth := &fakeSynth{}
	interval := 10 * time.Millisecond
	typer := NewKeystrokeTyper(synth, interval)

	if err := typer.Typewrite("ab"); err != nil {
		t.Fatalf("Typewrite() error = %v", err)
	}

	events := synth.recorded()
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}

	// The second pair starts after the configured inter-key pause, with a
	// small tolerance for scheduling.
	gap := events[2].at.Sub(events[1].at)
	if gap < interval-2*time.Millisecond {
		t.Errorf("gap between characters = %v, want at least ~%v", gap, interval)
	}
}

func TestKeystrokeTyper_EmptyText(t *testing.T) {
	synth := &fakeSynth{}
	typer := NewKeystrokeTyper(synth, time.Millisecond)

	if err := typer.Typewrite(""); err != nil {
		t.Fatalf("Typewrite() error = %v", err)
	}
	if got := len(synth.recorded()); got != 0 {
		t.Errorf("got %d events for empty text, want 0", got)
	}
}
