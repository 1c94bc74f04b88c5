package input

import (
	"errors"
	"testing"
	"time"
)

func TestClipboardPaster_RestoreEnabled(t *testing.T) {
	clip := &fakeClipboard{content: "previous content"}
	synth := &fakeSynth{}
	paste := &fakeCapability{name: "fake", handled: true}
	paster := NewClipboardPaster(clip, []PasteCapability{paste}, NewKeystrokeTyper(synth, time.Millisecond), 5*time.Millisecond, true)

	if err := paster.Typewrite("new text"); err != nil {
		t.Fatalf("Typewrite() error = %v", err)
	}

	if paste.calls != 1 {
		t.Errorf("paste capability called %d times, want 1", paste.calls)
	}
	if clip.content != "previous content" {
		t.Errorf("clipboard after call = %q, want prior content restored", clip.content)
	}
	if len(clip.writes) != 2 || clip.writes[0] != "new text" || clip.writes[1] != "previous content" {
		t.Errorf("clipboard writes = %v, want [new text, previous content]", clip.writes)
	}
}

func TestClipboardPaster_RestoreDisabled(t *testing.T) {
	clip := &fakeClipboard{content: "previous content"}
	synth := &fakeSynth{}
	paste := &fakeCapability{name: "fake", handled: true}
	paster := NewClipboardPaster(clip, []PasteCapability{paste}, NewKeystrokeTyper(synth, time.Millisecond), 5*time.Millisecond, false)

	if err := paster.Typewrite("new text"); err != nil {
		t.Fatalf("Typewrite() error = %v", err)
	}

	if clip.content != "new text" {
		t.Errorf("clipboard after call = %q, want %q", clip.content, "new text")
	}
	if len(clip.writes) != 1 {
		t.Errorf("clipboard written %d times, want 1 (no restore)", len(clip.writes))
	}
}

func TestClipboardPaster_WriteFailureFallsBackToTyping(t *testing.T) {
	clip := &fakeClipboard{writeErr: errors.New("clipboard unavailable")}
	synth := &fakeSynth{}
	paste := &fakeCapability{name: "fake", handled: true}
	paster := NewClipboardPaster(clip, []PasteCapability{paste}, NewKeystrokeTyper(synth, time.Millisecond), 5*time.Millisecond, false)

	if err := paster.Typewrite("Hi"); err != nil {
		t.Fatalf("Typewrite() error = %v", err)
	}

	if paste.calls != 0 {
		t.Errorf("paste capability called %d times, want 0 after write failure", paste.calls)
	}

	// The observed events must equal exactly what keystroke typing would
	// produce for the same text.
	events := synth.recorded()
	want := []struct{ kind, key string }{
		{"press", "H"}, {"release", "H"},
		{"press", "i"}, {"release", "i"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, w := range want {
		if events[i].kind != w.kind || events[i].key != w.key {
			t.Errorf("event %d = %s %q, want %s %q", i, events[i].kind, events[i].key, w.kind, w.key)
		}
	}
}

func TestClipboardPaster_SnapshotReadFailureTolerated(t *testing.T) {
	clip := &fakeClipboard{readErr: errors.New("clipboard empty")}
	synth := &fakeSynth{}
	paste := &fakeCapability{name: "fake", handled: true}
	paster := NewClipboardPaster(clip, []PasteCapability{paste}, NewKeystrokeTyper(synth, time.Millisecond), 5*time.Millisecond, true)

	if err := paster.Typewrite("new text"); err != nil {
		t.Fatalf("Typewrite() error = %v", err)
	}

	// No snapshot means no restore: the inserted text stays on the
	// clipboard.
	if len(clip.writes) != 1 || clip.writes[0] != "new text" {
		t.Errorf("clipboard writes = %v, want only the inserted text", clip.writes)
	}
}

func TestClipboardPaster_UnhandledCapabilityFallsThrough(t *testing.T) {
	clip := &fakeClipboard{content: "previous content"}
	synth := &fakeSynth{}
	native := &fakeCapability{name: "native-message", handled: false}
	chain := []PasteCapability{native, NewHotkeyPaste(synth)}
	paster := NewClipboardPaster(clip, chain, NewKeystrokeTyper(synth, time.Millisecond), 30*time.Millisecond, true)

	start := time.Now()
	if err := paster.Typewrite("Hi"); err != nil {
		t.Fatalf("Typewrite() error = %v", err)
	}
	elapsed := time.Since(start)

	if native.calls != 1 {
		t.Errorf("native capability called %d times, want 1", native.calls)
	}

	// The hotkey chord fires exactly once: modifier down, v down, v up,
	// modifier up.
	events := synth.recorded()
	if len(events) != 4 {
		t.Fatalf("got %d synth events, want 4 (one chord)", len(events))
	}
	if events[0].kind != "press" || events[1].key != "v" || events[2].key != "v" || events[3].kind != "release" {
		t.Errorf("chord events = %v, want modifier press, v press, v release, modifier release", events)
	}

	if elapsed < 30*time.Millisecond {
		t.Errorf("call took %v, want at least the 30ms paste delay before restore", elapsed)
	}
	if clip.content != "previous content" {
		t.Errorf("clipboard after call = %q, want prior content restored", clip.content)
	}
}

func TestClipboardPaster_CapabilityErrorTriesNext(t *testing.T) {
	clip := &fakeClipboard{}
	synth := &fakeSynth{}
	broken := &fakeCapability{name: "broken", handled: true, err: errors.New("boom")}
	working := &fakeCapability{name: "working", handled: true}
	paster := NewClipboardPaster(clip, []PasteCapability{broken, working}, NewKeystrokeTyper(synth, time.Millisecond), time.Millisecond, false)

	if err := paster.Typewrite("Hi"); err != nil {
		t.Fatalf("Typewrite() error = %v", err)
	}
	if working.calls != 1 {
		t.Errorf("second capability called %d times, want 1", working.calls)
	}
}
