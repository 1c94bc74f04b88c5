package transcriber

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	openai "github.com/sashabaranov/go-openai"
)

type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Language      string
	InitialPrompt string
	Temperature   float32
	SampleRate    int
	Channels      int

	RemoveTrailingPeriod bool
	AddTrailingSpace     bool
	RemoveCapitalization bool
}

// Transcriber accumulates audio frames and produces a single text
// transcription once stopped.
type Transcriber interface {
	Start(ctx context.Context, frames <-chan []int16) (<-chan error, error)
	Stop(ctx context.Context) error
	GetFinalTranscription() (string, error)
}

type whisperTranscriber struct {
	config Config
	client *openai.Client

	mu       sync.Mutex
	samples  []int16
	text     string
	finalErr error

	started  bool
	stopOnce sync.Once
	done     chan struct{}
}

func NewTranscriber(cfg Config) (Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("transcriber requires an API key")
	}
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &whisperTranscriber{
		config: cfg,
		client: openai.NewClientWithConfig(clientConfig),
		done:   make(chan struct{}),
	}, nil
}

// Start consumes frames until the channel closes or the context ends.
// Frames arrive faster than the API can be called, so audio is buffered
// in memory and sent as one request on Stop.
func (t *whisperTranscriber) Start(ctx context.Context, frames <-chan []int16) (<-chan error, error) {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return nil, fmt.Errorf("transcriber already started")
	}
	t.started = true
	t.mu.Unlock()

	errCh := make(chan error, 4)

	go func() {
		defer close(errCh)
		defer close(t.done)

		for {
			select {
			case frame, ok := <-frames:
				if !ok {
					return
				}
				t.mu.Lock()
				t.samples = append(t.samples, frame...)
				t.mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	return errCh, nil
}

// Stop finalizes the transcription: the buffered audio is encoded as a
// WAV file and sent to the API. Safe to call multiple times.
func (t *whisperTranscriber) Stop(ctx context.Context) error {
	var stopErr error
	t.stopOnce.Do(func() {
		<-t.done

		t.mu.Lock()
		samples := t.samples
		t.mu.Unlock()

		if len(samples) == 0 {
			t.setResult("", fmt.Errorf("no audio captured"))
			stopErr = fmt.Errorf("no audio captured")
			return
		}

		text, err := t.transcribe(ctx, samples)
		if err != nil {
			t.setResult("", err)
			stopErr = err
			return
		}

		t.setResult(postProcess(text, t.config), nil)
	})
	return stopErr
}

func (t *whisperTranscriber) GetFinalTranscription() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finalErr != nil {
		return "", t.finalErr
	}
	return t.text, nil
}

func (t *whisperTranscriber) setResult(text string, err error) {
	t.mu.Lock()
	t.text = text
	t.finalErr = err
	t.mu.Unlock()
}

func (t *whisperTranscriber) transcribe(ctx context.Context, samples []int16) (string, error) {
	wavPath, err := writeWav(samples, t.config.SampleRate, t.config.Channels)
	if err != nil {
		return "", fmt.Errorf("failed to encode audio: %w", err)
	}
	defer os.Remove(wavPath)

	log.Printf("Transcriber: sending %d samples (%.1fs) for transcription",
		len(samples), float64(len(samples))/float64(t.config.SampleRate*t.config.Channels))

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       t.config.Model,
		FilePath:    wavPath,
		Language:    t.config.Language,
		Prompt:      t.config.InitialPrompt,
		Temperature: t.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	return resp.Text, nil
}

// writeWav encodes raw 16-bit samples to a temporary WAV file and
// returns its path. The caller owns the file.
func writeWav(samples []int16, sampleRate, channels int) (string, error) {
	f, err := os.CreateTemp("", "whisper-writer-*.wav")
	if err != nil {
		return "", err
	}
	path := f.Name()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i := range samples {
		buf.Data[i] = int(samples[i])
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}
