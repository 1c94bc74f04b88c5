package recording

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

type Config struct {
	SampleRate  int
	Channels    int
	BufferSize  int
	MaxDuration time.Duration
}

// Recorder captures audio from the default input device and streams it
// as raw 16-bit frames until Stop or context cancellation.
type Recorder struct {
	config Config

	mu       sync.Mutex
	cancel   context.CancelFunc
	stopOnce sync.Once
	done     chan struct{}
}

func NewRecorder(cfg Config) *Recorder {
	return &Recorder{
		config: cfg,
		done:   make(chan struct{}),
	}
}

// Start opens the default capture stream and begins delivering frames.
// The frame channel is closed when recording ends; the error channel
// carries stream read errors without stopping the capture loop.
func (r *Recorder) Start(ctx context.Context) (<-chan []int16, <-chan error, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize audio subsystem: %w", err)
	}

	in := make([]int16, r.config.BufferSize)
	stream, err := portaudio.OpenDefaultStream(r.config.Channels, 0, float64(r.config.SampleRate), len(in), in)
	if err != nil {
		portaudio.Terminate()
		return nil, nil, fmt.Errorf("failed to open audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, nil, fmt.Errorf("failed to start audio stream: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	frameCh := make(chan []int16, 32)
	errCh := make(chan error, 8)

	go r.capture(runCtx, stream, in, frameCh, errCh)

	return frameCh, errCh, nil
}

func (r *Recorder) capture(ctx context.Context, stream *portaudio.Stream, in []int16, frameCh chan<- []int16, errCh chan<- error) {
	defer func() {
		if err := stream.Stop(); err != nil {
			log.Printf("Recording: error stopping stream: %v", err)
		}
		if err := stream.Close(); err != nil {
			log.Printf("Recording: error closing stream: %v", err)
		}
		portaudio.Terminate()
		close(frameCh)
		close(errCh)
		close(r.done)
	}()

	deadline := time.NewTimer(r.config.MaxDuration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			log.Printf("Recording: maximum duration %v reached, stopping", r.config.MaxDuration)
			return
		default:
		}

		if err := stream.Read(); err != nil {
			select {
			case errCh <- fmt.Errorf("audio stream read error: %w", err):
			default:
				log.Printf("Recording: error channel full, dropping error: %v", err)
			}
			continue
		}

		// stream.Read reuses the buffer, copy before handing it off
		frame := make([]int16, len(in))
		copy(frame, in)

		select {
		case frameCh <- frame:
		case <-ctx.Done():
			return
		default:
			log.Printf("Recording: frame channel full, dropping %d samples", len(frame))
		}
	}
}

// Stop ends the capture. Safe to call multiple times; returns after the
// capture goroutine has released the audio device.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		cancel := r.cancel
		r.mu.Unlock()
		if cancel != nil {
			cancel()
			<-r.done
		}
	})
}
