package daemon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/diogovalada/whisper-writer/internal/bus"
	"github.com/diogovalada/whisper-writer/internal/config"
	"github.com/diogovalada/whisper-writer/internal/input"
	"github.com/diogovalada/whisper-writer/internal/notify"
	"github.com/diogovalada/whisper-writer/internal/pipeline"
)

type Daemon struct {
	mu        sync.RWMutex
	notifier  notify.Notifier
	configMgr *config.Manager
	simulator *input.Simulator

	ctx    context.Context
	cancel context.CancelFunc

	pipeline pipeline.Pipeline

	wg sync.WaitGroup
}

func New() (*Daemon, error) {
	configMgr, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	conf := configMgr.GetConfig()

	sim, err := input.NewSimulator(conf.ToInputConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create input simulator: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	n := notify.GetNotifierBasedOnConfig(conf)

	d := &Daemon{
		notifier:  n,
		configMgr: configMgr,
		simulator: sim,
		ctx:       ctx,
		cancel:    cancel,
	}

	return d, nil
}

func (d *Daemon) onConfigReload() {
	log.Printf("Config reloaded, restarting pipeline")
	d.stopPipeline()

	d.notifier.Notify("Whisper Writer", "Config Reloaded")

	conf := d.configMgr.GetConfig()

	// Rebuild the simulator so method and tool changes take effect.
	// The old one may hold a helper process that needs releasing first.
	sim, err := input.NewSimulator(conf.ToInputConfig())
	if err != nil {
		log.Printf("Daemon: failed to rebuild input simulator, keeping previous one: %v", err)
	}

	d.mu.Lock()
	d.notifier = notify.GetNotifierBasedOnConfig(conf)
	if err == nil {
		old := d.simulator
		d.simulator = sim
		d.mu.Unlock()
		if cleanupErr := old.Cleanup(); cleanupErr != nil {
			log.Printf("Daemon: error cleaning up previous input simulator: %v", cleanupErr)
		}
		return
	}
	d.mu.Unlock()
}

func (d *Daemon) getSimulator() *input.Simulator {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.simulator
}

func (d *Daemon) status() pipeline.Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.pipeline == nil {
		return pipeline.Idle
	}
	return d.pipeline.Status()
}

func (d *Daemon) stopPipeline() {
	d.mu.Lock()
	p := d.pipeline
	d.pipeline = nil
	d.mu.Unlock()

	if p != nil {
		p.Stop()
	}
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	d.configMgr.SetOnConfigReload(d.onConfigReload)

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	defer func() {
		if err := d.getSimulator().Cleanup(); err != nil {
			log.Printf("Daemon: error cleaning up input simulator: %v", err)
		}
	}()

	if err := d.configMgr.StartWatching(d.ctx); err != nil {
		log.Printf("Warning: failed to start config file watching: %v", err)
	}
	defer d.configMgr.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully", sig)
		d.cancel()
	}()

	go func() {
		<-d.ctx.Done()
		if err := ln.Close(); err != nil {
			log.Printf("Error closing listener: %v", err)
		}
	}()

	log.Printf("Daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested, waiting for connections to finish")
				d.wg.Wait()
				return nil
			}
			log.Printf("Accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}
		d.wg.Add(1)
		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()
	defer d.wg.Done()

	reader := bufio.NewReader(c)
	cmd, err := reader.ReadByte()
	if err != nil {
		log.Printf("Client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}

	switch cmd {
	case 't':
		d.toggle()
		fmt.Fprint(c, "OK toggled\n")
	case 'c':
		d.cancelPipeline()
		fmt.Fprint(c, "OK cancelled\n")
	case 's':
		status := d.status()
		fmt.Fprintf(c, "STATUS status=%s\n", status)
	case 'v':
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case 'i':
		d.insert(c, reader)
	case 'q':
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("Unknown command: %c", cmd)
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

// insert reads the rest of the stream as literal text and delivers it
// through the configured input method.
func (d *Daemon) insert(c net.Conn, reader *bufio.Reader) {
	data, err := io.ReadAll(reader)
	if err != nil {
		log.Printf("Insert read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(data) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	if err := d.getSimulator().Typewrite(string(data)); err != nil {
		log.Printf("Insert error: %v", err)
		fmt.Fprintf(c, "ERR insert_failed: %v\n", err)
		return
	}
	fmt.Fprint(c, "OK inserted\n")
}

func (d *Daemon) toggle() {
	switch d.status() {
	case pipeline.Idle:
		config := d.configMgr.GetConfig()

		p := pipeline.New(config, d.getSimulator())
		p.Run(d.ctx)

		d.mu.Lock()
		d.pipeline = p
		d.mu.Unlock()

		go d.notifier.Notify("Whisper Writer", "Recording Started")
		go d.monitorPipelineErrors(p)

	case pipeline.Recording:
		d.stopPipeline()
		go d.notifier.Error("Recording Aborted")

	case pipeline.Transcribing:
		d.mu.RLock()
		if d.pipeline != nil {
			actionChan := d.pipeline.GetActionCh()
			log.Printf("Daemon: Sending insert action to pipeline")
			d.mu.RUnlock()
			actionChan <- pipeline.Insert
		} else {
			d.mu.RUnlock()
		}
		go d.notifier.Notify("Whisper Writer", "Recording Ended... Transcribing")

	case pipeline.Inserting:
		d.stopPipeline()
		go d.notifier.Error("Insertion Aborted")
	}
}

func (d *Daemon) cancelPipeline() {
	switch d.status() {
	case pipeline.Idle:
		log.Printf("Daemon: Cancel requested but pipeline is idle, ignoring")
	default:
		d.stopPipeline()
		go d.notifier.Notify("Whisper Writer", "Operation Cancelled")
	}
}

func (d *Daemon) monitorPipelineErrors(p pipeline.Pipeline) {
	errorCh := p.GetErrorCh()
	for {
		select {
		case pipelineErr := <-errorCh:
			message := pipelineErr.Message

			if pipelineErr.Err != nil {
				message = fmt.Sprintf("%s: %v", message, pipelineErr.Err)
			}

			d.notifier.Error(message)
		case <-d.ctx.Done():
			return
		}
	}
}
