// internal/app/system/workers/transcriptsync.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scribeworks/scribehub/internal/app/system/transcriptproc"
)

// TranscriptSync is a background worker that periodically runs the
// transcript pipeline over every active configuration.
type TranscriptSync struct {
	processor *transcriptproc.Processor
	log       *zap.Logger
	interval  time.Duration
	timeout   time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewTranscriptSync creates a new transcript sync worker.
//
// Parameters:
//   - processor: the transcript pipeline
//   - logger: zap logger for logging
//   - interval: how often to poll providers (e.g., 15 minutes)
func NewTranscriptSync(processor *transcriptproc.Processor, logger *zap.Logger, interval time.Duration) *TranscriptSync {
	return &TranscriptSync{
		processor: processor,
		log:       logger,
		interval:  interval,
		timeout:   10 * time.Minute,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background sync loop.
func (w *TranscriptSync) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("transcript sync worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *TranscriptSync) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("transcript sync worker stopped")
}

func (w *TranscriptSync) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sync()
		}
	}
}

func (w *TranscriptSync) sync() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.processor.Run(ctx); err != nil {
		w.log.Error("transcript sync run failed", zap.Error(err))
	}
}
