package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is one queued document-processing job.
type Task struct {
	DocumentID string
	Data       []byte
	MediaType  string
}

// Queue is an in-process task queue feeding the ingest workers. Uploads
// enqueue; the HTTP response never waits on processing.
type Queue struct {
	mu     sync.Mutex
	tasks  chan Task
	closed bool
}

// NewQueue creates a queue holding up to buffer pending tasks.
func NewQueue(buffer int) *Queue {
	if buffer <= 0 {
		buffer = 64
	}
	return &Queue{tasks: make(chan Task, buffer)}
}

// Enqueue adds a task. It fails when the queue is shut down or full rather
// than blocking the upload request.
func (q *Queue) Enqueue(documentID string, data []byte, mediaType string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("ingest queue is shut down")
	}

	select {
	case q.tasks <- Task{DocumentID: documentID, Data: data, MediaType: mediaType}:
		return nil
	default:
		return fmt.Errorf("ingest queue is full")
	}
}

// Close stops accepting tasks. Workers drain what's already queued.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
}

// Worker consumes ingest tasks and runs the pipeline for each.
type Worker struct {
	queue       *Queue
	pipeline    *Pipeline
	concurrency int
	logger      *slog.Logger

	mu      sync.Mutex
	running bool
	doneCh  chan struct{}
}

// NewWorker creates a worker pool over the given queue.
func NewWorker(queue *Queue, pipeline *Pipeline, concurrency int, logger *slog.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		queue:       queue,
		pipeline:    pipeline,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Start launches the worker goroutines. They run until the queue is closed
// or the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("ingest worker starting", "concurrency", w.concurrency)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(w.doneCh)
	}()
}

// Stop closes the queue and waits for in-flight tasks to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.queue.Close()
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("ingest worker stopped")
}

func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)

	for {
		select {
		case <-ctx.Done():
			w.drain(logger)
			return
		case task, ok := <-w.queue.tasks:
			if !ok {
				return
			}
			w.processTask(ctx, task, logger)
		}
	}
}

// drain marks any tasks still queued at shutdown as FAILED so their
// documents don't sit in PROCESSING across restarts.
func (w *Worker) drain(logger *slog.Logger) {
	ctx := context.Background()
	for {
		select {
		case task, ok := <-w.queue.tasks:
			if !ok {
				return
			}
			logger.Warn("abandoning queued document at shutdown", "document_id", task.DocumentID)
			if err := w.pipeline.Fail(ctx, task.DocumentID); err != nil {
				logger.Error("marking abandoned document failed", "document_id", task.DocumentID, "error", err)
			}
		default:
			return
		}
	}
}

func (w *Worker) processTask(ctx context.Context, task Task, logger *slog.Logger) {
	logger = logger.With("document_id", task.DocumentID)
	logger.Info("processing document")

	start := time.Now()
	// Pipeline failures are recorded on the document row (FAILED); here we
	// only observe them.
	if err := w.pipeline.Process(ctx, task.DocumentID, task.Data, task.MediaType); err != nil {
		logger.Error("document processing failed", "duration", time.Since(start), "error", err)
		return
	}

	logger.Info("document processed", "duration", time.Since(start))
}
