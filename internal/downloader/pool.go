package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dyscraper/pkg/logger"
	"dyscraper/pkg/models"
)

// CreatorJob is one creator to crawl
type CreatorJob struct {
	Index   int
	Creator models.Creator
}

// CreatorResult is the outcome of one creator job
type CreatorResult struct {
	Job      CreatorJob
	Error    error
	Duration time.Duration
}

// Processor crawls a single creator
type Processor func(ctx context.Context, job CreatorJob) error

// WorkerPool runs creator jobs on a bounded number of workers
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan CreatorJob
	resultQueue chan CreatorResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	process     Processor
	logger      logger.Logger
}

// NewWorkerPool creates a pool bound to parent; cancelling parent makes
// workers drain the queue without running further jobs
func NewWorkerPool(parent context.Context, numWorkers int, process Processor, log logger.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	ctx, cancel := context.WithCancel(parent)

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan CreatorJob, numWorkers*2),
		resultQueue: make(chan CreatorResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		process:     process,
		logger:      log,
	}
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	wp.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for in-flight jobs and closes Results
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Debug("Worker pool stopped")
}

// Submit queues a job. It blocks while the queue is full.
func (wp *WorkerPool) Submit(job CreatorJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results yields one result per accepted job. It must be drained
// concurrently with Submit.
func (wp *WorkerPool) Results() <-chan CreatorResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		var result CreatorResult
		if err := wp.ctx.Err(); err != nil {
			result = CreatorResult{Job: job, Error: err}
		} else {
			result = wp.processJob(job, id)
		}
		wp.resultQueue <- result
	}
}

func (wp *WorkerPool) processJob(job CreatorJob, workerID int) CreatorResult {
	start := time.Now()
	wp.logger.DebugWithFields("Worker processing creator", map[string]interface{}{
		"worker_id": workerID,
		"creator":   job.Creator.Name,
	})

	err := wp.process(wp.ctx, job)
	return CreatorResult{Job: job, Error: err, Duration: time.Since(start)}
}

// GetQueueSize returns the number of queued jobs
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the worker count
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}
