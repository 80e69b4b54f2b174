// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"invoice-architect/internal/core"
	"invoice-architect/internal/invoice"
	"invoice-architect/internal/observability"
	"invoice-architect/internal/preprocessors"
)

// WorkerPool imports several files concurrently. Every job is merged into
// the same starting invoice, so results are independent of each other.
type WorkerPool struct {
	workers  int
	importer *core.Importer
	current  invoice.Invoice
	jobs     chan *Job
	results  chan *Result
	wg       sync.WaitGroup
	observer *observability.StandardObserver
}

// Job represents one file to import
type Job struct {
	JobID  int
	Source preprocessors.Source
}

// Result represents the outcome of one job
type Result struct {
	JobID    int
	Name     string
	Import   *core.ImportResult
	Error    error
	Duration time.Duration
}

// NewWorkerPool creates a pool. workers <= 0 selects one per CPU.
func NewWorkerPool(workers int, importer *core.Importer, current invoice.Invoice, observer *observability.StandardObserver) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &WorkerPool{
		workers:  workers,
		importer: importer,
		current:  current,
		jobs:     make(chan *Job, workers*2),
		results:  make(chan *Result, workers*2),
		observer: observer,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Submit adds a job to the queue. It gives up when ctx is done.
func (wp *WorkerPool) Submit(ctx context.Context, job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stop closes the queue, waits for the workers and closes Results.
func (wp *WorkerPool) Stop() {
	close(wp.jobs)
	wp.wg.Wait()
	close(wp.results)
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		wp.results <- wp.processJob(ctx, job, id)
	}
}

func (wp *WorkerPool) processJob(ctx context.Context, job *Job, workerID int) *Result {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", "process_job", job.Source.Name)
	}

	res, err := wp.importer.Import(ctx, job.Source, wp.current)
	duration := time.Since(start)

	if finishTiming != nil {
		finishTiming(err == nil, map[string]interface{}{
			"worker_id":   workerID,
			"duration_ms": duration.Milliseconds(),
			"had_error":   err != nil,
		})
	}

	return &Result{
		JobID:    job.JobID,
		Name:     job.Source.Name,
		Import:   res,
		Error:    err,
		Duration: duration,
	}
}

// ImportAll imports sources with a pool of workers and returns the results
// in input order. Sources not yet queued when ctx is done get no result.
func ImportAll(ctx context.Context, importer *core.Importer, current invoice.Invoice, sources []preprocessors.Source, workers int, observer *observability.StandardObserver) []*Result {
	if workers > len(sources) {
		workers = len(sources)
	}
	wp := NewWorkerPool(workers, importer, current, observer)
	wp.Start(ctx)

	go func() {
		defer wp.Stop()
		for i, src := range sources {
			if !wp.Submit(ctx, &Job{JobID: i, Source: src}) {
				return
			}
		}
	}()

	results := make([]*Result, 0, len(sources))
	for r := range wp.Results() {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].JobID < results[j].JobID })
	return results
}
