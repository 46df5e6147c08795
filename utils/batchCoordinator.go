package utils

import (
	"fmt"
	"log"
	"sync"
	"time"

	"certhub/database"
	"certhub/models"
	certModels "certhub/models/certificate"

	"github.com/google/uuid"
)

// BatchItem is one unit of work in a batch run: a stable key for error
// reporting plus the operation itself.
type BatchItem struct {
	Key string
	Run func() error
}

// BatchOptions controls chunking and the per-item retry policy. All values
// come from config in production paths; tests inject their own.
type BatchOptions struct {
	ChunkSize   int
	ChunkDelay  time.Duration // pause between chunks, zero for none
	MaxRetries  int           // additional attempts after the first failure
	BackoffBase time.Duration // delay before retry n is BackoffBase << (n-1)
	Sleep       func(time.Duration)
}

// BatchResult aggregates per-item outcomes. Partial success counts as
// overall success: Succeeded() is true whenever anything was processed.
type BatchResult struct {
	Total      int
	Processed  int
	Successful int
	Failed     int
	Errors     map[string]string
}

// Succeeded reports the batch-level outcome. A batch with any processed
// item succeeds even if individual items failed.
func (r BatchResult) Succeeded() bool {
	return r.Processed > 0
}

// RunBatch partitions items into consecutive chunks of ChunkSize and runs
// each chunk's items concurrently, waiting for every item to settle before
// the next chunk starts. Item failures are captured, never short-circuited.
func RunBatch(items []BatchItem, opts BatchOptions) BatchResult {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}

	result := BatchResult{Total: len(items), Errors: make(map[string]string)}
	var mu sync.Mutex

	for start := 0; start < len(items); start += opts.ChunkSize {
		end := start + opts.ChunkSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		var wg sync.WaitGroup
		for _, item := range chunk {
			wg.Add(1)
			go func(item BatchItem) {
				defer wg.Done()
				err := runWithRetry(item, opts)

				mu.Lock()
				defer mu.Unlock()
				result.Processed++
				if err != nil {
					result.Failed++
					result.Errors[item.Key] = err.Error()
				} else {
					result.Successful++
				}
			}(item)
		}
		wg.Wait()

		if opts.ChunkDelay > 0 && end < len(items) {
			opts.Sleep(opts.ChunkDelay)
		}
	}

	return result
}

// runItem runs the item once, converting a panic into an item failure so a
// bad item can never take down the batch goroutine.
func runItem(item BatchItem) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return item.Run()
}

// runWithRetry runs one item with up to MaxRetries additional attempts,
// backing off exponentially before each retry.
func runWithRetry(item BatchItem, opts BatchOptions) error {
	var err error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			opts.Sleep(opts.BackoffBase << (attempt - 1))
		}
		if err = runItem(item); err == nil {
			return nil
		}
		if opts.MaxRetries > 0 && attempt < opts.MaxRetries {
			log.Printf("[BATCH] Item %s attempt %d failed: %v", item.Key, attempt+1, err)
		}
	}
	return err
}

// CreateBatchOperation inserts the IN_PROGRESS tracking row for a bulk run.
// Callers poll this row for progress while the work runs in the background.
func CreateBatchOperation(name string, total int) (*certModels.BatchOperation, error) {
	op := certModels.BatchOperation{
		BatchUID:          uuid.NewString(),
		Name:              name,
		TotalCertificates: total,
		Status:            certModels.BatchInProgress,
	}
	if err := database.Database.Db.Create(&op).Error; err != nil {
		return nil, err
	}

	Audit(models.AuditBatchStarted, "batch_operation", op.ID, map[string]interface{}{
		"name": name, "total": total,
	})
	return &op, nil
}

// RunNamedBatch creates a BatchOperation row and drives the batch to
// completion synchronously. HTTP handlers create the row themselves and run
// RunBatchOperation in a goroutine instead.
func RunNamedBatch(name string, items []BatchItem, opts BatchOptions) (*certModels.BatchOperation, BatchResult, error) {
	op, err := CreateBatchOperation(name, len(items))
	if err != nil {
		return nil, BatchResult{}, err
	}
	result, err := RunBatchOperation(op, items, opts)
	return op, result, err
}

// RunBatchOperation runs the items and finalizes the BatchOperation row
// COMPLETED with the result counts. The row is marked FAILED only when the
// orchestration itself errors, never for individual item failures.
func RunBatchOperation(op *certModels.BatchOperation, items []BatchItem, opts BatchOptions) (BatchResult, error) {
	result := RunBatch(items, opts)

	now := time.Now()
	op.ProcessedCertificates = result.Processed
	op.Successful = result.Successful
	op.Failed = result.Failed
	op.Status = certModels.BatchCompleted
	op.CompletedAt = &now
	if err := database.Database.Db.Save(op).Error; err != nil {
		// The work itself is done; only the bookkeeping failed.
		log.Printf("[BATCH] %s finalize failed: %v", op.Name, err)
		op.Status = certModels.BatchFailed
		if updErr := database.Database.Db.Model(op).Update("status", certModels.BatchFailed).Error; updErr != nil {
			log.Printf("[BATCH] %s failed-status writeback failed: %v", op.Name, updErr)
		}
		return result, err
	}

	Audit(models.AuditBatchCompleted, "batch_operation", op.ID, map[string]interface{}{
		"successful": result.Successful, "failed": result.Failed,
	})

	log.Printf("[BATCH] %s completed: %d/%d successful, %d failed", op.Name, result.Successful, result.Total, result.Failed)
	return result, nil
}
