package utils

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"certhub/database"
	"certhub/models"
	certModels "certhub/models/certificate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func makeItems(n int, run func(i int) error) []BatchItem {
	items := make([]BatchItem, n)
	for i := 0; i < n; i++ {
		i := i
		items[i] = BatchItem{Key: fmt.Sprintf("item-%d", i), Run: func() error { return run(i) }}
	}
	return items
}

func TestRunBatchChunking(t *testing.T) {
	var mu sync.Mutex
	var inFlight, maxInFlight int

	items := makeItems(7, func(int) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	})

	result := RunBatch(items, BatchOptions{ChunkSize: 5})

	assert.Equal(t, 7, result.Total)
	assert.Equal(t, 7, result.Processed)
	assert.Equal(t, 7, result.Successful)
	assert.Equal(t, 0, result.Failed)
	// Two chunks: 5 then 2. Concurrency never exceeds the chunk size.
	assert.LessOrEqual(t, maxInFlight, 5)
	assert.Equal(t, 5, maxInFlight)
}

func TestRunBatchCapturesFailuresWithoutShortCircuit(t *testing.T) {
	items := makeItems(7, func(i int) error {
		if i%2 == 0 {
			return errors.New("boom")
		}
		return nil
	})

	result := RunBatch(items, BatchOptions{ChunkSize: 5})

	assert.Equal(t, 7, result.Processed)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 4, result.Failed)
	assert.Equal(t, "boom", result.Errors["item-0"])
	assert.True(t, result.Succeeded(), "partial success is overall success")
}

func TestRunBatchAllFailedStillProcessed(t *testing.T) {
	items := makeItems(3, func(int) error { return errors.New("down") })
	result := RunBatch(items, BatchOptions{ChunkSize: 5})
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 3, result.Failed)
	assert.True(t, result.Succeeded()) // processed > 0 is the contract
}

func TestRunBatchContainsItemPanic(t *testing.T) {
	items := makeItems(3, func(i int) error {
		if i == 1 {
			panic("corrupt template asset")
		}
		return nil
	})

	result := RunBatch(items, BatchOptions{ChunkSize: 5})

	// A panicking item is one more failure, not a dead process.
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Errors["item-1"], "corrupt template asset")
}

func TestRunBatchRetryBackoff(t *testing.T) {
	var attempts int32
	var delays []time.Duration
	var mu sync.Mutex

	items := []BatchItem{{
		Key: "flaky",
		Run: func() error {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return errors.New("transient")
			}
			return nil
		},
	}}

	result := RunBatch(items, BatchOptions{
		ChunkSize:   5,
		MaxRetries:  2,
		BackoffBase: time.Second,
		Sleep: func(d time.Duration) {
			mu.Lock()
			delays = append(delays, d)
			mu.Unlock()
		},
	})

	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, int32(3), attempts)
	require.Len(t, delays, 2)
	assert.Equal(t, time.Second, delays[0])
	assert.Equal(t, 2*time.Second, delays[1])
}

func TestRunBatchRetryExhausted(t *testing.T) {
	var attempts int32
	items := []BatchItem{{
		Key: "dead",
		Run: func() error {
			atomic.AddInt32(&attempts, 1)
			return errors.New("permanent")
		},
	}}

	result := RunBatch(items, BatchOptions{
		ChunkSize:   5,
		MaxRetries:  2,
		BackoffBase: time.Millisecond,
		Sleep:       func(time.Duration) {},
	})

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, int32(3), attempts) // first try + 2 retries
	assert.Equal(t, "permanent", result.Errors["dead"])
}

func TestRunBatchChunkDelayBetweenChunksOnly(t *testing.T) {
	var delays []time.Duration
	items := makeItems(7, func(int) error { return nil })

	RunBatch(items, BatchOptions{
		ChunkSize:  5,
		ChunkDelay: time.Second,
		Sleep:      func(d time.Duration) { delays = append(delays, d) },
	})

	// One delay between the two chunks, none after the final chunk.
	require.Len(t, delays, 1)
	assert.Equal(t, time.Second, delays[0])
}

func TestRunNamedBatchLifecycle(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:namedbatch?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&certModels.BatchOperation{}, &models.AuditLog{}))
	database.Database = database.DbInstance{Db: db}

	items := makeItems(4, func(i int) error {
		if i == 3 {
			return errors.New("late failure")
		}
		return nil
	})

	op, result, err := RunNamedBatch("march-roster", items, BatchOptions{ChunkSize: 5})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 1, result.Failed)

	var stored certModels.BatchOperation
	require.NoError(t, db.First(&stored, op.ID).Error)
	assert.Equal(t, certModels.BatchCompleted, stored.Status)
	assert.Equal(t, 4, stored.TotalCertificates)
	assert.Equal(t, 4, stored.ProcessedCertificates)
	assert.Equal(t, 3, stored.Successful)
	assert.Equal(t, 1, stored.Failed)
	assert.NotNil(t, stored.CompletedAt)
	assert.NotEmpty(t, stored.BatchUID)
}

func TestRunBatchOperationFinalizeFailureLogged(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&certModels.BatchOperation{}, &models.AuditLog{}))
	database.Database = database.DbInstance{Db: db}

	op, err := CreateBatchOperation("doomed-bookkeeping", 1)
	require.NoError(t, err)

	// Losing the table makes both the finalize Save and the failed-status
	// writeback error out; the result must still come back intact.
	require.NoError(t, db.Migrator().DropTable(&certModels.BatchOperation{}))

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	result, err := RunBatchOperation(op, makeItems(1, func(int) error { return nil }), BatchOptions{ChunkSize: 5})
	require.Error(t, err)
	assert.Equal(t, 1, result.Successful)
	assert.Contains(t, buf.String(), "finalize failed")
	assert.Contains(t, buf.String(), "failed-status writeback failed")
}
