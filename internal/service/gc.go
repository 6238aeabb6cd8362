package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BlobGarbageCollector removes stored blobs referenced by no image row.
// Orphans appear when a blob write succeeds but the image insert rolls back,
// or when a scheduled blob deletion is lost to a crash. It compares the blob
// store's contents against database locations and deletes the difference.
type BlobGarbageCollector struct {
	storage         GCStorage
	blobs           GCBlobStorage
	safetyThreshold time.Duration
	logger          *slog.Logger

	mu        sync.Mutex
	lastStats GCStats
}

// GCStats tracks metrics from the last collection run.
type GCStats struct {
	RanAt          time.Time
	BlobsScanned   int
	Orphaned       int
	Deleted        int
	DurationMs     int64
	Errors         []string
}

// GCStorage is the database side: every blob location any image row still
// references.
type GCStorage interface {
	GetAllBlobLocations(ctx context.Context) ([]string, error)
}

// GCBlobStorage is the blob store side.
type GCBlobStorage interface {
	Walk() ([]string, error)
	ModTime(location string) (time.Time, error)
	Delete(location string) error
}

// NewBlobGarbageCollector creates a collector. safetyThreshold is the
// minimum age a blob must have before deletion, so a blob written just ahead
// of its not-yet-committed image row is never collected.
func NewBlobGarbageCollector(storage GCStorage, blobs GCBlobStorage, safetyThreshold time.Duration) *BlobGarbageCollector {
	return &BlobGarbageCollector{
		storage:         storage,
		blobs:           blobs,
		safetyThreshold: safetyThreshold,
		logger:          slog.Default(),
	}
}

// StartBackgroundCleanup runs collection on a ticker until ctx is cancelled.
func (gc *BlobGarbageCollector) StartBackgroundCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	gc.logger.Info("started blob garbage collector", "interval", interval, "safety_threshold", gc.safetyThreshold)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.RunCleanup(ctx); err != nil {
					gc.logger.Error("blob gc cycle failed", "error", err)
					continue
				}
				stats := gc.LastStats()
				gc.logger.Info("blob gc completed",
					"scanned", stats.BlobsScanned,
					"orphaned", stats.Orphaned,
					"deleted", stats.Deleted,
					"duration_ms", stats.DurationMs,
					"errors", len(stats.Errors),
				)
			case <-ctx.Done():
				gc.logger.Info("blob gc shutting down")
				return
			}
		}
	}()
}

// RunCleanup executes a single collection cycle. Exposed for tests and
// manual maintenance.
func (gc *BlobGarbageCollector) RunCleanup(ctx context.Context) error {
	start := time.Now()
	stats := GCStats{RanAt: start}

	referenced, err := gc.storage.GetAllBlobLocations(ctx)
	if err != nil {
		return err
	}
	referencedSet := make(map[string]struct{}, len(referenced))
	for _, loc := range referenced {
		referencedSet[loc] = struct{}{}
	}

	stored, err := gc.blobs.Walk()
	if err != nil {
		return err
	}
	stats.BlobsScanned = len(stored)

	cutoff := start.Add(-gc.safetyThreshold)
	for _, loc := range stored {
		if _, ok := referencedSet[loc]; ok {
			continue
		}
		stats.Orphaned++

		modTime, err := gc.blobs.ModTime(loc)
		if err != nil {
			stats.Errors = append(stats.Errors, err.Error())
			continue
		}
		if modTime.After(cutoff) {
			// Too fresh: may belong to an upload whose row has not committed.
			continue
		}

		if err := gc.blobs.Delete(loc); err != nil {
			stats.Errors = append(stats.Errors, err.Error())
			continue
		}
		stats.Deleted++
	}

	stats.DurationMs = time.Since(start).Milliseconds()
	gc.mu.Lock()
	gc.lastStats = stats
	gc.mu.Unlock()
	return nil
}

// LastStats returns the stats from the most recent completed cycle.
func (gc *BlobGarbageCollector) LastStats() GCStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.lastStats
}
