package runtime

import (
	"sync/atomic"
	"time"
)

// StorageMetrics counts reads and batch commits observed by the store.
type StorageMetrics struct {
	reads, readBytes                             atomic.Uint64
	commits, commitOps, commitBytes, commitNanos atomic.Uint64
}

// StorageStats is a point-in-time copy of StorageMetrics.
type StorageStats struct {
	Reads       uint64        `json:"reads"`
	ReadBytes   uint64        `json:"read_bytes"`
	Commits     uint64        `json:"commits"`
	CommitOps   uint64        `json:"commit_ops"`
	CommitBytes uint64        `json:"commit_bytes"`
	CommitTime  time.Duration `json:"commit_time_ns"`
}

func (m *StorageMetrics) ObserveRead(_ time.Duration, bytes int) {
	m.reads.Add(1)
	m.readBytes.Add(uint64(bytes))
}

func (m *StorageMetrics) ObserveBatchCommit(elapsed time.Duration, numOps int, bytes int) {
	m.commits.Add(1)
	m.commitOps.Add(uint64(numOps))
	m.commitBytes.Add(uint64(bytes))
	m.commitNanos.Add(uint64(elapsed))
}

// Snapshot copies the counters.
func (m *StorageMetrics) Snapshot() StorageStats {
	return StorageStats{
		Reads:       m.reads.Load(),
		ReadBytes:   m.readBytes.Load(),
		Commits:     m.commits.Load(),
		CommitOps:   m.commitOps.Load(),
		CommitBytes: m.commitBytes.Load(),
		CommitTime:  time.Duration(m.commitNanos.Load()),
	}
}
