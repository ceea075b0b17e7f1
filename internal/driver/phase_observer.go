package driver

import "time"

// VariantStatus reports where a variant is in its generation.
type VariantStatus int

const (
	// VariantQueued is sent for every variant before any work starts.
	VariantQueued VariantStatus = iota
	VariantWorking
	VariantDone
	// VariantCached means the variant was read back from the cache.
	VariantCached
	VariantFailed
)

func (s VariantStatus) String() string {
	switch s {
	case VariantQueued:
		return "queued"
	case VariantWorking:
		return "mutating"
	case VariantDone:
		return "done"
	case VariantCached:
		return "cached"
	case VariantFailed:
		return "error"
	}
	return "unknown"
}

// VariantEvent describes a variant status change.
type VariantEvent struct {
	Index   int
	Seed    int64
	Status  VariantStatus
	Applied int
	Elapsed time.Duration
	Err     error
}

// Observer receives variant events emitted during Generate. It is called
// from worker goroutines and must be safe for concurrent use.
type Observer func(VariantEvent)
