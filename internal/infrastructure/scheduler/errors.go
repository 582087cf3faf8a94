package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrRunInProgress is returned when a trigger overlaps a running backfill
	ErrRunInProgress = errors.New("backfill run already in progress")
)
