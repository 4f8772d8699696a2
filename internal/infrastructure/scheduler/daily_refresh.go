// Package scheduler runs the once-a-day dashboard refresh.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/infrastructure/logger"
)

// RefreshJob rebuilds and caches the dashboards
type RefreshJob interface {
	Refresh(ctx context.Context) error
}

// RefreshJobFunc adapts a function to RefreshJob
type RefreshJobFunc func(ctx context.Context) error

// Refresh calls f
func (f RefreshJobFunc) Refresh(ctx context.Context) error { return f(ctx) }

// DailyRefreshConfig holds configuration for the daily trigger
type DailyRefreshConfig struct {
	// Hour and Minute of the daily run, server local time
	Hour   int
	Minute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration

	// JobTimeout bounds a single attempt
	JobTimeout time.Duration

	// RetryAttempts is the number of extra attempts after a failed run
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultDailyRefreshConfig runs at 08:00
func DefaultDailyRefreshConfig() DailyRefreshConfig {
	return DailyRefreshConfig{
		Hour:          8,
		Minute:        0,
		CheckInterval: time.Minute,
		JobTimeout:    15 * time.Minute,
		RetryAttempts: 2,
		RetryDelay:    5 * time.Minute,
	}
}

// Validate checks ranges and fills in zero durations
func (c *DailyRefreshConfig) Validate() error {
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidConfig, c.Hour, c.Minute)
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Minute
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 15 * time.Minute
	}
	if c.RetryAttempts < 0 {
		c.RetryAttempts = 0
	}
	return nil
}

// ParseRefreshSchedule parses "HH:MM" (24h) into hour and minute
func ParseRefreshSchedule(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
	}
	return hour, minute, nil
}

// DailyRefresh triggers a RefreshJob once per calendar day at the configured time
type DailyRefresh struct {
	config DailyRefreshConfig
	job    RefreshJob
	logger *zap.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	running     bool   // a refresh is executing
	lastRunDate string // date the scheduled run last fired
	lastResult  RunResult
}

// RunResult describes the most recent refresh
type RunResult struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
	Attempts   int           `json:"attempts"`
	Error      string        `json:"error,omitempty"`
}

// NewDailyRefresh creates a new daily trigger
func NewDailyRefresh(config DailyRefreshConfig, job RefreshJob, log *zap.Logger) (*DailyRefresh, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DailyRefresh{
		config: config,
		job:    job,
		logger: log,
		now:    time.Now,
		sleep:  sleepContext,
	}, nil
}

// Start starts the trigger loop
func (d *DailyRefresh) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = true
	d.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.runLoop(ctx)

	d.logger.Info("Daily refresh scheduled",
		zap.String("at", fmt.Sprintf("%02d:%02d", d.config.Hour, d.config.Minute)),
		zap.Duration("check_interval", d.config.CheckInterval),
	)
	return nil
}

// Stop stops the loop and waits for an in-flight run, bounded by ctx
func (d *DailyRefresh) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Daily refresh stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *DailyRefresh) runLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger fires once the clock has passed the configured time on a
// day that has not run yet, so a tick that lands a little late still counts
func (d *DailyRefresh) checkAndTrigger(ctx context.Context) bool {
	now := d.now()
	today := now.Format("2006-01-02")
	due := time.Date(now.Year(), now.Month(), now.Day(), d.config.Hour, d.config.Minute, 0, 0, now.Location())

	d.mu.Lock()
	if d.lastRunDate == today || now.Before(due) || now.Sub(due) >= time.Hour {
		d.mu.Unlock()
		return false
	}
	d.lastRunDate = today
	d.mu.Unlock()

	d.logger.Info("Triggering daily dashboard refresh")
	_, _ = d.RunNow(ctx)
	return true
}

// RunNow runs the job immediately with retries. It returns
// ErrRefreshInProgress when another run is executing.
func (d *DailyRefresh) RunNow(ctx context.Context) (RunResult, error) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return RunResult{}, ErrRefreshInProgress
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	runID := uuid.NewString()
	ctx, log := logger.WithRunID(ctx, d.logger, runID)
	result := RunResult{RunID: runID, StartedAt: d.now()}

	var err error
	for attempt := 0; attempt <= d.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			log.Warn("Retrying dashboard refresh", zap.Int("attempt", attempt+1), zap.Error(err))
			if sleepErr := d.sleep(ctx, d.config.RetryDelay); sleepErr != nil {
				err = sleepErr
				break
			}
		}
		result.Attempts = attempt + 1

		attemptCtx, cancel := context.WithTimeout(ctx, d.config.JobTimeout)
		err = d.job.Refresh(attemptCtx)
		cancel()
		if err == nil {
			break
		}
	}

	result.FinishedAt = d.now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	if err != nil {
		result.Error = err.Error()
		log.Error("Dashboard refresh failed", zap.Int("attempts", result.Attempts), zap.Error(err))
	} else {
		log.Info("Dashboard refresh complete", zap.Duration("duration", result.Duration))
	}

	d.mu.Lock()
	d.lastResult = result
	d.mu.Unlock()

	return result, err
}

// Running reports whether a refresh is executing
func (d *DailyRefresh) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Schedule returns the daily run time as "HH:MM"
func (d *DailyRefresh) Schedule() string {
	return fmt.Sprintf("%02d:%02d", d.config.Hour, d.config.Minute)
}

// LastResult returns the most recent run, zero if none
func (d *DailyRefresh) LastResult() RunResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastResult
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
