package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// IssueCloser closes issues that stayed resolved longer than after.
type IssueCloser interface {
	AutoClose(ctx context.Context, after time.Duration) (int, error)
}

// TokenCleaner removes expired and revoked refresh tokens.
type TokenCleaner interface {
	CleanupExpiredTokens() (int64, error)
}

// AutoCloseJob periodically closes stale resolved issues and prunes dead
// refresh tokens.
type AutoCloseJob struct {
	issues   IssueCloser
	tokens   TokenCleaner
	after    time.Duration
	interval time.Duration
	logger   *zap.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAutoCloseJob creates the job. tokens may be nil.
func NewAutoCloseJob(issues IssueCloser, tokens TokenCleaner, after, interval time.Duration, logger *zap.Logger) *AutoCloseJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AutoCloseJob{
		issues:   issues,
		tokens:   tokens,
		after:    after,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the job
func (j *AutoCloseJob) Start() {
	j.wg.Add(1)
	go j.run()
	j.logger.Info("🚀 Auto-close job started",
		zap.Duration("after", j.after),
		zap.Duration("interval", j.interval))
}

// Stop stops the job and waits for a running pass to finish
func (j *AutoCloseJob) Stop() {
	j.stopOnce.Do(func() { close(j.stopChan) })
	j.wg.Wait()
	j.logger.Info("🛑 Auto-close job stopped")
}

func (j *AutoCloseJob) run() {
	defer j.wg.Done()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-j.stopChan
		cancel()
	}()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			j.RunOnce(ctx)
		case <-j.stopChan:
			return
		}
	}
}

// RunOnce performs a single pass.
func (j *AutoCloseJob) RunOnce(ctx context.Context) {
	if j.after > 0 {
		n, err := j.issues.AutoClose(ctx, j.after)
		if err != nil && ctx.Err() == nil {
			j.logger.Error("❌ Error auto-closing issues", zap.Error(err))
		} else if n > 0 {
			j.logger.Info("⏰ Closed stale resolved issues", zap.Int("count", n))
		}
	}

	if j.tokens != nil {
		removed, err := j.tokens.CleanupExpiredTokens()
		if err != nil {
			j.logger.Error("❌ Error cleaning refresh tokens", zap.Error(err))
		} else if removed > 0 {
			j.logger.Info("🧹 Removed dead refresh tokens", zap.Int64("count", removed))
		}
	}
}
