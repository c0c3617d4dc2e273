package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/kodefactor/accounts/internal/accounts/store"
)

// HousekeepingService periodically clears verification codes that expired
// without being used.
type HousekeepingService struct {
	Accounts store.Accounts
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(accounts store.Accounts, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Accounts: accounts,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one sweep and returns the number of accounts touched.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	n, err := s.Accounts.ClearExpiredVerificationCodes(ctx, s.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to clear expired verification codes", "error", err)
		return 0
	}
	s.Logger.Info("housekeeping cleanup completed", "cleared_codes", n)
	return n
}
