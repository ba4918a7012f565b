package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/draymottishaw/college-assisted-explorer/internal/service"
)

// Reloader rederives the served dataset. *service.DatasetService satisfies it.
type Reloader interface {
	Reload(ctx context.Context) (*service.ReloadResult, error)
}

// Orchestrator reruns the derivation on a schedule so new source files are
// picked up without a restart.
type Orchestrator struct {
	reloader Reloader
	config   *Config
	log      *logrus.Entry
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu          sync.Mutex
	lastReload  time.Time
	lastError   string
	reloadCount int
}

// Config holds scheduler configuration
type Config struct {
	ReloadInterval  time.Duration // 0 disables interval reloads
	DailyReloadHour int           // -1 disables the daily reload
	MaxRetries      int           // Default: 3
	RetryDelay      time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		ReloadInterval:  0,
		DailyReloadHour: -1,
		MaxRetries:      3,
		RetryDelay:      5 * time.Second,
	}
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(reloader Reloader, config *Config, log *logrus.Entry) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 1
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Orchestrator{
		reloader: reloader,
		config:   config,
		log:      log,
	}
}

// Enabled reports whether any schedule is configured.
func (o *Orchestrator) Enabled() bool {
	return o.config.ReloadInterval > 0 || o.validHour()
}

func (o *Orchestrator) validHour() bool {
	return o.config.DailyReloadHour >= 0 && o.config.DailyReloadHour < 24
}

// Start launches the configured schedules and returns immediately.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)

	o.log.WithFields(logrus.Fields{
		"interval":   o.config.ReloadInterval.String(),
		"daily_hour": o.config.DailyReloadHour,
	}).Info("Reload scheduler starting")

	if o.config.ReloadInterval > 0 {
		o.wg.Add(1)
		go o.runIntervalReload(ctx)
	}
	if o.validHour() {
		o.wg.Add(1)
		go o.runDailyReload(ctx)
	}
}

func (o *Orchestrator) runIntervalReload(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.config.ReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.log.Debug("Interval reload stopped")
			return
		case <-ticker.C:
			o.reloadWithRetry(ctx)
		}
	}
}

func (o *Orchestrator) runDailyReload(ctx context.Context) {
	defer o.wg.Done()

	for {
		nextRun := nextDailyRun(time.Now(), o.config.DailyReloadHour)
		wait := time.Until(nextRun)
		o.log.Infof("Next daily reload: %s (in %v)", nextRun.Format("2006-01-02 15:04:05"), wait.Round(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			o.log.Debug("Daily reload stopped")
			return
		case <-timer.C:
			o.reloadWithRetry(ctx)
		}
	}
}

// nextDailyRun returns the next time at hour:00 strictly after now.
func nextDailyRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// reloadWithRetry reloads, retrying up to MaxRetries times.
func (o *Orchestrator) reloadWithRetry(ctx context.Context) {
	var err error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		var res *service.ReloadResult
		res, err = o.reloader.Reload(ctx)
		if err == nil {
			o.record(nil)
			o.log.WithField("populations", res.Summary.Populations).Info("✓ Scheduled reload complete")
			return
		}

		o.log.WithError(err).Warnf("⚠️  Reload attempt %d/%d failed", attempt, o.config.MaxRetries)
		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.config.RetryDelay):
			}
		}
	}

	o.record(err)
	o.log.WithError(err).Errorf("All %d reload attempts failed, keeping the current snapshot", o.config.MaxRetries)
}

func (o *Orchestrator) record(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.lastError = err.Error()
		return
	}
	o.lastReload = time.Now()
	o.lastError = ""
	o.reloadCount++
}

// TriggerReload reloads immediately, outside the schedule.
func (o *Orchestrator) TriggerReload(ctx context.Context) error {
	_, err := o.reloader.Reload(ctx)
	o.record(err)
	return err
}

// Stop cancels every schedule and waits for a running reload to finish.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
	o.log.Info("✓ Reload scheduler stopped")
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	status := map[string]interface{}{
		"reload_interval":   o.config.ReloadInterval.String(),
		"daily_reload_hour": o.config.DailyReloadHour,
		"reloads":           o.reloadCount,
	}
	if !o.lastReload.IsZero() {
		status["last_reload"] = o.lastReload.UTC().Format(time.RFC3339)
	}
	if o.lastError != "" {
		status["last_error"] = o.lastError
	}
	return status
}
