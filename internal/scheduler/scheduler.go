package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"profitlens/internal/config"
	"profitlens/internal/domain"
)

// DigestSource produces the per-outlet summaries the jobs report on.
type DigestSource interface {
	Digests(periodDays int) []domain.OutletDigest
}

// Scheduler runs the daily digest jobs.
type Scheduler struct {
	cron   *cron.Cron
	source DigestSource
	logger *zap.Logger
}

// NewScheduler registers the alert and P&L digests in the configured
// timezone. Invalid cron expressions fail here rather than at Start.
func NewScheduler(cfg config.SchedulerConfig, source DigestSource, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone: %w", err)
	}

	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		source: source,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(cfg.AlertDigestCron, s.AlertDigest); err != nil {
		return nil, fmt.Errorf("alert digest schedule %q: %w", cfg.AlertDigestCron, err)
	}
	if _, err := s.cron.AddFunc(cfg.PnLDigestCron, s.ProfitLossDigest); err != nil {
		return nil, fmt.Errorf("pnl digest schedule %q: %w", cfg.PnLDigestCron, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// AlertDigest logs low stock ingredients and margin alerts of every outlet.
func (s *Scheduler) AlertDigest() {
	for _, d := range s.source.Digests(1) {
		if len(d.LowStock) == 0 && len(d.MarginAlerts) == 0 {
			s.logger.Info("alert digest: nothing to report", zap.String("outlet", d.Outlet.Name))
			continue
		}
		names := make([]string, 0, len(d.LowStock))
		for _, ing := range d.LowStock {
			names = append(names, ing.Name)
		}
		s.logger.Warn("alert digest",
			zap.String("outlet", d.Outlet.Name),
			zap.Strings("low_stock", names),
			zap.Int("margin_alerts", len(d.MarginAlerts)),
			zap.Int("unread_notifications", d.Notifications))
	}
}

// ProfitLossDigest logs today's profit and loss of every outlet.
func (s *Scheduler) ProfitLossDigest() {
	for _, d := range s.source.Digests(1) {
		s.logger.Info("profit and loss digest",
			zap.String("outlet", d.Outlet.Name),
			zap.Float64("revenue", d.ProfitLoss.TotalRevenue),
			zap.Float64("gross_profit", d.ProfitLoss.GrossProfit),
			zap.Float64("net_profit", d.ProfitLoss.NetProfit),
			zap.Float64("net_margin", d.ProfitLoss.NetProfitMargin))
	}
}
