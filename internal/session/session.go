// Package session drives the daily trading lifecycle: pre-market wait,
// trading-window polling, end-of-day liquidation and reporting. A single
// loop owns all mutable state; order submissions are dispatched in the
// background so a slow broker never stalls the polling cadence.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mbocharov/trendtrader/internal/domain"
	"github.com/mbocharov/trendtrader/internal/services/indicators"
)

// pulseInterval is the liveness pulse of the loop. Poll cycles fire on
// configured interval boundaries inside the trading window.
const pulseInterval = time.Minute

const dayLayout = "2006-01-02"

type marketData interface {
	LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	MinuteBars(ctx context.Context, symbol string) ([]domain.Bar, error)
	EquitySnapshot(ctx context.Context) (domain.EquitySnapshot, error)
	MarketOpenToday(ctx context.Context) (bool, error)
}

type orderPort interface {
	SubmitOrder(ctx context.Context, action domain.Action, qty int64) error
	LiquidateAll(ctx context.Context) error
	IdealQuantity(ctx context.Context, price decimal.Decimal) (int64, error)
}

type evaluator interface {
	Decide(price, movingAverage decimal.Decimal, trendStrength float64, position int) domain.Action
}

type alertNotifier interface {
	Send(ctx context.Context, message string) (bool, error)
}

type performanceLog interface {
	DailyReturn(snap domain.EquitySnapshot) (decimal.Decimal, error)
	Append(date time.Time, percent decimal.Decimal) error
	Path() string
}

type reportSync interface {
	Push(localPath string) error
}

// Config bounds the daily session. Window boundaries are minutes since
// midnight in Location.
type Config struct {
	Symbol       string
	Timeframe    int
	TradingStart int
	TradingEnd   int
	CloseStart   int
	CloseEnd     int
	PollInterval time.Duration
	Location     *time.Location

	// OptimisticPositionUpdate keeps the original fire-and-forget policy:
	// the position counter is bumped as soon as an order is dispatched,
	// before its outcome is known. When false, the counter moves only
	// after a submit attempt returns without error.
	OptimisticPositionUpdate bool
}

// Scheduler runs the session state machine.
type Scheduler struct {
	cfg      Config
	market   marketData
	orders   orderPort
	signals  evaluator
	position *domain.Position
	perf     performanceLog
	reports  reportSync
	alerts   alertNotifier
	logger   *zap.Logger

	now func() time.Time

	// market-open check cached per calendar day; primed on first evaluation
	openDay     string
	openToday   bool
	cachePrimed bool

	lastSlot  int
	aliveSent bool
	closedDay string
}

// NewScheduler validates the window configuration and wires dependencies.
func NewScheduler(cfg Config, market marketData, orders orderPort, signals evaluator,
	position *domain.Position, perf performanceLog, reports reportSync,
	alerts alertNotifier, logger *zap.Logger) (*Scheduler, error) {

	if cfg.Symbol == "" {
		return nil, errors.New("symbol is required")
	}
	if cfg.Location == nil {
		return nil, errors.New("session timezone is required")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.Errorf("poll interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.Timeframe < 1 {
		return nil, errors.Errorf("timeframe must be at least 1 minute, got %d", cfg.Timeframe)
	}
	if cfg.TradingStart >= cfg.TradingEnd {
		return nil, errors.New("trading window start must precede its end")
	}
	if cfg.CloseStart >= cfg.CloseEnd {
		return nil, errors.New("close window start must precede its end")
	}
	if cfg.CloseStart < cfg.TradingEnd {
		return nil, errors.New("close window must not overlap the trading window")
	}

	return &Scheduler{
		cfg:      cfg,
		market:   market,
		orders:   orders,
		signals:  signals,
		position: position,
		perf:     perf,
		reports:  reports,
		alerts:   alerts,
		logger:   logger,
		now:      time.Now,
		lastSlot: -1,
	}, nil
}

// Run executes the loop until the context is cancelled. A failing cycle is
// logged and skipped; the loop itself never terminates on cycle errors.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting session loop",
		zap.String("symbol", s.cfg.Symbol),
		zap.Duration("poll_interval", s.cfg.PollInterval))

	ticker := time.NewTicker(pulseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session loop stopped", zap.String("symbol", s.cfg.Symbol))
			return ctx.Err()
		case <-ticker.C:
			s.step(ctx)
		}
	}
}

// step evaluates one liveness pulse.
func (s *Scheduler) step(ctx context.Context) {
	now := s.now().In(s.cfg.Location)
	day := now.Format(dayLayout)

	// the cache must never be read before its first forced fetch
	if !s.cachePrimed || s.openDay != day {
		open, err := s.market.MarketOpenToday(ctx)
		if err != nil {
			s.logger.Warn("market calendar check failed", zap.Error(err))
			return
		}
		s.openDay, s.openToday, s.cachePrimed = day, open, true
		s.lastSlot = -1
		s.aliveSent = false
		if !open {
			s.logger.Info("market closed today", zap.String("day", day))
		}
	}
	if !s.openToday {
		return
	}

	minute := now.Hour()*60 + now.Minute()
	switch {
	case minute >= s.cfg.TradingStart && minute < s.cfg.TradingEnd:
		s.trade(ctx, now)
	case minute >= s.cfg.CloseStart && minute < s.cfg.CloseEnd:
		s.closeSession(ctx, now, day)
	}
}

// trade fires a poll cycle when the pulse crosses an interval boundary.
// Slots are counted from the window start, so missed pulses or drift never
// skip more than the slot they fell into.
func (s *Scheduler) trade(ctx context.Context, now time.Time) {
	if !s.aliveSent {
		if _, err := s.alerts.Send(ctx, fmt.Sprintf("%s trader is alive and watching the market.", s.cfg.Symbol)); err != nil {
			s.logger.Warn("alive alert failed", zap.Error(err))
		}
		s.aliveSent = true
	}

	windowStart := time.Date(now.Year(), now.Month(), now.Day(),
		s.cfg.TradingStart/60, s.cfg.TradingStart%60, 0, 0, s.cfg.Location)
	slot := int(now.Sub(windowStart) / s.cfg.PollInterval)
	if slot == s.lastSlot {
		return
	}
	s.lastSlot = slot

	s.cycle(ctx)
}

// cycle fetches data, evaluates the signal and applies the decision.
func (s *Scheduler) cycle(ctx context.Context) {
	bars, err := s.market.MinuteBars(ctx, s.cfg.Symbol)
	if err != nil {
		s.logger.Warn("bar fetch failed, skipping cycle", zap.Error(err))
		return
	}

	price, err := s.market.LatestPrice(ctx, s.cfg.Symbol)
	if err != nil {
		s.logger.Warn("price fetch failed, skipping cycle", zap.Error(err))
		return
	}

	movingAverage, err := indicators.TailedAverage(bars, s.cfg.Timeframe)
	if err != nil {
		s.logger.Debug("moving average unavailable, skipping cycle", zap.Error(err))
		return
	}

	trendStrength, err := indicators.TrendStrength(bars)
	if err != nil {
		if errors.Is(err, indicators.ErrInsufficientData) {
			s.logger.Debug("trend strength warming up, skipping cycle", zap.Int("bars", len(bars)))
		} else {
			s.logger.Warn("trend strength failed, skipping cycle", zap.Error(err))
		}
		return
	}

	action := s.signals.Decide(price, movingAverage, trendStrength, s.position.Value())
	s.logger.Debug("cycle evaluated",
		zap.String("price", price.String()),
		zap.String("moving_average", movingAverage.String()),
		zap.Float64("trend_strength", trendStrength),
		zap.String("position", s.position.Status()),
		zap.Stringer("action", action))

	if action == domain.ActionHold {
		return
	}

	qty, err := s.orders.IdealQuantity(ctx, price)
	if err != nil {
		s.logger.Warn("order sizing failed, skipping cycle", zap.Error(err))
		return
	}
	if qty < 1 {
		s.logger.Warn("computed order quantity is zero, skipping cycle")
		return
	}

	s.submit(ctx, action, qty)
}

// submit dispatches the order and moves the position counter according to
// the configured update policy.
func (s *Scheduler) submit(ctx context.Context, action domain.Action, qty int64) {
	if s.cfg.OptimisticPositionUpdate {
		// submission outlives the cycle and its error is swallowed here;
		// the counter may desync from the broker if the order is rejected
		go func() {
			if err := s.orders.SubmitOrder(context.Background(), action, qty); err != nil {
				s.logger.Error("background order submission failed",
					zap.Stringer("action", action),
					zap.Int64("qty", qty),
					zap.Error(err))
			}
		}()
		s.applyDecision(action, qty)
		return
	}

	if err := s.orders.SubmitOrder(ctx, action, qty); err != nil {
		s.logger.Error("order submission failed",
			zap.Stringer("action", action),
			zap.Int64("qty", qty),
			zap.Error(err))
		return
	}
	s.applyDecision(action, qty)
}

func (s *Scheduler) applyDecision(action domain.Action, qty int64) {
	if _, err := s.position.Apply(action); err != nil {
		s.logger.Error("position update refused", zap.Error(err))
		return
	}
	s.logger.Info("taking a trade",
		zap.String("symbol", s.cfg.Symbol),
		zap.Stringer("action", action),
		zap.Int64("qty", qty),
		zap.String("position", s.position.Status()))
}

// closeSession liquidates, records performance, reports and re-arms the
// daily state. Runs at most once per day; in-flight background submissions
// are not awaited, liquidation cancels open orders at the broker instead.
func (s *Scheduler) closeSession(ctx context.Context, now time.Time, day string) {
	if s.closedDay == day {
		return
	}
	s.closedDay = day

	if err := s.orders.LiquidateAll(ctx); err != nil {
		s.logger.Error("liquidation failed", zap.Error(err))
	}
	s.position.Reset()

	report := fmt.Sprintf("%s trader is done for the day.", s.cfg.Symbol)
	snap, err := s.market.EquitySnapshot(ctx)
	if err != nil {
		s.logger.Error("equity snapshot failed", zap.Error(err))
	} else if percent, err := s.perf.DailyReturn(snap); err != nil {
		s.logger.Error("performance computation failed", zap.Error(err))
	} else {
		if err := s.perf.Append(now, percent); err != nil {
			s.logger.Error("performance append failed", zap.Error(err))
		} else if err := s.reports.Push(s.perf.Path()); err != nil {
			s.logger.Warn("report upload failed", zap.Error(err))
		}
		report = fmt.Sprintf("%s trader is done for the day. Today's performance: %s%%.",
			s.cfg.Symbol, percent.String())
	}

	if delivered, err := s.alerts.Send(ctx, report); err != nil {
		s.logger.Warn("report alert failed", zap.Error(err))
	} else if !delivered {
		s.logger.Warn("report alert was not delivered")
	}

	s.aliveSent = false
	s.lastSlot = -1
	s.logger.Info("session closed", zap.String("day", day))
}
