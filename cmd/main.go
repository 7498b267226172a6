// Command trendtrader runs the single-symbol intraday trading bot: it polls
// market data during the configured window, trades a trend-strength/moving
// average signal through Alpaca, liquidates at end of day and reports the
// daily return via SMS or Telegram plus an SFTP-synced performance log.
//
// Usage:
//
//	trendtrader --config config.yaml
//	trendtrader --setup
//
// Required environment variables:
//
//	Broker: APCA_API_KEY_ID, APCA_API_SECRET_KEY (APCA_API_BASE_URL optional)
//	SMS alerts: VONAGE_API_KEY, VONAGE_API_SECRET, VONAGE_SENDER, VONAGE_RECIPIENT
//	Telegram alerts: TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID
//	Report upload: SFTP_ADDR, SFTP_USER, SFTP_PASSWORD
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mbocharov/trendtrader/config"
	"github.com/mbocharov/trendtrader/internal/clients"
	"github.com/mbocharov/trendtrader/internal/domain"
	"github.com/mbocharov/trendtrader/internal/services/marketdata"
	"github.com/mbocharov/trendtrader/internal/services/notify"
	"github.com/mbocharov/trendtrader/internal/services/performance"
	"github.com/mbocharov/trendtrader/internal/services/reportsync"
	"github.com/mbocharov/trendtrader/internal/services/strategy"
	"github.com/mbocharov/trendtrader/internal/services/trader"
	"github.com/mbocharov/trendtrader/internal/session"
	"github.com/mbocharov/trendtrader/internal/setup"
)

func main() {
	conf, runSetup, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}
	if runSetup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	creds, err := clients.AlpacaCredsFromEnv()
	if err != nil {
		logger.Fatal("broker credentials missing", zap.Error(err))
	}
	trading, data := clients.NewAlpacaClients(creds)

	var base notify.Notifier
	switch conf.Notifier {
	case "telegram":
		base, err = notify.NewTelegramNotifierFromEnv()
		if err != nil {
			logger.Fatal("telegram credentials missing", zap.Error(err))
		}
	default:
		smsCreds, err := notify.SMSCredsFromEnv()
		if err != nil {
			logger.Fatal("sms credentials missing", zap.Error(err))
		}
		base = notify.NewSMSNotifier(smsCreds, logger)
	}
	alerts := notify.NewOnceNotifier(base, logger)

	sftpCreds, err := reportsync.CredsFromEnv()
	if err != nil {
		logger.Fatal("sftp credentials missing", zap.Error(err))
	}
	reports := reportsync.NewSFTPSync(sftpCreds, conf.RemoteDir, logger)

	market := marketdata.NewAlpacaProvider(trading, data, conf.Feed, conf.Location)

	orders, err := trader.NewAlpacaTrader(trading, conf.Symbol, conf.Allocation, logger)
	if err != nil {
		logger.Fatal("failed to create trader", zap.Error(err))
	}

	signals, err := strategy.NewEvaluator(conf.EntryThreshold, conf.MaxPosition)
	if err != nil {
		logger.Fatal("failed to create evaluator", zap.Error(err))
	}

	position, err := domain.NewPosition(conf.MaxPosition)
	if err != nil {
		logger.Fatal("failed to create position", zap.Error(err))
	}

	if dir := filepath.Dir(conf.PerformanceLog); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal("failed to create performance log directory", zap.Error(err))
		}
	}
	perf, err := performance.NewRecorder(conf.PerformanceLog, conf.Precision)
	if err != nil {
		logger.Fatal("failed to create performance recorder", zap.Error(err))
	}

	scheduler, err := session.NewScheduler(session.Config{
		Symbol:       conf.Symbol,
		Timeframe:    conf.Timeframe,
		TradingStart: conf.TradingStart,
		TradingEnd:   conf.TradingEnd,
		CloseStart:   conf.CloseStart,
		CloseEnd:     conf.CloseEnd,
		PollInterval: conf.PollInterval,
		Location:     conf.Location,

		OptimisticPositionUpdate: conf.OptimisticPositionUpdate,
	}, market, orders, signals, position, perf, reports, alerts, logger)
	if err != nil {
		logger.Fatal("failed to create session scheduler", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := alerts.SendOnce(ctx, fmt.Sprintf("%s trader has just been deployed.", conf.Symbol), false); err != nil {
		logger.Warn("deploy alert failed", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(ctx)
	})

	logger.Info("started", zap.String("symbol", conf.Symbol))
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error(err.Error())
	}
}
