// Package config loads the bot configuration from a YAML file or CLI flags.
// Credentials never live here; they come from the environment at startup.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the validated runtime configuration.
type Config struct {
	Symbol         string
	Timeframe      int
	Allocation     decimal.Decimal
	EntryThreshold float64
	MaxPosition    int
	Precision      int32

	// session windows, minutes since midnight in Location
	TradingStart int
	TradingEnd   int
	CloseStart   int
	CloseEnd     int

	PollInterval time.Duration
	Location     *time.Location

	PerformanceLog string
	RemoteDir      string
	Notifier       string
	Feed           string

	OptimisticPositionUpdate bool
}

type configTmp struct {
	Symbol                   string        `yaml:"symbol"`
	Timeframe                int           `yaml:"timeframe"`
	AllocationStr            string        `yaml:"allocation,omitempty"`
	EntryThreshold           float64       `yaml:"entry_threshold,omitempty"`
	MaxPosition              int           `yaml:"max_position,omitempty"`
	Precision                int           `yaml:"precision,omitempty"`
	TradingStart             string        `yaml:"trading_start,omitempty"`
	TradingEnd               string        `yaml:"trading_end,omitempty"`
	CloseStart               string        `yaml:"close_start,omitempty"`
	CloseEnd                 string        `yaml:"close_end,omitempty"`
	PollInterval             time.Duration `yaml:"poll_interval,omitempty"`
	Timezone                 string        `yaml:"timezone,omitempty"`
	PerformanceLog           string        `yaml:"performance_log,omitempty"`
	RemoteDir                string        `yaml:"remote_dir,omitempty"`
	Notifier                 string        `yaml:"notifier,omitempty"`
	Feed                     string        `yaml:"feed,omitempty"`
	OptimisticPositionUpdate *bool         `yaml:"optimistic_position_update,omitempty"`
}

// defaults mirror the bot's original deployment: an oil ETF traded on
// 15-minute bars during the Pacific morning.
func defaultTmp() configTmp {
	optimistic := true
	return configTmp{
		Symbol:         "USO",
		Timeframe:      15,
		AllocationStr:  "0.05",
		EntryThreshold: 35,
		MaxPosition:    1,
		Precision:      4,
		TradingStart:   "06:45",
		TradingEnd:     "12:00",
		CloseStart:     "12:55",
		CloseEnd:       "12:59",
		PollInterval:   15 * time.Minute,
		Timezone:       "America/Los_Angeles",
		PerformanceLog: "data/performance.csv",
		RemoteDir:      "reports",
		Notifier:       "sms",
		Feed:           "iex",

		OptimisticPositionUpdate: &optimistic,
	}
}

// Get parses flags and returns the configuration together with a flag
// telling the caller to run the setup wizard instead.
func Get() (Config, bool, error) {
	configPath := flag.String("config", "", "path to yaml config")
	setup := flag.Bool("setup", false, "run the interactive configuration wizard")
	symbol := flag.String("symbol", "", "trading symbol, example: USO")
	timeframe := flag.Int("timeframe", 0, "bar interval in minutes, also the moving average window")
	allocation := flag.String("allocation", "", "fraction of equity per order, example: 0.05")
	pollInterval := flag.Duration("pollinterval", 0, "poll cycle interval")
	flag.Parse()

	if *setup {
		return Config{}, true, nil
	}

	tmp := defaultTmp()
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			return Config{}, false, fmt.Errorf("failed to read config %s: %w", *configPath, err)
		}
		if err := yaml.Unmarshal(raw, &tmp); err != nil {
			return Config{}, false, fmt.Errorf("failed to parse config %s: %w", *configPath, err)
		}
	}

	// CLI flags override the file
	if *symbol != "" {
		tmp.Symbol = *symbol
	}
	if *timeframe != 0 {
		tmp.Timeframe = *timeframe
	}
	if *allocation != "" {
		tmp.AllocationStr = *allocation
	}
	if *pollInterval != 0 {
		tmp.PollInterval = *pollInterval
	}

	cfg, err := tmp.build()
	return cfg, false, err
}

// Parse builds a Config from raw YAML, applying defaults for absent fields.
func Parse(raw []byte) (Config, error) {
	tmp := defaultTmp()
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return tmp.build()
}

func (t configTmp) build() (Config, error) {
	if t.Symbol == "" {
		return Config{}, fmt.Errorf("'symbol' is required")
	}
	if t.Timeframe < 1 {
		return Config{}, fmt.Errorf("incorrect 'timeframe' (must be a positive number of minutes), got %d", t.Timeframe)
	}

	allocation, err := decimal.NewFromString(t.AllocationStr)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'allocation' param (correct format is 0.05): %w", err)
	}
	if allocation.LessThanOrEqual(decimal.Zero) || allocation.GreaterThan(decimal.NewFromInt(1)) {
		return Config{}, fmt.Errorf("'allocation' must be in (0,1], got %s", allocation.String())
	}

	if t.EntryThreshold <= 0 {
		return Config{}, fmt.Errorf("'entry_threshold' must be positive, got %f", t.EntryThreshold)
	}
	if t.MaxPosition < 1 {
		return Config{}, fmt.Errorf("'max_position' must be at least 1, got %d", t.MaxPosition)
	}
	if t.Precision < 0 || t.Precision > 8 {
		return Config{}, fmt.Errorf("'precision' must be between 0 and 8, got %d", t.Precision)
	}
	if t.PollInterval < time.Minute {
		return Config{}, fmt.Errorf("'poll_interval' must be at least 1m, got %s", t.PollInterval)
	}

	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'timezone' %q: %w", t.Timezone, err)
	}

	tradingStart, err := parseClock(t.TradingStart)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'trading_start': %w", err)
	}
	tradingEnd, err := parseClock(t.TradingEnd)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'trading_end': %w", err)
	}
	closeStart, err := parseClock(t.CloseStart)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'close_start': %w", err)
	}
	closeEnd, err := parseClock(t.CloseEnd)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'close_end': %w", err)
	}

	switch t.Notifier {
	case "sms", "telegram":
	default:
		return Config{}, fmt.Errorf("'notifier' must be sms or telegram, got %q", t.Notifier)
	}
	switch t.Feed {
	case "iex", "sip":
	default:
		return Config{}, fmt.Errorf("'feed' must be iex or sip, got %q", t.Feed)
	}

	optimistic := true
	if t.OptimisticPositionUpdate != nil {
		optimistic = *t.OptimisticPositionUpdate
	}

	return Config{
		Symbol:         strings.ToUpper(t.Symbol),
		Timeframe:      t.Timeframe,
		Allocation:     allocation,
		EntryThreshold: t.EntryThreshold,
		MaxPosition:    t.MaxPosition,
		Precision:      int32(t.Precision),
		TradingStart:   tradingStart,
		TradingEnd:     tradingEnd,
		CloseStart:     closeStart,
		CloseEnd:       closeEnd,
		PollInterval:   t.PollInterval,
		Location:       loc,
		PerformanceLog: t.PerformanceLog,
		RemoteDir:      t.RemoteDir,
		Notifier:       t.Notifier,
		Feed:           t.Feed,

		OptimisticPositionUpdate: optimistic,
	}, nil
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(value string) (int, error) {
	hh, mm, ok := strings.Cut(value, ":")
	if !ok {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hours*60 + minutes, nil
}
