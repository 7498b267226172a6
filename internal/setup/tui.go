// Package setup provides a terminal wizard that writes a config.yaml.
package setup

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

type wizardConfig struct {
	Symbol         string `yaml:"symbol"`
	Timeframe      int    `yaml:"timeframe"`
	Allocation     string `yaml:"allocation"`
	EntryThreshold int    `yaml:"entry_threshold"`
	MaxPosition    int    `yaml:"max_position"`
	TradingStart   string `yaml:"trading_start"`
	TradingEnd     string `yaml:"trading_end"`
	CloseStart     string `yaml:"close_start"`
	CloseEnd       string `yaml:"close_end"`
	PollInterval   string `yaml:"poll_interval"`
	Timezone       string `yaml:"timezone"`
	Notifier       string `yaml:"notifier"`
	Feed           string `yaml:"feed"`
}

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		symbol        string
		timeframeStr  string
		allocationStr string
		thresholdStr  string
		notifier      string
		feed          string
		confirm       bool
	)

	// defaults
	timeframeStr = "15"
	allocationStr = "0.05"
	thresholdStr = "35"

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("TRENDTRADER CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("A few questions and your bot is ready.\n"))

	fmt.Println(stepStyle.Render("STEP 1: ASSET"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trading Symbol").
				Description("Single equity or ETF ticker (e.g. USO)").
				Value(&symbol).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("symbol cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Market Data Feed").
				Options(
					huh.NewOption("IEX (free)", "iex"),
					huh.NewOption("SIP (paid)", "sip"),
				).
				Value(&feed),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRENDTRADER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: STRATEGY PARAMETERS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bar Interval (minutes)").
				Description("Also the moving average window").
				Value(&timeframeStr).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Equity Allocation Per Order").
				Description("Fraction in (0,1], e.g. 0.05").
				Value(&allocationStr).
				Validate(func(s string) error {
					value, err := decimal.NewFromString(s)
					if err != nil {
						return fmt.Errorf("must be a decimal")
					}
					if value.LessThanOrEqual(decimal.Zero) || value.GreaterThan(decimal.NewFromInt(1)) {
						return fmt.Errorf("must be in (0,1]")
					}
					return nil
				}),
			huh.NewInput().
				Title("Trend Strength Entry Threshold").
				Description("ADX value required to take a trade").
				Value(&thresholdStr).
				Validate(validatePositiveInt),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRENDTRADER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: ALERTS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notification Channel").
				Options(
					huh.NewOption("SMS (Vonage)", "sms"),
					huh.NewOption("Telegram", "telegram"),
				).
				Value(&notifier),
		),
	).Run()
	if err != nil {
		return err
	}

	timeframe, _ := strconv.Atoi(timeframeStr)
	threshold, _ := strconv.Atoi(thresholdStr)
	cfg := wizardConfig{
		Symbol:         symbol,
		Timeframe:      timeframe,
		Allocation:     allocationStr,
		EntryThreshold: threshold,
		MaxPosition:    1,
		TradingStart:   "06:45",
		TradingEnd:     "12:00",
		CloseStart:     "12:55",
		CloseEnd:       "12:59",
		PollInterval:   (time.Duration(timeframe) * time.Minute).String(),
		Timezone:       "America/Los_Angeles",
		Notifier:       notifier,
		Feed:           feed,
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRENDTRADER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: CONFIRM"))
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render(string(out)))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Write config.yaml?").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		fmt.Println("Aborted, nothing written.")
		return nil
	}

	if err := os.WriteFile("config.yaml", out, 0o644); err != nil {
		return err
	}
	fmt.Println(stepStyle.Render("config.yaml written. Start the bot with --config config.yaml"))
	return nil
}

func validatePositiveInt(s string) error {
	value, err := strconv.Atoi(s)
	if err != nil || value < 1 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}
