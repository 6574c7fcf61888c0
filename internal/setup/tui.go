// Package setup runs the interactive configuration wizard.
package setup

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/twap/config"
	"github.com/vadiminshakov/twap/internal/domain"
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

// GeneratedConfigFile is where RunTUI saves the configuration.
const GeneratedConfigFile = "config.gen.yaml"

const wizardTitle = "TWAP CONFIG WIZARD"

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		platform          string
		pair              = "BTC_USDT"
		pollIntervalStr   = "1s"
		tradeInterval     = "180"
		tradeIntervalJit  = "60"
		quoteAmount       = "10"
		quoteAmountJitter = "5"
		initialBuys       = "5"
		confirm           bool
	)

	// step 1: welcome
	resetScreen()
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Spread your orders over time.\n"))

	// platform
	fmt.Println(stepStyle.Render("STEP 1: PLATFORM"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Exchange Platform").
				Options(
					huh.NewOption("Binance", config.PlatformBinance),
					huh.NewOption("Bybit", config.PlatformBybit),
					huh.NewOption("Hyperliquid (perpetuals, sells reduce-only)", config.PlatformHyperliquid),
					huh.NewOption("Simulation (Binance prices)", config.PlatformSimulate),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	// pair
	resetScreen()
	fmt.Println(stepStyle.Render("STEP 2: ASSET"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trading Pair").
				Description("Must contain underscore (e.g. BTC_USDT)").
				Value(&pair).
				Validate(func(s string) error {
					_, err := domain.ParsePair(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// timing
	resetScreen()
	fmt.Println(stepStyle.Render("STEP 3: TIMING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Poll Interval").
				Description("How often the bot wakes up (e.g. 1s, 10s)").
				Value(&pollIntervalStr).
				Validate(func(s string) error {
					d, err := time.ParseDuration(s)
					if err != nil {
						return err
					}
					if d <= 0 {
						return fmt.Errorf("must be positive")
					}
					return nil
				}),
			huh.NewInput().
				Title("Trade Interval").
				Description("Mean seconds between orders (e.g. 180)").
				Value(&tradeInterval).
				Validate(validateInt(0)),
			huh.NewInput().
				Title("Trade Interval Jitter").
				Description("Max deviation in seconds (e.g. 60)").
				Value(&tradeIntervalJit).
				Validate(validateInt(1)),
		),
	).Run()
	if err != nil {
		return err
	}

	// sizing
	resetScreen()
	fmt.Println(stepStyle.Render("STEP 4: ORDER SIZE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Quote Amount").
				Description("Mean order size in quote currency (e.g. 10)").
				Value(&quoteAmount).
				Validate(validateInt(2)),
			huh.NewInput().
				Title("Quote Amount Jitter").
				Description("Max deviation in quote currency (e.g. 5)").
				Value(&quoteAmountJitter).
				Validate(validateInt(1)),
			huh.NewInput().
				Title("Initial Buys").
				Description("Buy orders placed before sides are drawn at random").
				Value(&initialBuys).
				Validate(validateInt(0)),
		),
	).Run()
	if err != nil {
		return err
	}

	pollInterval, _ := time.ParseDuration(pollIntervalStr)
	cfgTmp := config.ConfigTmp{
		Platform:               platform,
		Pair:                   pair,
		PollInterval:           pollInterval,
		TradeIntervalStr:       tradeInterval,
		TradeIntervalJitterStr: tradeIntervalJit,
		QuoteAmountStr:         quoteAmount,
		QuoteAmountJitterStr:   quoteAmountJitter,
		InitialBuysStr:         initialBuys,
	}

	// fields are validated one by one, ranges only make sense together
	if err := Validate(cfgTmp); err != nil {
		return err
	}

	// confirmation
	resetScreen()
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Platform: %s\nPair: %s\nPoll: %s\nInterval: %s +/- %s s\nQuote: %s +/- %s\nInitial buys: %s\n",
		platform, pair, pollIntervalStr, tradeInterval, tradeIntervalJit, quoteAmount, quoteAmountJitter, initialBuys,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	if err := Save(GeneratedConfigFile, cfgTmp); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting bot...", GeneratedConfigFile)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

// Validate checks the wizard answers the same way the config loader will.
func Validate(c config.ConfigTmp) error {
	f, err := os.CreateTemp("", "twap-setup-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := Save(f.Name(), c); err != nil {
		return err
	}
	_, err = config.Get([]string{"--config", f.Name()})
	return err
}

// Save writes a single bot configuration as a yaml list.
func Save(filename string, c config.ConfigTmp) error {
	data, err := yaml.Marshal([]config.ConfigTmp{c})
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

func resetScreen() {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render(wizardTitle))
}

func validateInt(lowest int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("must be a whole number")
		}
		if v < lowest {
			return fmt.Errorf("must be at least %d", lowest)
		}
		return nil
	}
}
