package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/storelab-dev/checkout-runner/pkg/config"
	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/driver/mock"
	playwrightdriver "github.com/storelab-dev/checkout-runner/pkg/driver/playwright"
	seleniumdriver "github.com/storelab-dev/checkout-runner/pkg/driver/selenium"
	"github.com/storelab-dev/checkout-runner/pkg/executor"
	"github.com/storelab-dev/checkout-runner/pkg/logger"
	"github.com/storelab-dev/checkout-runner/pkg/report"
	"github.com/storelab-dev/checkout-runner/pkg/session"
	"github.com/storelab-dev/checkout-runner/pkg/validator"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run checkout flows against the storefront",
	ArgsUsage: "[flow...]",
	Description: `Runs the named flows, or every configured flow when none are given.

Reports land in a timestamped folder under the report directory unless
--flatten is set, in which case --output is written to directly.

Examples:
  checkout-runner run
  checkout-runner run checkout
  checkout-runner run login invalid-login --output ./reports --flatten
  checkout-runner run --parallel 2 --artifacts always`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report directory (default: <home>/reports)",
		},
		&cli.BoolFlag{
			Name:  "flatten",
			Usage: "Write into --output directly, without a timestamped subfolder",
		},
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "Run up to N flows concurrently",
		},
		&cli.BoolFlag{
			Name:  "stop-on-fail",
			Usage: "Skip remaining flows after the first failure",
		},
		&cli.StringFlag{
			Name:    "artifacts",
			Usage:   "Screenshot capture policy (on-failure, always, never)",
			EnvVars: []string{"CHECKOUT_ARTIFACTS"},
		},
	},
	Action: runFlows,
}

func runFlows(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	names := c.Args().Slice()
	if len(names) == 0 {
		names = cfg.Flows
	}

	result := validator.New().Validate(cfg, names)
	if !result.IsValid() {
		fmt.Fprintln(os.Stderr, "Validation errors:")
		for _, verr := range result.Errors {
			fmt.Fprintf(os.Stderr, "  - %v\n", verr)
		}
		return fmt.Errorf("validation failed with %d error(s)", len(result.Errors))
	}
	flows := result.Flows

	outputDir, err := resolveOutputDir(c.String("output"), cfg.OutputDir, c.Bool("flatten"))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := logger.Init(filepath.Join(outputDir, "checkout-runner.log")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open run log: %v\n", err)
	}
	defer logger.Close()
	logger.SetVerbose(c.Bool("verbose"))

	logger.Info("checkout-runner %s starting", Version)
	logger.Info("target=%s driver=%s browser=%s flows=%v", cfg.BaseURL, cfg.Driver, cfg.Browser, flowNames(flows))

	printBanner()

	printSection("Setup")
	printSetupSuccess("Target: %s", cfg.BaseURL)
	printSetupSuccess("Driver: %s (%s)", cfg.Driver, cfg.Browser)
	printSetupSuccess("Selected %d flow(s): %s", len(flows), strings.Join(flowNames(flows), ", "))
	printSetupSuccess("Report directory: %s", outputDir)

	parallel := c.Int("parallel")
	if parallel > 0 {
		fmt.Printf("\n  %s Parallel mode: step output is suppressed, per-flow results below\n", cyan("ℹ"))
	}

	printSection("Execution")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runnerCfg := executor.RunnerConfig{
		Config:        cfg,
		OutputDir:     outputDir,
		Parallelism:   parallel,
		StopOnFail:    c.Bool("stop-on-fail"),
		Artifacts:     executor.ArtifactModeFromString(cfg.Artifacts),
		RunnerVersion: Version,
		DriverName:    cfg.Driver,
		OnFlowEnd:     onFlowEnd,
	}
	if parallel <= 0 {
		runnerCfg.OnFlowStart = onFlowStart
		runnerCfg.OnStepComplete = onStepComplete
	}

	runner := executor.New(session.NewManager(driverFactory(cfg)), runnerCfg)
	suite, err := runner.Run(ctx, flows)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	logger.Info("run completed: %d/%d flows passed", suite.PassedFlows, suite.TotalFlows)
	printSummary(suite)

	htmlPath := filepath.Join(outputDir, "report.html")
	if err := report.GenerateHTML(outputDir, report.HTMLConfig{
		OutputPath: htmlPath,
		Title:      "Checkout Report",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not generate HTML report: %v\n", err)
		htmlPath = ""
	}

	fmt.Println()
	fmt.Println(bold("Reports:"))
	if htmlPath != "" {
		fmt.Printf("  HTML: %s\n", htmlPath)
	}
	fmt.Printf("  JSON: %s\n", filepath.Join(outputDir, "report.json"))
	fmt.Println()

	if !suite.Success() {
		return cli.Exit("", 1)
	}
	return nil
}

// loadConfig assembles the effective config from file, environment and flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		var cwd string
		cwd, err = os.Getwd()
		if err == nil {
			cfg, err = config.LoadFromDir(cwd)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyEnv()
	applyFlags(cfg, c)
	cfg.ApplyDefaults()
	return cfg, nil
}

func applyFlags(cfg *config.Config, c *cli.Context) {
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("timeout-ms") {
		cfg.TimeoutMs = c.Int("timeout-ms")
	}
	if c.IsSet("driver") {
		cfg.Driver = c.String("driver")
	}
	if c.IsSet("browser") {
		cfg.Browser = c.String("browser")
	}
	if c.IsSet("selenium-url") {
		cfg.SeleniumURL = c.String("selenium-url")
	}
	if c.IsSet("artifacts") {
		cfg.Artifacts = c.String("artifacts")
	}
	if c.Bool("headed") {
		headless := false
		cfg.Headless = &headless
	}
}

// resolveOutputDir decides where this run's reports go. A timestamped
// subfolder keeps successive runs apart unless --flatten is set.
func resolveOutputDir(flagValue, configured string, flatten bool) (string, error) {
	if flatten && flagValue == "" {
		return "", fmt.Errorf("--flatten requires --output to be specified")
	}
	baseDir := flagValue
	if baseDir == "" {
		baseDir = configured
	}
	if flatten {
		return filepath.Clean(baseDir), nil
	}
	return filepath.Join(baseDir, time.Now().Format("2006-01-02_15-04-05")), nil
}

func driverFactory(cfg *config.Config) session.Factory {
	switch cfg.Driver {
	case config.DriverMock:
		return func() (core.Driver, error) {
			return mock.New(mock.Config{}), nil
		}
	case config.DriverSelenium:
		return func() (core.Driver, error) {
			return seleniumdriver.New(seleniumdriver.Options{
				RemoteURL: cfg.SeleniumURL,
				Browser:   cfg.Browser,
				Headless:  cfg.IsHeadless(),
				Timeout:   cfg.Timeout(),
			})
		}
	default:
		return func() (core.Driver, error) {
			return playwrightdriver.New(playwrightdriver.Options{
				Browser:   cfg.Browser,
				Headless:  cfg.IsHeadless(),
				Timeout:   cfg.Timeout(),
				DriverDir: config.GetBrowsersDir(),
			})
		}
	}
}

func flowNames(flows []executor.Flow) []string {
	names := make([]string, len(flows))
	for i, f := range flows {
		names[i] = f.Name
	}
	return names
}
