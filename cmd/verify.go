package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/portlint/portlint/formatter"
	"github.com/portlint/portlint/internal/types"
	"github.com/portlint/portlint/verify"
)

var (
	verifyJSONOutput bool
	verifyOutPath    string
	watchMode        bool
	showProgress     bool
	refRoot          string
	refModules       []string
	gateThreshold    float64
	gatePolicy       string
	indexCorpus      bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run the coverage verification and gate on the result",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runVerify())
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyJSONOutput, "json", false, "Output the report in JSON format")
	verifyCmd.Flags().StringVarP(&verifyOutPath, "output", "o", "", "Output path (when using JSON)")
	verifyCmd.Flags().BoolVar(&watchMode, "watch", false, "Re-run verification when reference or candidate files change")
	verifyCmd.Flags().BoolVar(&showProgress, "progress", false, "Show index-build progress")
	verifyCmd.Flags().StringVar(&refRoot, "ref", "", "Reference corpus root (overrides config)")
	verifyCmd.Flags().StringArrayVar(&refModules, "module", nil, "Reference module relative to the root (repeatable, overrides config)")
	verifyCmd.Flags().Float64Var(&gateThreshold, "threshold", -1, "Pass threshold percentage (-1 keeps the configured value)")
	verifyCmd.Flags().StringVar(&gatePolicy, "policy", "", "Gate policy: gating or advisory (overrides config)")
	verifyCmd.Flags().BoolVar(&indexCorpus, "index", false, "Pre-index the candidate corpus before searching")
}

// runVerify resolves every outcome, including an unexpected fault, to a
// concrete exit code according to the configured policy.
func runVerify() (code int) {
	cfg, err := verify.Load(cfgFile)
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return 1
	}
	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Verification aborted by unexpected fault", zap.Any("fault", r))
			code = exitCode(cfg.Policy, false)
		}
	}()

	runner := verify.NewRunner(cfg, logger)
	if showProgress {
		runner.SetProgress(os.Stderr)
	}

	onRun := func(outcome types.Outcome) {
		if err := emitOutcome(outcome, runner.RenderOptions()); err != nil {
			logger.Error("Failed to write report", zap.Error(err))
		}
	}

	if watchMode {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runner.Watch(ctx, onRun); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Watch mode failed", zap.Error(err))
			return 1
		}
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	outcome, err := runner.Run(ctx)
	if err != nil {
		logger.Error("Verification failed to run", zap.Error(err))
		return exitCode(cfg.Policy, false)
	}
	if err := emitOutcome(outcome, runner.RenderOptions()); err != nil {
		logger.Error("Failed to write report", zap.Error(err))
		return exitCode(cfg.Policy, false)
	}
	return exitCode(cfg.Policy, outcome.Pass)
}

// Flags sit above the environment and the file in precedence.
func applyFlagOverrides(cfg *verify.Config) {
	if refRoot != "" {
		cfg.Reference.Root = refRoot
	}
	if len(refModules) > 0 {
		cfg.Reference.Modules = refModules
	}
	if gateThreshold >= 0 {
		cfg.Threshold = gateThreshold
	}
	if gatePolicy != "" {
		cfg.Policy = verify.Policy(strings.ToLower(gatePolicy))
	}
	if indexCorpus {
		cfg.Search.Index = true
	}
}

// exitCode maps a pass/fail outcome to the process exit code. Advisory runs
// never fail the invoking job; gating runs fail when the gate does.
func exitCode(policy verify.Policy, pass bool) int {
	if policy == verify.PolicyAdvisory || pass {
		return 0
	}
	return 1
}

func emitOutcome(outcome types.Outcome, opts formatter.Options) error {
	if !verifyJSONOutput {
		fmt.Print(outcome.Text)
		return nil
	}

	payload, err := formatter.RenderJSON(outcome, opts)
	if err != nil {
		return err
	}
	if verifyOutPath == "" {
		fmt.Println(payload)
		return nil
	}
	return os.WriteFile(verifyOutPath, []byte(payload), 0o644)
}
