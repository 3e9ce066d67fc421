package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pixelwerk/augment/internal/consistency"
	"github.com/pixelwerk/augment/internal/runstats"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the transform parity checks",
	Long: `Runs every registry case (or the selected ones) through the seeded
dual-invocation comparator and reports divergences between the v2 and the
stable implementation.`,
	RunE: runParity,
}

func init() {
	runCmd.Flags().StringSlice("case", nil, "restrict the run to the named transform classes (repeatable)")
	runCmd.Flags().Int64("seed", 0, "generator seed planted before every invocation")
	runCmd.Flags().Bool("fail-fast", false, "stop at the first diverging case")
	runCmd.Flags().String("format", "text", "report format (text, json)")

	_ = viper.BindPFlag("cases", runCmd.Flags().Lookup("case"))
	_ = viper.BindPFlag("seed", runCmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("fail_fast", runCmd.Flags().Lookup("fail-fast"))
	_ = viper.BindPFlag("format", runCmd.Flags().Lookup("format"))

	rootCmd.AddCommand(runCmd)
}

// collector is the consistency.Reporter of the CLI: it gathers failures
// instead of stopping a test binary.
type collector struct {
	failures []string
}

func (c *collector) Helper() {}

func (c *collector) Errorf(format string, args ...any) {
	c.failures = append(c.failures, fmt.Sprintf(format, args...))
}

func (c *collector) Fatalf(format string, args ...any) {
	c.failures = append(c.failures, fmt.Sprintf(format, args...))
	panic(errRunAborted)
}

var errRunAborted = fmt.Errorf("parity: case aborted")

func (c *collector) run(fn func()) {
	defer func() {
		if r := recover(); r != nil && r != errRunAborted {
			panic(r)
		}
	}()
	fn()
}

// caseResult is one line of the run report.
type caseResult struct {
	Case     string   `json:"case"`
	Variant  string   `json:"variant"`
	Duration string   `json:"duration"`
	Failures []string `json:"failures,omitempty"`
}

func runParity(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	selected := map[string]bool{}
	for _, name := range cfg.Cases {
		selected[name] = true
	}
	cases := consistency.Cases()
	if len(selected) > 0 {
		var filtered []consistency.Case
		for _, c := range cases {
			if selected[c.Name()] {
				filtered = append(filtered, c)
				delete(selected, c.Name())
			}
		}
		if len(selected) > 0 {
			var unknown []string
			for name := range selected {
				unknown = append(unknown, name)
			}
			sort.Strings(unknown)
			return fmt.Errorf("unknown cases: %s", strings.Join(unknown, ", "))
		}
		cases = filtered
	}

	if missing := consistency.MissingCoverage(); len(missing) > 0 {
		slog.Warn("registry does not cover every stable transform", "missing", missing)
	}

	var results []caseResult
	failed := 0
	total := runstats.Start("run")
	for _, c := range cases {
		if !cfg.Bitmaps {
			c.SupportsBitmap = false
		}
		for _, v := range c.Variants {
			timer := runstats.Start(c.Name())
			col := &collector{}
			col.run(func() {
				consistency.CheckCallConsistencySeeded(col, c, v, cfg.Seed)
			})
			timer.Stop()

			results = append(results, caseResult{
				Case:     c.Name(),
				Variant:  v.Desc,
				Duration: timer.Duration().String(),
				Failures: col.failures,
			})
			if len(col.failures) > 0 {
				failed++
				slog.Error("case diverged", "case", c.Name(), "variant", v.Desc, "failures", len(col.failures))
				if cfg.FailFast {
					return reportAndFail(cmd, cfg.Format, results, failed, total)
				}
			} else {
				slog.Debug("case passed", "case", c.Name(), "variant", v.Desc, "duration", timer.Duration())
			}
		}
	}
	return reportAndFail(cmd, cfg.Format, results, failed, total)
}

func reportAndFail(cmd *cobra.Command, format string, results []caseResult, failed int, total *runstats.Timer) error {
	total.Stop()
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	default:
		for _, r := range results {
			status := "ok"
			if len(r.Failures) > 0 {
				status = "FAIL"
			}
			fmt.Fprintf(out, "%-4s %s (%s) [%s]\n", status, r.Case, r.Variant, r.Duration)
			for _, f := range r.Failures {
				fmt.Fprintf(out, "     %s\n", f)
			}
		}
	}
	mem := runstats.ReadMemoryStats()
	fmt.Fprintf(out, "\n%d variants, %d failed, %v total (%s)\n", len(results), failed, total.Duration(), mem)
	if failed > 0 {
		return fmt.Errorf("%d of %d variants diverged", failed, len(results))
	}
	return nil
}
