package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vuecore/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "vuecore",
	Short: "Vue component compiler core",
	Long: `vuecore turns Vue single-file components into virtual TypeScript
files with source mappings, for use by a type-checker or language server`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRun,
}

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Short()

	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to keep per file")

	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "ring", "trace storage mode (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "ring buffer capacity in events")
	pf.Duration("trace-heartbeat", 0, "every interval, trace the component files still compiling (0 disables)")

	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
}

// main executes the root command. Any error exits with status 1; commands
// that found errors in the compiled files exit with status 1 through exitWith.
func main() {
	err := rootCmd.Execute()
	// cleanup runs on error paths too, cobra skips post-run hooks there
	runCleanups()
	if err != nil {
		os.Exit(1)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

var (
	exitCode int
	cleanups []func()
	started  time.Time
)

// exitWith records a non-zero exit status without aborting the command,
// so deferred cleanup still runs.
func exitWith(code int) {
	if code > exitCode {
		exitCode = code
	}
}

func setupRun(cmd *cobra.Command, _ []string) error {
	started = time.Now()
	if err := applyColor(cmd); err != nil {
		return err
	}
	stopTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, stopTrace)
	stopProf, err := setupProfiling(cmd)
	if err != nil {
		runCleanups()
		return err
	}
	cleanups = append(cleanups, stopProf)
	return nil
}

// runCleanups stops profilers before flushing the tracer: reverse order.
func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
