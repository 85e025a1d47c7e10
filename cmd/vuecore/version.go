package main

import (
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vuecore/internal/config"
	"vuecore/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version [directory]",
	Short: "Show vuecore build information",
	Long: `Show the build of vuecore. With --compiler, also show the compiler
settings in effect for the project around directory (the current directory
by default): the Vue target, the runtime library, where the global types go
and the options fingerprint that keys the disk cache`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json|yaml)")
	versionCmd.Flags().Bool("full", false, "include git commit, message and build date")
	versionCmd.Flags().Bool("compiler", false, "include the compiler settings of the project")
}

// buildReport is what `vuecore version` prints.
type buildReport struct {
	Tool       string          `json:"tool" yaml:"tool"`
	Version    string          `json:"version" yaml:"version"`
	GoVersion  string          `json:"go_version" yaml:"go_version"`
	GitCommit  string          `json:"git_commit,omitempty" yaml:"git_commit,omitempty"`
	GitMessage string          `json:"git_message,omitempty" yaml:"git_message,omitempty"`
	BuildDate  string          `json:"build_date,omitempty" yaml:"build_date,omitempty"`
	Compiler   *compilerReport `json:"compiler,omitempty" yaml:"compiler,omitempty"`
}

type compilerReport struct {
	Manifest    string   `json:"manifest" yaml:"manifest"`
	Target      string   `json:"target" yaml:"target"`
	Lib         string   `json:"lib" yaml:"lib"`
	Strict      bool     `json:"strict_templates" yaml:"strict_templates"`
	GlobalTypes string   `json:"global_types" yaml:"global_types"`
	Extensions  []string `json:"extensions" yaml:"extensions"`
	Fingerprint string   `json:"fingerprint" yaml:"fingerprint"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}
	withCompiler, err := cmd.Flags().GetBool("compiler")
	if err != nil {
		return fmt.Errorf("failed to get compiler flag: %w", err)
	}

	rep := buildReport{Tool: "vuecore", Version: strings.TrimSpace(version.Version), GoVersion: runtime.Version()}
	if rep.Version == "" {
		rep.Version = "dev"
	}
	if full {
		rep.GitCommit = orUnknown(version.GitCommit)
		rep.GitMessage = orUnknown(version.GitMessage)
		rep.BuildDate = orUnknown(version.BuildDate)
	}
	if withCompiler {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		cfg, err := loadConfig(cmd, dir)
		if err != nil {
			return err
		}
		if rep.Compiler, err = describeCompiler(cfg); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		return writeJSON(w, rep)
	case "yaml":
		return writeYAML(w, rep)
	case "pretty":
		printBuildReport(w, rep)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json or yaml)", format)
	}
}

func describeCompiler(cfg *config.Config) (*compilerReport, error) {
	o := cfg.Options.Effective()
	fp, err := o.Fingerprint()
	if err != nil {
		return nil, err
	}
	manifest := cfg.Path
	if manifest == "" {
		manifest = "defaults"
	}
	globals := o.ResolveGlobalTypesPath()
	if globals == "" {
		globals = "inlined into the holder file"
	}
	return &compilerReport{
		Manifest:    manifest,
		Target:      strconv.FormatFloat(o.Target, 'f', -1, 64),
		Lib:         o.Lib,
		Strict:      o.StrictTemplates,
		GlobalTypes: globals,
		Extensions:  o.Extensions.All(),
		Fingerprint: fp.Short(),
	}, nil
}

func printBuildReport(w io.Writer, rep buildReport) {
	fmt.Fprintf(w, "vuecore %s (%s)\n", version.Colored(), rep.GoVersion)
	if rep.GitCommit != "" {
		fmt.Fprintf(w, "commit:   %s\nmessage:  %s\nbuilt:    %s\n", rep.GitCommit, rep.GitMessage, rep.BuildDate)
	}
	if c := rep.Compiler; c != nil {
		fmt.Fprintf(w, "manifest: %s\n", c.Manifest)
		fmt.Fprintf(w, "target:   vue %s (%s), strict templates %t\n", c.Target, c.Lib, c.Strict)
		fmt.Fprintf(w, "globals:  %s\n", c.GlobalTypes)
		fmt.Fprintf(w, "files:    %s\n", strings.Join(c.Extensions, " "))
		fmt.Fprintf(w, "options:  %s\n", c.Fingerprint)
	}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
