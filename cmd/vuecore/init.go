package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vuecore/internal/config"
	"vuecore/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a vuecore.toml with the default compiler options",
	Long: `Initialize a project by writing vuecore.toml with every compiler option
at its default value. If [path] is omitted, initializes the current
directory. With --check, validate the manifest found from [path] instead`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("check", false, "validate the existing manifest and print the effective options")
	initCmd.Flags().Bool("force", false, "overwrite an existing vuecore.toml")
}

// runInit writes the default manifest into the target directory, creating
// the directory when needed, and refuses to overwrite an existing manifest
// unless --force is given.
func runInit(cmd *cobra.Command, args []string) error {
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return fmt.Errorf("failed to get check flag: %w", err)
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}

	// Resolve target directory
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}

	if check {
		return runInitCheck(cmd, target)
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil && !force {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	manifest, err := config.Encode(config.Defaults())
	if err != nil {
		return err
	}
	manifest = "# vuecore project manifest\n" + manifest
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized vuecore project in %s\n", rel)
	fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", project.ManifestName)
	return nil
}

func runInitCheck(cmd *cobra.Command, target string) error {
	cfg, err := config.Load(target)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if cfg.Path == "" {
		fmt.Fprintf(out, "no %s above %s; defaults apply\n", project.ManifestName, target)
	} else {
		fmt.Fprintf(out, "%s: ok\n", cfg.Path)
	}
	fp, err := cfg.Options.Fingerprint()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "root: %s\nfingerprint: %s\n", cfg.Root, fp.Short())
	if dir := cfg.CacheDir(); dir != "" {
		fmt.Fprintf(out, "cache: %s\n", dir)
	}
	fmt.Fprintln(out, "effective options:")
	return writeYAML(out, cfg.Options.Effective())
}
