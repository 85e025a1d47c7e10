package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vuecore/internal/code"
	"vuecore/internal/diag"
	"vuecore/internal/diagfmt"
	"vuecore/internal/driver"
	"vuecore/internal/mapping"
	"vuecore/internal/source"
)

var mapCmd = &cobra.Command{
	Use:   "map [flags] <file>",
	Short: "Translate positions between a component file and its generated code",
	Long: `Compile a component file and answer mapping queries against one of its
virtual codes. Positions are byte offsets or 1-based line:character pairs`,
	Args: cobra.ExactArgs(1),
	RunE: runMap,
}

func init() {
	mapCmd.Flags().String("code", "", "virtual code id (default: the script code)")
	mapCmd.Flags().String("generated", "", "map a generated position back to the source")
	mapCmd.Flags().String("source", "", "map a source position to generated positions")
	mapCmd.Flags().String("require", "", "only use mappings carrying these capabilities (e.g. navigation|rename)")
	mapCmd.Flags().IntSlice("verify", nil, "generated offsets of checker diagnostics to filter through the verifier")
	mapCmd.Flags().Bool("dump", false, "list every mapping of the code")
	addDriverFlags(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	codeID, err := cmd.Flags().GetString("code")
	if err != nil {
		return fmt.Errorf("failed to get code flag: %w", err)
	}
	genPos, err := cmd.Flags().GetString("generated")
	if err != nil {
		return fmt.Errorf("failed to get generated flag: %w", err)
	}
	srcPos, err := cmd.Flags().GetString("source")
	if err != nil {
		return fmt.Errorf("failed to get source flag: %w", err)
	}
	requireStr, err := cmd.Flags().GetString("require")
	if err != nil {
		return fmt.Errorf("failed to get require flag: %w", err)
	}
	verify, err := cmd.Flags().GetIntSlice("verify")
	if err != nil {
		return fmt.Errorf("failed to get verify flag: %w", err)
	}
	dump, err := cmd.Flags().GetBool("dump")
	if err != nil {
		return fmt.Errorf("failed to get dump flag: %w", err)
	}
	if genPos == "" && srcPos == "" && len(verify) == 0 && !dump {
		return fmt.Errorf("nothing to do: pass --generated, --source, --verify or --dump")
	}

	var filter mapping.Filter
	if requireStr != "" {
		flags, err := code.ParseFlag(requireStr)
		if err != nil {
			return err
		}
		filter = mapping.Require(flags)
	}

	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	opts, err := readDriverOptions(cmd, cfg)
	if err != nil {
		return err
	}
	fs, res, err := driver.CompileFile(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}
	srcFile := fs.Get(res.FileID)
	if srcFile == nil || srcFile.Path != source.NormalizePath(res.Path) {
		return fmt.Errorf("failed to load %s", args[0])
	}

	c, err := pickCode(res, codeID)
	if err != nil {
		return err
	}
	genFile := fs.Get(fs.AddVirtual(c.ID, []byte(c.Artifact.Text)))
	m := mapping.NewMapper(c.Artifact)
	w := cmd.OutOrStdout()

	if dump {
		dumpMappings(w, c, srcFile, genFile)
	}
	if genPos != "" {
		gen, err := parsePosition(genFile, genPos)
		if err != nil {
			return fmt.Errorf("--generated: %w", err)
		}
		src, caps, ok := m.ToSource(gen, filter)
		if !ok {
			fmt.Fprintf(w, "generated %s: unmapped\n", describe(genFile, gen))
		} else {
			fmt.Fprintf(w, "generated %s -> source %s [%s]\n", describe(genFile, gen), describe(srcFile, src), caps)
		}
		if start, end, ok := m.SpanAt(gen); ok {
			fmt.Fprintf(w, "  span %d-%d %q\n", start, end, c.Artifact.Text[start:end])
		}
		for _, l := range m.LinkedOf(gen) {
			fmt.Fprintf(w, "  linked %s\n", describe(genFile, l))
		}
	}
	if srcPos != "" {
		src, err := parsePosition(srcFile, srcPos)
		if err != nil {
			return fmt.Errorf("--source: %w", err)
		}
		gens := m.ToGenerated(src, filter)
		if len(gens) == 0 {
			fmt.Fprintf(w, "source %s: unmapped in %s\n", describe(srcFile, src), c.ID)
		}
		for _, g := range gens {
			fmt.Fprintf(w, "source %s -> generated %s\n", describe(srcFile, src), describe(genFile, g))
		}
	}
	if len(verify) > 0 {
		v := mapping.NewVerifier(m)
		keep := v.Filter(verify)
		fmt.Fprintf(w, "report %d of %d diagnostics\n", len(keep), len(verify))
		for _, g := range keep {
			src, _, _ := m.ToSource(g, nil)
			fmt.Fprintf(w, "  generated %s -> source %s\n", describe(genFile, g), describe(srcFile, src))
		}
		if unused := v.Unused(); len(unused) > 0 {
			bag := unusedDirectives(c, res.FileID, unused)
			diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{Color: !color.NoColor, Context: 1})
		}
	}
	return nil
}

// unusedDirectives reports each expect-error group that swallowed nothing
// at the directive comment it came from.
func unusedDirectives(c driver.Code, file source.FileID, groups []int) *diag.Bag {
	bag := diag.NewBag(0)
	want := make(map[int]bool, len(groups))
	for _, g := range groups {
		want[g] = true
	}
	for _, mp := range c.Artifact.Mappings {
		g := mp.Data.ExpectErrorDirective
		if !want[g] || len(mp.SourceOffsets) == 0 {
			continue
		}
		delete(want, g)
		start := mp.SourceOffsets[0]
		span := source.Span{File: file, Start: source.Offset(start), End: source.Offset(start + mp.Lengths[0])}
		diag.ReportWarning(diag.BagReporter{Bag: bag}, diag.GenUnusedExpectError, span,
			"unused '@vue-expect-error' directive").Emit()
	}
	bag.Sort()
	return bag
}

// pickCode returns the code with id, or the script code when id is empty.
func pickCode(res *driver.Result, id string) (driver.Code, error) {
	if id == "" {
		for _, c := range res.Codes {
			if strings.HasPrefix(c.ID, "script_") && c.Artifact != nil {
				return c, nil
			}
		}
		return driver.Code{}, fmt.Errorf("%s has no script code", res.Path)
	}
	c, ok := res.Code(id)
	if !ok || c.Artifact == nil {
		ids := make([]string, 0, len(res.Codes))
		for _, c := range res.Codes {
			ids = append(ids, c.ID)
		}
		return driver.Code{}, fmt.Errorf("unknown code %q (available: %s)", id, strings.Join(ids, ", "))
	}
	return c, nil
}

// parsePosition accepts a byte offset or a 1-based line:character pair.
func parsePosition(f *source.File, s string) (int, error) {
	s = strings.TrimSpace(s)
	if line, char, ok := strings.Cut(s, ":"); ok {
		l, err := strconv.Atoi(line)
		if err != nil || l < 1 {
			return 0, fmt.Errorf("invalid line in %q", s)
		}
		ch, err := strconv.Atoi(char)
		if err != nil || ch < 1 {
			return 0, fmt.Errorf("invalid character in %q", s)
		}
		return int(f.OffsetAt(source.Position{Line: l - 1, Character: ch - 1})), nil
	}
	off, err := strconv.Atoi(s)
	if err != nil || off < 0 {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	if off > len(f.Content) {
		return 0, fmt.Errorf("offset %d is past the end (%d bytes)", off, len(f.Content))
	}
	return off, nil
}

func describe(f *source.File, off int) string {
	pos := f.PositionAt(source.Offset(off))
	return fmt.Sprintf("%d (%d:%d)", off, pos.Line+1, pos.Character+1)
}

func dumpMappings(w io.Writer, c driver.Code, srcFile, genFile *source.File) {
	fmt.Fprintf(w, "%s (%s): %d mappings, %d linked\n", c.ID, c.LanguageID, len(c.Artifact.Mappings), len(c.Artifact.LinkedMappings))
	for _, mp := range c.Artifact.Mappings {
		for i := range mp.SourceOffsets {
			src, gen, n := mp.SourceOffsets[i], mp.GeneratedOffsets[i], mp.Lengths[i]
			genLen := n
			if i < len(mp.GeneratedLengths) {
				genLen = mp.GeneratedLengths[i]
			}
			fmt.Fprintf(w, "  %s+%d -> %s+%d %q [%s]\n",
				describe(srcFile, src), n, describe(genFile, gen), genLen,
				excerpt(srcFile.Content, src, n), mp.Data)
		}
	}
	for _, l := range c.Artifact.LinkedMappings {
		for i := range l.Lengths {
			fmt.Fprintf(w, "  linked %s <-> %s len %d\n",
				describe(genFile, l.SourceOffsets[i]), describe(genFile, l.GeneratedOffsets[i]), l.Lengths[i])
		}
	}
}

func excerpt(content []byte, off, n int) string {
	if off < 0 || off > len(content) {
		return ""
	}
	end := min(off+n, len(content))
	const limit = 40
	if end-off > limit {
		return string(content[off:off+limit]) + "…"
	}
	return string(content[off:end])
}
