package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"glfuzz/internal/driver"
	"glfuzz/internal/format"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <shader|dir>...",
	Short: "Reprint shaders in canonical form",
	Long: `Fmt parses .frag, .vert and .comp files (directories are walked) and
rewrites them the way glfuzz prints variants. With --check nothing is
written and the command fails if any shader would change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "list shaders that are not canonical and fail, write nothing")
	fmtCmd.Flags().Bool("stdout", false, "print canonical shaders to stdout instead of rewriting them")
	fmtCmd.Flags().Bool("verify", false, "also reparse the printed shader and require a fixed point")
	fmtCmd.Flags().String("format", "text", "report format (text|json)")
	fmtCmd.Flags().Int("indent", 4, "spaces per indentation level")
	fmtCmd.Flags().Bool("tabs", false, "indent with tabs")
}

var (
	errFmtFailed    = errors.New("fmt: some shaders could not be formatted")
	errNotFormatted = errors.New("fmt: some shaders are not in canonical form")
)

type fmtFlags struct {
	check  bool
	stdout bool
	verify bool
	asJSON bool
	quiet  bool
	opts   format.Options
}

func readFmtFlags(cmd *cobra.Command) (fmtFlags, error) {
	var f fmtFlags
	var err error
	flags := cmd.Flags()
	if f.check, err = flags.GetBool("check"); err != nil {
		return f, err
	}
	if f.stdout, err = flags.GetBool("stdout"); err != nil {
		return f, err
	}
	if f.verify, err = flags.GetBool("verify"); err != nil {
		return f, err
	}
	report, err := flags.GetString("format")
	if err != nil {
		return f, err
	}
	switch report {
	case "text":
	case "json":
		f.asJSON = true
	default:
		return f, errInvalidFlag("--format", report, "text|json")
	}
	if f.opts.IndentWidth, err = flags.GetInt("indent"); err != nil {
		return f, err
	}
	if f.opts.IndentWidth < 0 {
		return f, errInvalidFlag("--indent", fmt.Sprint(f.opts.IndentWidth), "a non-negative width")
	}
	if f.opts.UseTabs, err = flags.GetBool("tabs"); err != nil {
		return f, err
	}
	if f.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return f, err
	}
	// --stdout печатает сами шейдеры, отчёту там не место
	if f.stdout && (f.check || f.asJSON) {
		return f, errors.New("fmt: --stdout excludes --check and --format json")
	}
	return f, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	f, err := readFmtFlags(cmd)
	if err != nil {
		return err
	}
	maxDiag, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	results, err := driver.FormatPaths(cmd.Context(), args, driver.FormatOptions{
		Check:          f.check,
		Verify:         f.verify,
		MaxDiagnostics: maxDiag,
		Options:        f.opts,
		Stdout:         f.stdout,
	})
	if err != nil {
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	failed, changed := 0, 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			fmt.Fprintf(errOut, "%s %s: %v\n", color.RedString("error"), res.Path, res.Err)
		case res.Changed:
			changed++
		}
	}

	switch {
	case f.asJSON:
		if err := writeFmtJSON(out, results, f.check); err != nil {
			return err
		}
	case f.stdout:
		for _, res := range results {
			if res.Err == nil {
				_, _ = out.Write(res.Formatted)
			}
		}
	case !f.quiet:
		writeFmtText(out, results, f.check, changed)
	}

	if failed > 0 {
		return errFmtFailed
	}
	if f.check && changed > 0 {
		return errNotFormatted
	}
	return nil
}

func writeFmtText(w io.Writer, results []driver.FormatResult, check bool, changed int) {
	verb := "reformatted"
	if check {
		verb = "would reformat"
	}
	for _, res := range results {
		if res.Err == nil && res.Changed {
			fmt.Fprintf(w, "%s %s\n", color.YellowString(verb), res.Path)
		}
	}
	fmt.Fprintf(w, "%d of %d shaders %s\n", changed, len(results), verb)
}

type fmtReport struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Check   bool   `json:"check"`
	Error   string `json:"error,omitempty"`
}

func writeFmtJSON(w io.Writer, results []driver.FormatResult, check bool) error {
	reports := make([]fmtReport, len(results))
	for i, res := range results {
		reports[i] = fmtReport{Path: res.Path, Changed: res.Changed, Check: check}
		if res.Err != nil {
			reports[i].Error = res.Err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}
