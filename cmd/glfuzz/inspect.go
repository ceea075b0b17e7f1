package main

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"glfuzz/internal/ast"
	"glfuzz/internal/driver"
	"glfuzz/internal/format"
	"glfuzz/internal/inject"
	"glfuzz/internal/safety"
)

var pointsCmd = &cobra.Command{
	Use:   "points [flags] <shader>",
	Short: "List the injection points of a shader",
	Args:  cobra.ExactArgs(1),
	RunE:  runPoints,
}

var truncateCmd = &cobra.Command{
	Use:   "truncate [flags] <shader>",
	Short: "Bound every loop of a shader and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runTruncate,
}

var boundsCmd = &cobra.Command{
	Use:   "bounds <shader>",
	Short: "Clamp every array, vector and matrix index and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runBounds,
}

func init() {
	truncateCmd.Flags().Int("limit", 100, "maximum iterations per loop")
	truncateCmd.Flags().String("prefix", "", "prefix of the limiter variables (default: the shader's base name)")
	truncateCmd.Flags().Bool("skip-short", false, "leave loops with a constant trip count below --limit alone")
}

// loadShader parses path and fails with the formatted error diagnostics.
func loadShader(cmd *cobra.Command, path string) (*driver.ParseResult, error) {
	cmd.SilenceUsage = true
	kind, err := driver.KindFromPath(path)
	if err != nil {
		return nil, err
	}
	maxDiag, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, err
	}
	res, err := driver.Parse(path, kind, maxDiag)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func runPoints(cmd *cobra.Command, args []string) error {
	res, err := loadShader(cmd, args[0])
	if err != nil {
		return err
	}
	points := inject.Find(res.Prog, nil).All()
	return renderPoints(cmd.OutOrStdout(), res, points)
}

func renderPoints(out io.Writer, res *driver.ParseResult, points []inject.Point) error {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"#", "Function", "Site", "Line", "Loop", "Switch", "Before"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT,
	})

	prog := res.Prog
	perFunc := make(map[string]int)
	for i, pt := range points {
		name := "?"
		if fn, ok := prog.Decls.Func(pt.EnclosingFunction()); ok {
			name = fn.Name
		}
		perFunc[name]++
		line, before := "-", "end"
		if next, err := pt.Next(); err == nil {
			st := prog.Stmts.Get(next)
			before = st.Kind.String()
			if st.Span.End > 0 {
				start, _ := res.FileSet.Resolve(st.Span)
				line = strconv.FormatUint(uint64(start.Line), 10)
			}
		}
		table.Append([]string{
			strconv.Itoa(i), name, pt.Kind().String(), line,
			yesNo(pt.InLoop()), yesNo(pt.InSwitch()), before,
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d functions", len(perFunc)), "", "", "", "", fmt.Sprintf("%d points", len(points))})
	table.Render()
	_, err := buf.WriteTo(out)
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func runTruncate(cmd *cobra.Command, args []string) error {
	res, err := loadShader(cmd, args[0])
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", limit)
	}
	prefix, err := cmd.Flags().GetString("prefix")
	if err != nil {
		return err
	}
	if prefix == "" {
		prefix = identPrefix(res.File.Path)
	}
	skipShort, err := cmd.Flags().GetBool("skip-short")
	if err != nil {
		return err
	}
	n := safety.TruncateLoops(res.Prog, limit, prefix, skipShort)
	return printRewritten(cmd, res.Prog, fmt.Sprintf("truncated %d loops", n))
}

func runBounds(cmd *cobra.Command, args []string) error {
	res, err := loadShader(cmd, args[0])
	if err != nil {
		return err
	}
	n := safety.MakeArrayAccessesInBounds(res.Prog)
	return printRewritten(cmd, res.Prog, fmt.Sprintf("clamped %d accesses", n))
}

func printRewritten(cmd *cobra.Command, prog *ast.Program, note string) error {
	if _, err := cmd.OutOrStdout().Write(format.Program(prog, format.Options{})); err != nil {
		return err
	}
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), note)
	}
	return nil
}

// identPrefix turns the base name of path into a GLSL identifier prefix.
func identPrefix(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	prevUnderscore := false
	for _, r := range base {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			r = '_'
		}
		// "__" в идентификаторах GLSL зарезервировано
		if r == '_' && prevUnderscore {
			continue
		}
		prevUnderscore = r == '_'
		b.WriteRune(r)
	}
	out := strings.Trim(b.String(), "_")
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "s" + out
	}
	return out
}
