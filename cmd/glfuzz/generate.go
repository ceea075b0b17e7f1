package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"glfuzz/internal/ast"
	"glfuzz/internal/config"
	"glfuzz/internal/driver"
	"glfuzz/internal/observ"
	"glfuzz/internal/trace"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] <reference>",
	Short: "Generate semantics-preserving variants of a shader",
	Long: `Generate parses the reference shader, injects guarded code (donated from
the shaders under --donors, and synthesized control flow) and writes the
variants, each with a JSON file listing the applied mutations.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("donors", "", "directory of donor shaders")
	generateCmd.Flags().String("out", "out", "output directory for variants")
	generateCmd.Flags().Int("count", 10, "number of variants")
	generateCmd.Flags().Int64("seed", 0, "seed of the first variant; variant i uses seed+i")
	generateCmd.Flags().String("config", "", "path to glfuzz.toml (default: searched upwards from the reference)")
	generateCmd.Flags().String("preset", "", "probability preset (default|small|aggressive)")
	generateCmd.Flags().Int("jobs", 0, "max parallel variants (0=GOMAXPROCS)")
	generateCmd.Flags().String("ui", "auto", "progress UI mode (auto|on|off)")
	generateCmd.Flags().Bool("cache", false, "reuse variants from the user cache directory")
	generateCmd.Flags().StringSlice("passes", nil, "passes to run (default: all)")
	generateCmd.Flags().String("timings-format", "text", "timings output format (text|json)")
}

type generateFlags struct {
	donors        string
	out           string
	count         int
	seed          int64
	configPath    string
	preset        string
	jobs          int
	ui            uiMode
	cache         bool
	passes        []string
	timings       bool
	timingsFormat string
	quiet         bool
	maxDiag       int
}

func readGenerateFlags(cmd *cobra.Command) (generateFlags, error) {
	var f generateFlags
	var err error
	flags := cmd.Flags()
	if f.donors, err = flags.GetString("donors"); err != nil {
		return f, err
	}
	if f.out, err = flags.GetString("out"); err != nil {
		return f, err
	}
	if f.count, err = flags.GetInt("count"); err != nil {
		return f, err
	}
	if f.count <= 0 {
		return f, fmt.Errorf("--count must be positive, got %d", f.count)
	}
	if f.seed, err = flags.GetInt64("seed"); err != nil {
		return f, err
	}
	if f.configPath, err = flags.GetString("config"); err != nil {
		return f, err
	}
	if f.preset, err = flags.GetString("preset"); err != nil {
		return f, err
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return f, err
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	if f.cache, err = flags.GetBool("cache"); err != nil {
		return f, err
	}
	if f.passes, err = flags.GetStringSlice("passes"); err != nil {
		return f, err
	}
	if f.timingsFormat, err = flags.GetString("timings-format"); err != nil {
		return f, err
	}
	if f.timingsFormat != "text" && f.timingsFormat != "json" {
		return f, errInvalidFlag("--timings-format", f.timingsFormat, "text|json")
	}
	root := cmd.Root().PersistentFlags()
	if f.timings, err = root.GetBool("timings"); err != nil {
		return f, err
	}
	if f.quiet, err = root.GetBool("quiet"); err != nil {
		return f, err
	}
	if f.maxDiag, err = root.GetInt("max-diagnostics"); err != nil {
		return f, err
	}
	return f, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	refPath := args[0]

	flags, err := readGenerateFlags(cmd)
	if err != nil {
		return err
	}
	kind, err := driver.KindFromPath(refPath)
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "generate", 0).
		WithExtra("reference", refPath)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	timer := observ.NewTimer()
	variants, err := generate(ctx, timer, refPath, kind, flags, cmd)
	if err != nil {
		span.End("failed: " + err.Error())
		dumpTraceOnFailure(cmd, err)
		return err
	}
	span.End(fmt.Sprintf("%d variants", len(variants)))

	if !flags.quiet {
		printGenerateSummary(cmd, variants, flags.out)
	}
	if flags.timings {
		return driver.WriteTimings(cmd.ErrOrStderr(), "generate", refPath, timer.Report(), flags.timingsFormat == "json")
	}
	return nil
}

func generate(ctx context.Context, timer *observ.Timer, refPath string, kind ast.ShaderKind, flags generateFlags, cmd *cobra.Command) ([]driver.Variant, error) {
	var cfg config.Config
	err := timer.Measure("config", func() (string, error) {
		loaded, note, err := loadConfig(refPath, kind, flags)
		cfg = loaded
		return note, err
	})
	if err != nil {
		return nil, err
	}

	var ref *driver.ParseResult
	err = timer.Measure("parse", func() (string, error) {
		res, err := driver.Parse(refPath, kind, flags.maxDiag)
		if err != nil {
			return "", err
		}
		ref = res
		return fmt.Sprintf("%d items", len(res.Prog.Items)), res.Err()
	})
	if err != nil {
		return nil, err
	}

	opts := driver.Options{
		Reference: ref.Prog,
		RefHash:   driver.Digest(ref.File.Hash),
		Config:    cfg,
		Passes:    flags.passes,
		Count:     flags.count,
		Seed:      flags.seed,
		Jobs:      flags.jobs,
	}

	if flags.donors != "" {
		err = timer.Measure("donors", func() (string, error) {
			files, err := driver.LoadDonors(ctx, flags.donors, kind, flags.maxDiag, flags.jobs)
			if err != nil {
				return "", err
			}
			broken := reportBrokenDonors(cmd, files, flags.quiet)
			opts.Donors = driver.Sources(files)
			opts.DonorsHash = driver.DonorsDigest(files)
			return fmt.Sprintf("%d donors, %d skipped", len(opts.Donors), broken), nil
		})
		if err != nil {
			return nil, err
		}
	}

	if flags.cache {
		cache, err := driver.OpenCache("glfuzz")
		if err != nil {
			return nil, err
		}
		opts.Cache = cache
	}

	base := strings.TrimSuffix(filepath.Base(refPath), filepath.Ext(refPath))
	var variants []driver.Variant
	err = timer.Measure("mutate", func() (string, error) {
		var err error
		if shouldUseTUI(flags.ui) {
			variants, err = runGenerateWithUI(ctx, "generating "+filepath.Base(refPath), base, opts)
		} else {
			variants, err = driver.Generate(ctx, opts)
		}
		return fmt.Sprintf("%d variants", len(variants)), err
	})
	if err != nil {
		return nil, err
	}

	err = timer.Measure("write", func() (string, error) {
		paths, err := driver.WriteVariants(flags.out, base, driver.Ext(kind), refPath, variants)
		return fmt.Sprintf("%d files", 2*len(paths)), err
	})
	if err != nil {
		return nil, err
	}
	return variants, nil
}

// loadConfig resolves the configuration: an explicit --config, then a
// glfuzz.toml found upwards from the reference, then the defaults. A
// --preset replaces the probabilities last.
func loadConfig(refPath string, kind ast.ShaderKind, flags generateFlags) (config.Config, string, error) {
	cfg := config.Default(kind)
	note := "defaults"
	path := flags.configPath
	if path == "" {
		found, ok, err := config.FindConfig(filepath.Dir(refPath))
		if err != nil {
			return cfg, "", err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		loaded, err := config.Load(path, kind)
		if err != nil {
			return cfg, "", err
		}
		cfg, note = loaded, path
	}
	if flags.preset != "" {
		probs, err := config.Preset(flags.preset)
		if err != nil {
			return cfg, "", err
		}
		cfg.Probabilities = probs
		note += ", preset " + flags.preset
	}
	if cfg.Params.ShaderKind != kind {
		return cfg, "", fmt.Errorf("%w: config is for %s shaders, reference is %s",
			errKindMismatch, cfg.Params.ShaderKind, kind)
	}
	return cfg, note, nil
}

var errKindMismatch = errors.New("shader kind mismatch")

func reportBrokenDonors(cmd *cobra.Command, files []driver.DonorFile, quiet bool) int {
	broken := 0
	warn := color.New(color.FgYellow)
	for i := range files {
		if !files[i].Broken() {
			continue
		}
		broken++
		if quiet {
			continue
		}
		_, _ = warn.Fprintf(cmd.ErrOrStderr(), "skipping donor %s", files[i].Path)
		if files[i].Bag != nil {
			if items := files[i].Bag.Items(); len(items) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), ": %s", items[0].Message)
			}
		}
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	return broken
}

func printGenerateSummary(cmd *cobra.Command, variants []driver.Variant, outDir string) {
	cached, mutations := 0, 0
	for _, v := range variants {
		if v.Cached {
			cached++
		}
		mutations += len(v.Applied)
	}
	out := cmd.OutOrStdout()
	ok := color.New(color.FgGreen, color.Bold)
	_, _ = ok.Fprintf(out, "generated %d variants", len(variants))
	fmt.Fprintf(out, " in %s (%d mutations", outDir, mutations)
	if cached > 0 {
		fmt.Fprintf(out, ", %s", color.CyanString("%d cached", cached))
	}
	fmt.Fprintln(out, ")")
}
