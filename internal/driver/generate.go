package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"glfuzz/internal/ast"
	"glfuzz/internal/config"
	_ "glfuzz/internal/controlflow" // регистрирует проходы управления
	"glfuzz/internal/donate"
	"glfuzz/internal/format"
	"glfuzz/internal/opaque"
	"glfuzz/internal/rng"
	"glfuzz/internal/source"
	"glfuzz/internal/trace"
	"glfuzz/internal/transform"
	"glfuzz/internal/types"
)

// ErrNoReference is returned by Generate without a reference program.
var ErrNoReference = errors.New("no reference program")

// Options drive one Generate call.
type Options struct {
	Reference *ast.Program
	// RefHash and DonorsHash key the cache; they are unused without Cache.
	RefHash    Digest
	Donors     []donate.Source
	DonorsHash Digest
	Config     config.Config
	// Passes names the passes to run; empty means DefaultPasses.
	Passes []string
	Count  int
	Seed   int64
	Jobs   int
	Cache  *Cache
	// Observer, when set, receives progress events.
	Observer Observer
}

// Variant is one generated program.
type Variant struct {
	Index   int
	Seed    int64
	Text    string
	Applied []transform.Mutation
	Cached  bool
}

// DefaultPasses lists both donation passes followed by every registered
// transformation.
func DefaultPasses() []string {
	return append([]string{donate.DeadStrategy{}.Name(), donate.LiveStrategy{}.Name()}, transform.Names()...)
}

// steps resolves names. Donation passes hold per-variant donor state, so
// each variant gets fresh ones.
func steps(names []string, donors []donate.Source) ([]transform.Transformation, error) {
	out := make([]transform.Transformation, 0, len(names))
	for _, n := range names {
		switch n {
		case donate.DeadStrategy{}.Name():
			out = append(out, donate.NewPass(donate.DeadStrategy{}, donors))
		case donate.LiveStrategy{}.Name():
			out = append(out, donate.NewPass(donate.LiveStrategy{}, donors))
		default:
			t, err := transform.Resolve([]string{n})
			if err != nil {
				return nil, err
			}
			out = append(out, t...)
		}
	}
	return out, nil
}

// PrepareReference declares "uniform vec2 injectionSwitch;" when opaque
// expressions may read it and prog lacks it.
func PrepareReference(prog *ast.Program, params config.GenerationParams) {
	if !params.InjectionSwitchAvailable || declaresGlobal(prog, opaque.InjectionSwitch) {
		return
	}
	t := types.Vector(types.KindFloat, 2).WithQualifiers(types.Qualifiers{Storage: types.StorageUniform})
	d := prog.Decls.NewVars(source.Span{}, ast.VarDecl{Type: t, Vars: []ast.Declarator{{Name: opaque.InjectionSwitch}}})
	prog.InsertDecls(prog.FirstFunctionIndex(), d)
}

func declaresGlobal(prog *ast.Program, name string) bool {
	for _, d := range prog.Items {
		vd, ok := prog.Decls.VarsOf(d)
		if !ok {
			continue
		}
		for _, v := range vd.Vars {
			if v.Name == name {
				return true
			}
		}
	}
	return false
}

// Render prints a variant with the marker macro prelude.
func Render(prog *ast.Program) string {
	return string(format.Program(prog, format.Options{Prelude: opaque.Prelude}))
}

// Generate produces opts.Count variants of the reference, concurrently.
// Variant i uses the seed opts.Seed+i, so a variant never depends on the
// others or on the number of jobs.
func Generate(ctx context.Context, opts Options) ([]Variant, error) {
	if opts.Reference == nil {
		return nil, ErrNoReference
	}
	if opts.Count <= 0 {
		return nil, nil
	}
	if err := opts.Config.Params.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Config.Probabilities.Validate(); err != nil {
		return nil, err
	}
	names := opts.Passes
	if len(names) == 0 {
		names = DefaultPasses()
	}
	if _, err := steps(names, nil); err != nil {
		return nil, err
	}

	ref := opts.Reference.Clone()
	PrepareReference(ref, opts.Config.Params)

	emit := func(ev VariantEvent) {
		if opts.Observer != nil {
			opts.Observer(ev)
		}
	}
	for i := range opts.Count {
		emit(VariantEvent{Index: i, Seed: opts.Seed + int64(i), Status: VariantQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Variant, opts.Count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, opts.Count))
	for i := range opts.Count {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seed := opts.Seed + int64(i)
			started := time.Now()
			emit(VariantEvent{Index: i, Seed: seed, Status: VariantWorking})
			v, err := generateOne(gctx, ref, names, opts, i, seed)
			ev := VariantEvent{Index: i, Seed: seed, Status: VariantDone, Applied: len(v.Applied), Elapsed: time.Since(started)}
			switch {
			case err != nil:
				ev.Status, ev.Err = VariantFailed, err
			case v.Cached:
				ev.Status = VariantCached
			}
			emit(ev)
			if err != nil {
				return fmt.Errorf("variant %d (seed %d): %w", i, seed, err)
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func generateOne(ctx context.Context, ref *ast.Program, names []string, opts Options, index int, seed int64) (Variant, error) {
	var key Digest
	if opts.Cache != nil {
		key = VariantKey(opts.RefHash, opts.DonorsHash, opts.Config, names, seed)
		var rec VariantRecord
		// повреждённая запись: просто промах
		if ok, err := opts.Cache.Get(key, &rec); err == nil && ok {
			return rec.variant(index), nil
		}
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeVariant, "variant", trace.CurrentSpan(ctx).SpanID).
		WithExtra("seed", strconv.FormatInt(seed, 10))
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	prog := ref.Clone()
	env := &transform.Env{
		Prog:   prog,
		Rand:   rng.New(seed),
		Params: opts.Config.Params,
		Probs:  opts.Config.Probabilities,
	}
	passes, err := steps(names, opts.Donors)
	if err != nil {
		span.End("error")
		return Variant{}, err
	}
	res, err := transform.Pipeline{Steps: passes, Shuffle: true}.Run(ctx, env)
	if err != nil {
		span.End("error")
		return Variant{}, err
	}
	span.WithExtra("applied", strconv.Itoa(len(res.Applied))).End("")

	v := Variant{Index: index, Seed: seed, Text: Render(prog), Applied: res.Applied}
	if opts.Cache != nil {
		if err := opts.Cache.Put(key, recordOf(&v)); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeVariant, "cache", "put failed: "+err.Error(), span.ID())
		}
	}
	return v, nil
}
