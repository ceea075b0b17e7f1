package transform_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"glfuzz/internal/ast"
	"glfuzz/internal/inject"
	"glfuzz/internal/parser"
	"glfuzz/internal/rng"
	"glfuzz/internal/transform"
)

// recorder appends its name to a shared log.
func recorder(name string, log *[]string) transform.Func {
	return transform.Func{PassName: name, Fn: func(context.Context, *transform.Env) (transform.Result, error) {
		*log = append(*log, name)
		return transform.Result{}, nil
	}}
}

const registeredForTest = "test_registered_noop"

func init() {
	var sink []string
	transform.Register(recorder(registeredForTest, &sink))
}

func TestRegistry(t *testing.T) {
	if _, ok := transform.Lookup(registeredForTest); !ok {
		t.Fatal("registered transformation not found")
	}
	names := transform.Names()
	if !slices.IsSorted(names) || !slices.Contains(names, registeredForTest) {
		t.Fatalf("names = %v", names)
	}
	if _, err := transform.Resolve([]string{registeredForTest, "nope"}); err == nil || !strings.Contains(err.Error(), `"nope"`) {
		t.Fatalf("Resolve error = %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration did not panic")
		}
	}()
	var sink []string
	transform.Register(recorder(registeredForTest, &sink))
}

func runOrder(t *testing.T, shuffle bool, seed int64) []string {
	t.Helper()
	var log []string
	p := transform.Pipeline{Shuffle: shuffle}
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		p.Steps = append(p.Steps, recorder(n, &log))
	}
	if _, err := p.Run(context.Background(), &transform.Env{Rand: rng.New(seed)}); err != nil {
		t.Fatalf("run: %v", err)
	}
	return log
}

func TestPipelineOrder(t *testing.T) {
	if got := runOrder(t, false, 1); !slices.Equal(got, []string{"a", "b", "c", "d", "e"}) {
		t.Fatalf("unshuffled order = %v", got)
	}
	first := runOrder(t, true, 11)
	if !slices.Equal(first, runOrder(t, true, 11)) {
		t.Fatal("shuffle is not deterministic for a seed")
	}
	sorted := slices.Clone(first)
	slices.Sort(sorted)
	if !slices.Equal(sorted, []string{"a", "b", "c", "d", "e"}) {
		t.Fatalf("shuffle lost steps: %v", first)
	}
}

func TestPipelineErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := transform.Func{PassName: "failing", Fn: func(context.Context, *transform.Env) (transform.Result, error) {
		return transform.Result{}, boom
	}}
	_, err := transform.Pipeline{Steps: []transform.Transformation{failing}}.Run(context.Background(), &transform.Env{})
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "pass failing") {
		t.Fatalf("err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var log []string
	_, err = transform.Pipeline{Steps: []transform.Transformation{recorder("x", &log)}}.Run(ctx, &transform.Env{})
	if !errors.Is(err, context.Canceled) || len(log) != 0 {
		t.Fatalf("cancelled run: err=%v log=%v", err, log)
	}
}

func TestResultRecord(t *testing.T) {
	prog, err := parser.ParseString("t.frag", "void helper() { int a; }\nvoid main() { helper(); }\n", ast.ShaderFragment)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env := &transform.Env{Prog: prog}
	var res transform.Result
	for _, pt := range inject.Find(prog, nil).All() {
		res.Record(env, "p", pt, "")
	}
	if !res.Changed || len(res.Applied) == 0 {
		t.Fatal("nothing recorded")
	}
	if m := res.Applied[0]; m.Function != "helper" || m.String() != "p in helper at block" {
		t.Fatalf("first mutation = %q", m)
	}

	var total transform.Result
	total.Merge(transform.Result{})
	if total.Changed {
		t.Fatal("merging an empty result marked a change")
	}
	total.Merge(res)
	if len(total.Applied) != len(res.Applied) || !total.Changed {
		t.Fatal("merge lost mutations")
	}
}
