package solve

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/envsolve/pkg"
	"github.com/ardnew/envsolve/scan"
	"github.com/ardnew/envsolve/source"
	"github.com/ardnew/envsolve/syntax"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	return root
}

var shared = map[string]string{"A": "1", "B": "2", "C": "3"}

func TestSolve_RoundTrip(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/users.js": "import { db } from './db';\nexport const main = () => process.env.A;\n",
		"src/db.js":    "export const db = process.env['C'];\n",
		"src/ping.js":  "export const main = () => 'pong';\n",
	})

	res, err := Solve(context.Background(), Input{
		Runtime: "nodejs18.x",
		Root:    root,
		Functions: []Function{
			{Name: "users", Handler: "src/users.main"},
			{Name: "ping", Handler: "src/ping.main"},
		},
		Config: shared,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if want := map[string]string{"A": "1", "C": "3"}; !maps.Equal(res.Environments["users"], want) {
		t.Errorf("users = %v, want %v", res.Environments["users"], want)
	}

	if env, ok := res.Environments["ping"]; !ok || len(env) != 0 {
		t.Errorf("ping = %v (present=%v), want empty map", env, ok)
	}

	if !res.ClearShared {
		t.Error("ClearShared = false, want true")
	}

	if res.Count() != 2 {
		t.Errorf("Count() = %d, want 2", res.Count())
	}

	if len(res.Usages) != 2 || res.Usages[0].Handler != "users" || res.Usages[1].Handler != "ping" {
		t.Errorf("usages not in function order: %+v", res.Usages)
	}

	if got, want := res.Usages[0].Variables, []string{"C", "A"}; !slices.Equal(got, want) {
		t.Errorf("users variables = %v, want %v", got, want)
	}

	if want := filepath.Join(root, "src", "users.js"); res.Usages[0].File != want {
		t.Errorf("users file = %q, want %q", res.Usages[0].File, want)
	}
}

func TestSolve_Undeclared(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.js": "process.env.A\n",
		"d.js": "process.env.A; process.env.D\n",
	})

	res, err := Solve(context.Background(), Input{
		Runtime: "nodejs",
		Root:    root,
		Functions: []Function{
			{Name: "a", Handler: "a.main"},
			{Name: "d", Handler: "d.main"},
		},
		Config: shared,
	})
	if !errors.Is(err, ErrUndeclaredVariable) {
		t.Fatalf("expected ErrUndeclaredVariable, got %v", err)
	}

	if res.Environments != nil || res.ClearShared {
		t.Errorf("partial result returned: %+v", res)
	}

	var perr *pkg.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *pkg.Error, got %T", err)
	}

	for key, want := range map[string]string{"handler": "d", "variable": "D"} {
		if v, ok := perr.Attr(key); !ok || v.String() != want {
			t.Errorf("%s = %v, want %s", key, v, want)
		}
	}
}

func TestSolve_LocalVariables(t *testing.T) {
	root := writeTree(t, map[string]string{
		"h.py": "x = os.environ['A']\ny = os.environ.get('LOCAL')\n",
	})

	res, err := Solve(context.Background(), Input{
		Runtime: "python3.12",
		Root:    root,
		Functions: []Function{{
			Name:        "h",
			Handler:     "h.handler",
			Environment: map[string]string{"LOCAL": "x"},
		}},
		Config: shared,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if want := map[string]string{"A": "1"}; !maps.Equal(res.Environments["h"], want) {
		t.Errorf("h = %v, want %v", res.Environments["h"], want)
	}
}

func TestSolve_NoMatchingFileExtension(t *testing.T) {
	root := writeTree(t, map[string]string{"handler.py": "pass\n"})

	_, err := Solve(context.Background(), Input{
		Runtime:   "nodejs20.x",
		Root:      root,
		Functions: []Function{{Name: "h", Handler: "handler.main"}},
		Config:    shared,
	})
	if !errors.Is(err, ErrNoMatchingFileExtension) {
		t.Fatalf("expected ErrNoMatchingFileExtension, got %v", err)
	}

	if !strings.Contains(err.Error(), "js, ts") {
		t.Errorf("error %q does not name the candidate suffixes", err)
	}
}

func TestSolve_Errors(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.js":      "process.env.A\n",
		"cyc/x.js":  "import y from './y';\n",
		"cyc/y.js":  "import x from './x';\n",
		"other.txt": "",
	})

	tests := []struct {
		name string
		in   Input
		want error
	}{
		{
			name: "no handlers",
			in:   Input{Runtime: "unknown", Root: "/does/not/exist"},
			want: ErrNoHandlers,
		},
		{
			name: "unsupported runtime",
			in:   Input{Runtime: "java21", Root: root, Functions: []Function{{Name: "a", Handler: "a.main"}}},
			want: syntax.ErrUnsupportedRuntime,
		},
		{
			name: "invalid handler",
			in:   Input{Runtime: "nodejs", Root: root, Functions: []Function{{Name: "a", Handler: "main"}}},
			want: ErrInvalidHandler,
		},
		{
			name: "missing handler file",
			in: Input{Runtime: "nodejs", Root: root, Functions: []Function{
				{Name: "a", Handler: "a.main"},
				{Name: "b", Handler: "b.main"},
			}},
			want: ErrMissingHandlerFile,
		},
		{
			name: "cyclic import",
			in:   Input{Runtime: "nodejs", Root: root, Functions: []Function{{Name: "x", Handler: "cyc/x.main"}}},
			want: source.ErrCyclicImport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Solve(context.Background(), tt.in); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAnalyze_FirstErrorInFunctionOrder(t *testing.T) {
	root := writeTree(t, map[string]string{"ok.js": "process.env.A\n"})

	fns := []Function{{Name: "ok", Handler: "ok.main"}}
	for _, name := range []string{"m1", "m2", "m3", "m4"} {
		fns = append(fns, Function{Name: name, Handler: name + ".main"})
	}

	for range 10 {
		_, err := Analyze(context.Background(), Input{Runtime: "nodejs", Root: root, Functions: fns, Jobs: 4})

		var perr *pkg.Error
		if !errors.As(err, &perr) {
			t.Fatalf("expected *pkg.Error, got %v", err)
		}

		if v, _ := perr.Attr("handler"); v.String() != "m1" {
			t.Fatalf("reported handler %v, want m1", v)
		}
	}
}

func TestAnalyze_ConcurrentEqualsSequential(t *testing.T) {
	files := map[string]string{}
	var fns []Function

	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		upper := strings.ToUpper(name)
		files[name+".ts"] = "import { x } from './lib_" + name + "';\nprocess.env." + upper + "1\n"
		files["lib_"+name+".ts"] = "process.env['" + upper + "2']; process.env." + upper + "1\n"
		fns = append(fns, Function{Name: name, Handler: name + ".handler"})
	}

	root := writeTree(t, files)

	run := func(jobs int) []Usage {
		t.Helper()

		usages, err := Analyze(context.Background(), Input{
			Runtime:   "nodejs",
			Root:      root,
			Functions: fns,
			Jobs:      jobs,
		})
		if err != nil {
			t.Fatal(err)
		}

		return usages
	}

	sequential := run(1)

	for range 5 {
		concurrent := run(len(fns))
		if !slices.EqualFunc(sequential, concurrent, func(a, b Usage) bool {
			return a.Handler == b.Handler && a.File == b.File && slices.Equal(a.Variables, b.Variables)
		}) {
			t.Fatalf("concurrent %+v != sequential %+v", concurrent, sequential)
		}
	}

	if got, want := sequential[0].Variables, []string{"A2", "A1", "A1"}; !slices.Equal(got, want) {
		t.Errorf("a variables = %v, want %v", got, want)
	}
}

func TestAnalyze_Options(t *testing.T) {
	root := writeTree(t, map[string]string{"h.mjs": "anything\n"})

	usages, err := Analyze(context.Background(), Input{
		Runtime:   "nodejs",
		Root:      root,
		Functions: []Function{{Name: "h", Handler: "h.main"}},
		Suffixes:  []string{"mjs"},
		Scanner:   scan.Func(func(string) []string { return []string{"FIXED"} }),
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := usages[0].Variables; !slices.Equal(got, []string{"FIXED"}) {
		t.Errorf("variables = %v, want [FIXED]", got)
	}
}

func TestAnalyze_SuffixOrder(t *testing.T) {
	root := writeTree(t, map[string]string{
		"h.cjs": "process.env.A\n",
		"h.mjs": "process.env.B\n",
	})

	tests := []struct {
		suffixes []string
		want     string
	}{
		{[]string{"cjs", "mjs"}, "h.cjs"},
		{[]string{"mjs", "cjs"}, "h.mjs"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.suffixes, ","), func(t *testing.T) {
			usages, err := Analyze(context.Background(), Input{
				Runtime:   "nodejs",
				Root:      root,
				Functions: []Function{{Name: "h", Handler: "h.main"}},
				Suffixes:  tt.suffixes,
			})
			if err != nil {
				t.Fatal(err)
			}

			if got := filepath.Base(usages[0].File); got != tt.want {
				t.Errorf("entry = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSolve_CodeBetweenImports(t *testing.T) {
	root := writeTree(t, map[string]string{
		"h.js": "import { db } from './db'\n" +
			"const region = process.env.REGION\n" +
			"import { log } from './log'\n" +
			"export const main = () => [db, log, region]\n",
		"db.js":  "export const db = process.env.DB_HOST\n",
		"log.js": "export const log = process.env.LOG_LEVEL\n",
	})

	res, err := Solve(context.Background(), Input{
		Runtime:   "nodejs",
		Root:      root,
		Functions: []Function{{Name: "h", Handler: "h.main"}},
		Config:    map[string]string{"DB_HOST": "db", "REGION": "eu", "LOG_LEVEL": "info"},
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if got, want := res.Usages[0].Variables, []string{"DB_HOST", "REGION", "LOG_LEVEL"}; !slices.Equal(got, want) {
		t.Errorf("variables = %v, want %v", got, want)
	}

	if got := res.Environments["h"]; len(got) != 3 || got["REGION"] != "eu" {
		t.Errorf("environment = %v", got)
	}
}

func TestAnalyze_CustomTable(t *testing.T) {
	root := writeTree(t, map[string]string{"main.go": `x := os.Getenv("TOKEN")` + "\n"})

	table, err := syntax.NewTable(syntax.Syntax{
		Runtime:   "go",
		Token:     "os.Getenv",
		Import:    `import\s+"(.*?)"`,
		PathIndex: 1,
		Suffixes:  []string{"go"},
	})
	if err != nil {
		t.Fatal(err)
	}

	usages, err := Analyze(context.Background(), Input{
		Runtime:   "go1.22",
		Root:      root,
		Functions: []Function{{Name: "m", Handler: "main.Handle"}},
		Table:     table,
	})
	if err != nil {
		t.Fatal(err)
	}

	// os.Getenv("TOKEN") is neither form; the token is followed by '('.
	if len(usages[0].Variables) != 0 {
		t.Errorf("variables = %v, want none", usages[0].Variables)
	}
}

func TestAnalyze_Canceled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.js": "process.env.A\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, Input{Runtime: "nodejs", Root: root, Functions: []Function{{Name: "a", Handler: "a.main"}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
