package scan

import (
	"slices"
	"testing"

	"github.com/ardnew/envsolve/syntax"
)

func TestToken_Scan(t *testing.T) {
	node := NewToken("process.env")

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"no token", "const a = 1;", nil},
		{"dot", "const a = process.env.A;", []string{"A"}},
		{"bracket double", `x = process.env["A"]`, []string{"A"}},
		{"bracket single", `x = process.env['A']`, []string{"A"}},
		{"bracket backtick", "x = process.env[`A`]", []string{"A"}},
		{"bracket padded", `x = process.env[ "A" ]`, []string{"A"}},
		{"computed key ignored", `x = process.env[key]`, nil},
		{"unterminated bracket", `x = process.env["A"`, nil},
		{"dot at end of text", "process.env.A", []string{"A"}},
		{"token at end of text", "x = process.env", nil},
		{"bare token", "console.log(process.env)\nprocess.env.B\n", []string{"B"}},
		{"empty dot name", "process.env. ", nil},
		{"boundaries", "f(process.env.A, process.env.B;{process.env.C}process.env.D:process.env.E\r\nprocess.env.F\tx",
			[]string{"A", "B", "C", "D", "E", "F"}},
		{"order and duplicates", `process.env.C; process.env["A"]; process.env.C`, []string{"C", "A", "C"}},
		{"destructure", "const { A } = process.env;", nil},
		{"bracket db host", `process.env["DB_HOST"] + process.env["DB_HOST"]`, []string{"DB_HOST", "DB_HOST"}},
		{"dot stops at comma", "f(process.env.DB_HOST, 1)", []string{"DB_HOST"}},
		{"dot stops at newline", "x = process.env.DB_HOST\n", []string{"DB_HOST"}},
		{"dot stops at brace", "{ host: process.env.DB_HOST}", []string{"DB_HOST"}},
		{"a b a", "process.env.A; g(); process.env.B; h(); process.env.A;", []string{"A", "B", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := node.Scan(tt.text); !slices.Equal(got, tt.want) {
				t.Errorf("Scan(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestToken_Accessors(t *testing.T) {
	py := NewToken("os.environ", WithAccessors("get", "setdefault", "pop"))

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"get", `os.environ.get("A")`, []string{"A"}},
		{"get default", `os.environ.get('A', "fallback")`, []string{"A"}},
		{"get spaced", `os.environ.get( "A" )`, []string{"A"}},
		{"setdefault", `os.environ.setdefault("A", "x")`, []string{"A"}},
		{"computed argument", `os.environ.get(name)`, []string{"get(name)"}},
		{"mixed", "a = os.environ['A']\nb = os.environ.get(\"B\")\nc = os.environ.pop('A')\n",
			[]string{"A", "B", "A"}},
		{"not an accessor", `os.environ.getenv`, []string{"getenv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := py.Scan(tt.text); !slices.Equal(got, tt.want) {
				t.Errorf("Scan(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestToken_WithBoundary(t *testing.T) {
	text := "process.env.A)+process.env.B"

	if got, want := NewToken("process.env").Scan(text), []string{"A)+process.env.B"}; !slices.Equal(got, want) {
		t.Errorf("default boundary: got %q, want %q", got, want)
	}

	custom := NewToken("process.env", WithBoundary(")+"))
	if got, want := custom.Scan(text), []string{"A", "B"}; !slices.Equal(got, want) {
		t.Errorf("custom boundary: got %q, want %q", got, want)
	}

	reset := NewToken("process.env", WithBoundary(")"), WithBoundary(""))
	if got, want := reset.Scan("process.env.A B"), []string{"A"}; !slices.Equal(got, want) {
		t.Errorf("reset boundary: got %q, want %q", got, want)
	}
}

func TestForSyntax(t *testing.T) {
	tests := []struct {
		runtime string
		text    string
		want    []string
	}{
		{"nodejs18.x", "process.env.A; process.env['B']", []string{"A", "B"}},
		{"python3.12", "os.environ['A']\nos.environ.get('B')\n", []string{"A", "B"}},
		{"ruby3.3", "ENV['A']\nENV.fetch('B', nil)\n", []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.runtime, func(t *testing.T) {
			row, err := syntax.Lookup(tt.runtime)
			if err != nil {
				t.Fatal(err)
			}

			if got := ForSyntax(row).Scan(tt.text); !slices.Equal(got, tt.want) {
				t.Errorf("Scan(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFunc(t *testing.T) {
	var s Scanner = Func(func(string) []string { return []string{"X"} })

	if got := s.Scan("anything"); !slices.Equal(got, []string{"X"}) {
		t.Errorf("got %q", got)
	}
}

func TestToken_EmptyToken(t *testing.T) {
	if got := NewToken("").Scan("process.env.A"); got != nil {
		t.Errorf("got %q, want nil", got)
	}
}
