package transform

import (
	"errors"
	"strings"
	"testing"
)

func TestESBuild(t *testing.T) {
	tt := []struct {
		name     string
		src      string
		contains []string
		missing  []string
		wantErr  error
	}{
		{
			name:     "default export",
			src:      "export default (request, response) => response.send('ok');",
			contains: []string{"module.exports"},
			missing:  []string{"export default"},
		},
		{
			name: "imports become require",
			src: `import db from "kvstore";
export default async (request) => db.get("k");`,
			contains: []string{`require("kvstore")`, "async"},
			missing:  []string{"import db"},
		},
		{
			name:     "commonjs passes through",
			src:      "module.exports = function (req, res) { return res.send(); };",
			contains: []string{"module.exports"},
		},
		{
			name:    "syntax error",
			src:     "export default (request => {",
			wantErr: ErrSyntax,
		},
	}

	tr := New(Config{})
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			out, err := tr.Transform("handler.js", []byte(tc.src))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				if !strings.Contains(err.Error(), "handler.js:1:") {
					t.Fatalf("expected location in error, got %v", err)
				}
				return
			}

			for _, s := range tc.contains {
				if !strings.Contains(string(out), s) {
					t.Fatalf("expected output to contain %q, got:\n%s", s, out)
				}
			}
			for _, s := range tc.missing {
				if strings.Contains(string(out), s) {
					t.Fatalf("expected output not to contain %q, got:\n%s", s, out)
				}
			}
		})
	}
}

func TestFunc(t *testing.T) {
	var gotPath string
	f := Func(func(path string, src []byte) ([]byte, error) {
		gotPath = path
		return append([]byte("// wrapped\n"), src...), nil
	})

	out, err := f.Transform("a.js", []byte("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "a.js" || string(out) != "// wrapped\nx" {
		t.Fatalf("unexpected result %q for %q", out, gotPath)
	}

	out, _ = Identity.Transform("a.js", []byte("same"))
	if string(out) != "same" {
		t.Fatalf("Identity changed the source: %q", out)
	}
}
