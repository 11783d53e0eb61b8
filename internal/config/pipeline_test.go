package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "pipeline.json", `{
		"job": "used-cars",
		"source": {"kind": "file", "file": {"path": "listings.csv"}},
		"parser": {"kind": "csv", "options": {"has_header": true, "comma": ";"}},
		"storage": {"kind": "postgres", "dsn": "postgres://mart:${MART_PASSWORD}@db/mart"},
		"runtime": {"normalize_workers": 4},
		"metrics": {"backend": "datadog", "tags": ["team:data"], "flush_every_seconds": 10}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Job != "used-cars" {
		t.Fatalf("job = %q", cfg.Job)
	}
	if cfg.Source.File == nil || cfg.Source.File.Path != "listings.csv" {
		t.Fatalf("source = %+v", cfg.Source)
	}
	if cfg.Parser.Kind != "csv" || !cfg.Parser.Options.Bool("has_header", false) {
		t.Fatalf("parser = %+v", cfg.Parser)
	}
	if cfg.Parser.Options.Rune("comma", ',') != ';' {
		t.Fatalf("comma = %q", cfg.Parser.Options.Rune("comma", ','))
	}
	if cfg.Storage.Kind != "postgres" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Runtime.NormalizeWorkers != 4 {
		t.Fatalf("workers = %d", cfg.Runtime.NormalizeWorkers)
	}
	if cfg.Metrics.Backend != "datadog" || cfg.Metrics.FlushEvery != 10 {
		t.Fatalf("metrics = %+v", cfg.Metrics)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "pipeline.yaml", `
job: used-cars
source:
  kind: file
  file:
    path: listings.jsonl
parser:
  kind: jsonl
storage:
  kind: sqlite
  dsn: mart.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Parser.Kind != "jsonl" || cfg.Storage.Kind != "sqlite" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Source.File == nil || cfg.Source.File.Path != "listings.jsonl" {
		t.Fatalf("source = %+v", cfg.Source)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing_source", `{"parser":{"kind":"csv"},"storage":{"kind":"sqlite"}}`},
		{"bad_parser", `{"source":{"kind":"file","file":{"path":"x"}},"parser":{"kind":"xml"},"storage":{"kind":"sqlite"}}`},
		{"missing_storage", `{"source":{"kind":"file","file":{"path":"x"}},"parser":{"kind":"csv"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "bad.json", tc.body)
			if _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestOptionsAccessors(t *testing.T) {
	o := Options{
		"has_header": "true",
		"comma":      ";",
		"workers":    float64(3), // JSON numbers decode as float64
		"header_map": map[string]any{"Brand": "manufacturer", "N": 7},
	}

	if !o.Bool("has_header", false) {
		t.Fatal("Bool string coercion failed")
	}
	if o.Bool("absent", true) != true {
		t.Fatal("Bool default ignored")
	}
	if o.Rune("comma", ',') != ';' {
		t.Fatal("Rune failed")
	}
	if o.Rune("absent", ',') != ',' {
		t.Fatal("Rune default ignored")
	}
	if o.Int("workers", 1) != 3 {
		t.Fatal("Int float coercion failed")
	}
	if o.String("comma", "") != ";" {
		t.Fatal("String failed")
	}

	hm := o.StringMap("header_map")
	if hm["Brand"] != "manufacturer" || hm["N"] != "7" {
		t.Fatalf("StringMap = %v", hm)
	}
	if len(o.StringMap("absent")) != 0 {
		t.Fatal("absent StringMap must be empty, not nil-panicky")
	}

	var nilOpts Options
	if nilOpts.Any("x") != nil || nilOpts.Bool("x", true) != true {
		t.Fatal("nil Options must behave like empty")
	}
}

func TestEnvApply(t *testing.T) {
	t.Setenv("MART_DSN", "postgres://override@db/mart")
	t.Setenv("MART_STORAGE_KIND", "postgres")
	t.Setenv("MART_DATADOG_DISABLED", "true")

	e, err := ReadEnv()
	if err != nil {
		t.Fatal(err)
	}

	p := Pipeline{}
	p.Storage.Kind = "sqlite"
	p.Storage.DSN = "mart.db"
	p.Metrics.Backend = "datadog"

	e.Apply(&p)

	if p.Storage.DSN != "postgres://override@db/mart" {
		t.Fatalf("dsn = %q", p.Storage.DSN)
	}
	if p.Storage.Kind != "postgres" {
		t.Fatalf("kind = %q", p.Storage.Kind)
	}
	if p.Metrics.Backend != "" {
		t.Fatalf("metrics backend = %q, want disabled", p.Metrics.Backend)
	}
}

func TestEnvApplyNoOverrides(t *testing.T) {
	p := Pipeline{}
	p.Storage.Kind = "sqlite"
	p.Storage.DSN = "mart.db"

	Env{}.Apply(&p)

	if p.Storage.Kind != "sqlite" || p.Storage.DSN != "mart.db" {
		t.Fatalf("empty env must not clobber: %+v", p.Storage)
	}
}
