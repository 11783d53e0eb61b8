package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pipeline is the full config for one mart rebuild.
type Pipeline struct {
	Job     string  `json:"job" yaml:"job"`
	Source  Source  `json:"source" yaml:"source"`
	Parser  Parser  `json:"parser" yaml:"parser"`
	Storage Storage `json:"storage" yaml:"storage"`
	Runtime Runtime `json:"runtime" yaml:"runtime"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

type Source struct {
	Kind string      `json:"kind" yaml:"kind"` // "file"
	File *FileSource `json:"file,omitempty" yaml:"file,omitempty"`
}

type FileSource struct {
	Path string `json:"path" yaml:"path"`
}

type Parser struct {
	Kind    string  `json:"kind" yaml:"kind"` // "csv" | "jsonl"
	Options Options `json:"options" yaml:"options"`
}

type Storage struct {
	// Kind selects a registered backend: "postgres" | "sqlite" | "mssql".
	Kind string `json:"kind" yaml:"kind"`
	DSN  string `json:"dsn" yaml:"dsn"` // env vars are expanded at run time
}

type Runtime struct {
	// NormalizeWorkers shards row normalization. <=0 means one worker.
	NormalizeWorkers int `json:"normalize_workers" yaml:"normalize_workers"`
}

type Metrics struct {
	// Backend: "datadog" | "" (none).
	Backend    string   `json:"backend" yaml:"backend"`
	Tags       []string `json:"tags" yaml:"tags"`
	FlushEvery int      `json:"flush_every_seconds" yaml:"flush_every_seconds"`
}

// Load reads a pipeline config file. The format follows the extension:
// .yaml/.yml decode as YAML, anything else as JSON.
func Load(path string) (Pipeline, error) {
	var cfg Pipeline

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	return cfg, cfg.validate()
}

func (p Pipeline) validate() error {
	if p.Source.Kind != "file" || p.Source.File == nil || p.Source.File.Path == "" {
		return fmt.Errorf("source.kind=file and source.file.path are required")
	}
	if p.Parser.Kind != "csv" && p.Parser.Kind != "jsonl" {
		return fmt.Errorf("parser.kind must be csv or jsonl")
	}
	if p.Storage.Kind == "" {
		return fmt.Errorf("storage.kind must be set")
	}
	return nil
}
