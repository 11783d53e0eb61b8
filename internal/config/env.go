package config

import "github.com/ilyakaznacheev/cleanenv"

// Env carries environment overrides applied on top of the config file.
// DSN values in the file may also reference env vars directly via
// ${VAR} expansion.
type Env struct {
	// MartDSN overrides storage.dsn when set, so the same config file works
	// across environments without editing credentials into it.
	MartDSN string `env:"MART_DSN"`

	// MartStorageKind overrides storage.kind when set.
	MartStorageKind string `env:"MART_STORAGE_KIND"`

	// DatadogDisabled force-disables metrics submission regardless of the
	// config file, for local runs without API keys.
	DatadogDisabled bool `env:"MART_DATADOG_DISABLED" env-default:"false"`
}

// ReadEnv reads the environment overrides.
func ReadEnv() (Env, error) {
	var e Env
	if err := cleanenv.ReadEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// Apply merges env overrides into a loaded pipeline config.
func (e Env) Apply(p *Pipeline) {
	if e.MartDSN != "" {
		p.Storage.DSN = e.MartDSN
	}
	if e.MartStorageKind != "" {
		p.Storage.Kind = e.MartStorageKind
	}
	if e.DatadogDisabled {
		p.Metrics.Backend = ""
	}
}
