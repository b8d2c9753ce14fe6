package tabular

import (
	"time"

	"epidash/adapters/datareadiness/coercer"
)

// Config describes a tabular record source
type Config struct {
	Source   string                 `json:"source"`    // file path or http(s) URL
	Format   Format                 `json:"format"`    // empty means detect from extension or content type
	Sheet    string                 `json:"sheet"`     // xlsx sheet, empty means the first sheet
	DataPath string                 `json:"data_path"` // gjson path to the row array in JSON sources
	Timeout  time.Duration          `json:"timeout"`
	Coercion coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultConfig returns defaults for a source
func DefaultConfig(source string) Config {
	return Config{
		Source:   source,
		Timeout:  30 * time.Second,
		Coercion: coercer.DefaultCoercionConfig(),
	}
}
