package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// District label spellings vary per source file ("VSKP", "Chitoor", ...), so
// the label -> canonical-name table is loaded configuration, never a constant
// in the engine.
//
// File shape:
//
//	[aliases]
//	VSKP = "Visakhapatnam"
//	Chitoor = "Chittoor"
type aliasFile struct {
	Aliases map[string]string `toml:"aliases"`
}

// LoadAliases reads the TOML alias table. A missing file is not an error:
// labels then pass through as district names unchanged.
func LoadAliases(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	var f aliasFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("config: alias table %s: %w", path, err)
	}
	if f.Aliases == nil {
		f.Aliases = map[string]string{}
	}
	return f.Aliases, nil
}
