package utils

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfigFile reads a YAML, TOML or JSON config file. Nested keys are
// flattened to the environment spelling, so `attio.timeout` becomes ATTIO_TIMEOUT
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	values := make(map[string]string)
	for _, key := range v.AllKeys() {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		values[envKey] = v.GetString(key)
	}

	return NewConfig(values), nil
}
