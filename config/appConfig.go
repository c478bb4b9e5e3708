package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"stocksync_api/config/values"
)

type AppConfig struct {
	Sync values.SyncValues `yaml:"sync"`
}

// LoadConfig reads the optional yaml overlay. An empty filename yields the
// defaults only.
func LoadConfig(filename string) (*AppConfig, error) {
	config := &AppConfig{Sync: values.DefaultSyncValues()}
	if filename == "" {
		return config, nil
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	config.Sync = config.Sync.Normalize()
	return config, nil
}
