package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Scrape struct {
		TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		HostRatePerSec float64 `yaml:"host_rate_per_sec" json:"host_rate_per_sec"`
		HostRateBurst  int     `yaml:"host_rate_burst" json:"host_rate_burst"`
	} `yaml:"scrape" json:"scrape"`

	Scheduler struct {
		IntervalSeconds   int `yaml:"interval_seconds" json:"interval_seconds"`
		MaxConcurrentRuns int `yaml:"max_concurrent_runs" json:"max_concurrent_runs"`
	} `yaml:"scheduler" json:"scheduler"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
