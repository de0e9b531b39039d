// Package pagecacheconfig loads on-disk YAML configuration: viper.New, a
// fixed config type with mapstructure tags, ReadInConfig + Unmarshal,
// errors wrapped with fmt.Errorf("...: %w").
package pagecacheconfig

import (
	"fmt"

	"github.com/spf13/viper"
)

// FileConfig mirrors the on-disk shape. EvictorKind selects which
// evictor.* implementation the host wires up; LockStripes defaults to
// pagecache.DefaultLockStripes when zero.
type FileConfig struct {
	Storage struct {
		Dir           string  `mapstructure:"dir"`
		PageSize      int     `mapstructure:"page_size"`
		CacheSizeRaw  int64   `mapstructure:"cache_size_bytes"`
		OverheadRatio float64 `mapstructure:"overhead_ratio"`
		Evictor       string  `mapstructure:"evictor"`
		LockStripes   int     `mapstructure:"lock_stripes"`
	} `mapstructure:"storage"`
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*FileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg FileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Storage.Evictor == "" {
		cfg.Storage.Evictor = "clock"
	}
	return &cfg, nil
}
