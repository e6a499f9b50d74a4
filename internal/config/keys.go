package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	env   string
	typ   keyType
	apply func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		env: "INTERVU_SERVER_PORT", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
	},
	{
		env: "INTERVU_GENERATOR_BASE_URL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Generator.BaseURL = v.(string) },
	},
	{
		env: "INTERVU_GENERATOR_API_KEY", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Generator.APIKey = v.(string) },
	},
	{
		env: "INTERVU_GENERATOR_MODEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Generator.Model = v.(string) },
	},
	{
		env: "INTERVU_STORAGE_DATA_DIR", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
	},
	{
		env: "INTERVU_LOG_LEVEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
}

func applyEnvOverrides(cfg *Config) error {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			i, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("parsing %s=%q: %w", s.env, raw, err)
			}
			s.apply(cfg, i)
		}
	}
	return nil
}
