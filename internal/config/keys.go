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
	key    string
	typ    keyType
	env    string
	secret bool
	apply  func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "REC_SERVER_PORT",
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
	},
	{
		key: "storage.data_dir", typ: kString, env: "REC_STORAGE_DATA_DIR",
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
	},
	{
		key: "model.path", typ: kString, env: "REC_MODEL_PATH",
		apply: func(cfg *Config, v any) { cfg.Model.Path = v.(string) },
	},
	{
		key: "model.type", typ: kString, env: "REC_MODEL_TYPE",
		apply: func(cfg *Config, v any) { cfg.Model.Type = v.(string) },
	},
	{
		key: "model.reload_interval", typ: kString, env: "REC_MODEL_RELOAD_INTERVAL",
		apply: func(cfg *Config, v any) { cfg.Model.ReloadInterval = v.(string) },
	},
	{
		key: "log.level", typ: kString, env: "REC_LOG_LEVEL",
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
	{
		key: "api.token", typ: kString, env: "REC_API_TOKEN",
		secret: true,
		apply:  func(cfg *Config, v any) { cfg.API.Token = v.(string) },
	},
}

func applyBackend(cfg *Config, b backend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
