package ioc

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New()

// 环境变量 -> 配置 key, 优先级高于配置文件
var envBindings = map[string]string{
	"BINANCE_API_KEY":    "cex.binance.api_key",
	"BINANCE_API_SECRET": "cex.binance.api_secret",
	"BINANCE_TESTNET":    "cex.binance.testnet",
	"TELEGRAM_TOKEN":     "telegram.token",
	"TELEGRAM_CHAT_ID":   "telegram.chat_id",
	"PORT":               "http.port",
	"WATCHDOG_URL":       "watchdog.url",
	"TEMPLATES_DIR":      "templates.dir",
	"DB_DSN":             "db.dsn",
	"LOG_LEVEL":          "log.level",
}

// EnvOverrides builds a nested config map from the process environment,
// suitable for viper.MergeConfigMap. viper.UnmarshalKey ignores AutomaticEnv
// for nested keys, so overrides are merged into the config tree instead.
func EnvOverrides(lookup func(string) (string, bool)) map[string]any {
	out := map[string]any{}
	for env, key := range envBindings {
		v, ok := lookup(env)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		setNested(out, strings.Split(key, "."), strings.TrimSpace(v))
	}
	return out
}

func setNested(m map[string]any, path []string, v any) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}

// MergeEnv merges environment overrides over the loaded config file.
func MergeEnv() error {
	overrides := EnvOverrides(os.LookupEnv)
	if len(overrides) == 0 {
		return nil
	}
	return viper.MergeConfigMap(overrides)
}

// unmarshalKey 读取并校验配置, 启动阶段配置错误直接 panic
func unmarshalKey(key string, cfg any) {
	if err := viper.UnmarshalKey(key, cfg); err != nil {
		panic(fmt.Errorf("unmarshal config %s: %w", key, err))
	}
	if err := validate.Struct(cfg); err != nil {
		panic(fmt.Errorf("invalid config %s: %w", key, err))
	}
}
