package ioc

import (
	"github.com/KNICEX/binance-signals/internal/service/notification/render"
	"github.com/rs/zerolog"
)

// InitTemplateStore 配置了模板目录时优先使用目录中的模板, 缺失的回退到内置模板.
// 返回的 DirStore 需要 Watch 才能感知文件变化, 未配置目录时为 nil
func InitTemplateStore(logger zerolog.Logger) (render.Store, *render.DirStore) {
	type Config struct {
		Dir string `mapstructure:"dir" validate:"omitempty,dir"`
	}

	var cfg Config
	unmarshalKey("templates", &cfg)
	if cfg.Dir == "" {
		return render.DefaultStore(), nil
	}

	dir := render.NewDirStore(cfg.Dir, logger)
	return render.ChainStore{dir, render.DefaultStore()}, dir
}
