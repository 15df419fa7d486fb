package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/KNICEX/binance-signals/internal/repo"
	"github.com/KNICEX/binance-signals/internal/service/exchange/binance"
	"github.com/KNICEX/binance-signals/internal/service/monitor"
	"github.com/KNICEX/binance-signals/internal/service/notification/render"
	"github.com/KNICEX/binance-signals/internal/service/relay"
	"github.com/KNICEX/binance-signals/ioc"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func initViper() {
	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.yaml", "specify config file")
	pflag.Parse()

	// .env 不存在时忽略
	_ = godotenv.Load()

	viper.SetConfigFile(*file)
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	if err := ioc.MergeEnv(); err != nil {
		panic(fmt.Errorf("merge env config: %w", err))
	}
}

func main() {
	initViper()

	logger := ioc.InitLogger()
	db := ioc.InitDB()
	journal := repo.NewNotificationRepo(db)

	exchangeSvc := binance.NewService(ioc.InitBinanceFuturesCli())
	positionSvc := ioc.InitPositionService(exchangeSvc.PositionService())

	store, templateDir := ioc.InitTemplateStore(logger)
	renderer := render.NewRenderer(store)
	notifier := ioc.InitTelegramNotifier()

	pipeline := relay.NewPipeline(
		relay.NewClassifier(positionSvc, logger),
		renderer,
		notifier,
		logger,
		relay.WithJournal(journal),
	)
	supervisor := ioc.InitSupervisor(exchangeSvc.UserStreamService(), pipeline, logger)
	scheduler := ioc.InitScheduler(supervisor, logger)
	server := ioc.InitWebServer(journal, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return supervisor.Run(ctx)
	})
	eg.Go(func() error {
		return scheduler.Run(ctx)
	})
	eg.Go(func() error {
		return server.Run(ctx)
	})
	if templateDir != nil {
		eg.Go(func() error {
			if err := templateDir.Watch(ctx); err != nil {
				// 监听失败不影响推送, 只是模板修改需要重启生效
				logger.Warn().Err(err).Msg("watch template dir failed")
			}
			return nil
		})
	}

	monitor.NotifyReady(logger)
	logger.Info().Msg("binance signals started")

	err := eg.Wait()
	monitor.NotifyStopping()
	if err != nil {
		logger.Error().Err(err).Msg("binance signals exited with error")
		os.Exit(1)
	}
	logger.Info().Msg("binance signals stopped")
}
