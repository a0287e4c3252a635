//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/Lalithx4/agroai/internal/bootstrap"
	"github.com/Lalithx4/agroai/internal/domain/cache"
	"github.com/Lalithx4/agroai/internal/domain/calendar"
	"github.com/Lalithx4/agroai/internal/domain/chat"
	"github.com/Lalithx4/agroai/internal/domain/pest"
	"github.com/Lalithx4/agroai/internal/domain/scan"
	"github.com/Lalithx4/agroai/internal/domain/syncqueue"
	"github.com/Lalithx4/agroai/internal/domain/weather"
	"github.com/Lalithx4/agroai/internal/infra/agroapi"
	"github.com/Lalithx4/agroai/internal/infra/config"
	httpiface "github.com/Lalithx4/agroai/internal/interface/http"
	"github.com/Lalithx4/agroai/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideStore,
		provideKV,
		provideCacheConfig,
		provideAPIClient,
		provideSyncConfig,
		provideSyncRemote,
		provideMonitor,
		provideImageStore,
		provideScanConfig,
		provideChatConfig,
		provideWeatherConfig,
		cache.NewService,
		syncqueue.NewQueue,
		scan.NewService,
		chat.NewService,
		weather.NewService,
		pest.NewService,
		calendar.NewService,
		wire.Bind(new(scan.RemoteAnalyzer), new(*agroapi.Client)),
		wire.Bind(new(chat.RemoteChat), new(*agroapi.Client)),
		wire.Bind(new(weather.RemoteAdvisor), new(*agroapi.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
