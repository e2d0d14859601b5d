//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"wxhm/internal"
	"wxhm/internal/assets"
	"wxhm/internal/controllers"
	"wxhm/internal/ledger"
	"wxhm/internal/notify"
	"wxhm/internal/providers"
	"wxhm/internal/services"
	"wxhm/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewDatabaseProvider,

		assets.NewImageNormalizer,
		assets.NewStore,
		assets.NewFileShelf,
		ledger.NewSQLiteLedger,
		notify.NewConfigRepository,
		notify.NewWeChatChannel,
		notify.NewDispatcher,
		services.NewGroupService,
		services.NewStatsService,

		controllers.NewGroupController,
		controllers.NewAdminController,
		controllers.NewStatsController,
		controllers.NewNoticeController,
		controllers.NewFilesController,
		controllers.NewHealthController,
		internal.NewControllers,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil, nil
}
