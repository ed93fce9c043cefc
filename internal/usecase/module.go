package usecase

import "go.uber.org/fx"

var Module = fx.Module("usecase",
	fx.Provide(NewLogUsecase),
	fx.Provide(NewRecordingUsecase),
	fx.Provide(NewIngestUsecase),
)
