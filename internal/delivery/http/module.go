package http

import (
	"go.uber.org/fx"

	"traffic-recorder/internal/delivery/http/handler"
	"traffic-recorder/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		handler.NewHealthHandler,
		handler.NewEventHandler,
		handler.NewLogHandler,
		handler.NewRecordingHandler,
		router.NewRouter,
	),
)
