package components

import (
	"context"

	"salon-booking-api/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		worker.NewReminderWorker,
	),
	fx.Invoke(registerReminderWorker),
)

func registerReminderWorker(lc fx.Lifecycle, w *worker.ReminderWorker) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			w.Start(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
