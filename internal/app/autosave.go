package app

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/slotbot/core/logger"
)

// startAutosave schedules the periodic full snapshot. A failed save is
// logged and retried on the next tick.
func (a *App) startAutosave() error {
	if a.cfg.Autosave.Spec == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(a.cfg.Autosave.Spec, func() {
		if err := a.svc.SaveAll(); err != nil {
			logger.Store.Error("autosave failed",
				slog.String("event", "autosave"),
				slog.String("err", err.Error()),
			)
			return
		}
		logger.Store.Debug("autosave complete",
			slog.String("event", "autosave"),
		)
	})
	if err != nil {
		return fmt.Errorf("app: autosave schedule %q: %w", a.cfg.Autosave.Spec, err)
	}
	c.Start()
	a.cron = c

	logger.Store.Info("autosave scheduled",
		slog.String("event", "autosave"),
		slog.String("mode", a.cfg.Autosave.Spec),
	)
	return nil
}

func (a *App) stopAutosave() {
	if a.cron == nil {
		return
	}
	ctx := a.cron.Stop()
	<-ctx.Done()
	a.cron = nil
}
