package services

import (
	"context"
	"log/slog"
)

// resyncAfterWrite перечитывает состояние после записи. Ошибка только логируется:
// запись уже выполнена, поэтому отмена запроса на перечитывание не влияет.
func resyncAfterWrite(ctx context.Context, syncer Resyncer, logger *slog.Logger) {
	if syncer == nil {
		return
	}
	if err := syncer.Resync(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("resync after write failed", "error", err)
	}
}
