package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/pribylovaa/auth-service/internal/storage"
)

// startRevocationJanitor запускает фоновую задачу, которая периодически удаляет
// из реестра отзыва записи о токенах с истёкшим сроком. Такие токены и так
// отвергаются по exp, поэтому удаление не возвращает им силу.
func startRevocationJanitor(ctx context.Context, ledger storage.RevocationStorage, log *slog.Logger, period time.Duration) {
	if period <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				sweepRevocations(ctx, ledger, log, time.Now().UTC())
			}
		}
	}()
}

func sweepRevocations(ctx context.Context, ledger storage.RevocationStorage, log *slog.Logger, now time.Time) {
	n, err := ledger.DeleteExpiredRevocations(ctx, now)
	if err != nil {
		log.Error("revocation_janitor_failed", slog.String("err", err.Error()))
		return
	}

	if n > 0 {
		log.Info("revocation_janitor_swept", slog.Int64("deleted", n))
	}
}
