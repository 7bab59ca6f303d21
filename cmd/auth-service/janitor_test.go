package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/pribylovaa/auth-service/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepRevocations(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockRevocationStorage(ctrl)

	now := time.Now().UTC()
	ledger.EXPECT().DeleteExpiredRevocations(gomock.Any(), now).Return(int64(3), nil)
	sweepRevocations(context.Background(), ledger, discardLogger(), now)

	// Ошибка только логируется.
	ledger.EXPECT().DeleteExpiredRevocations(gomock.Any(), now).Return(int64(0), errors.New("db down"))
	sweepRevocations(context.Background(), ledger, discardLogger(), now)
}

func TestStartRevocationJanitor_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockRevocationStorage(ctrl)

	// Никаких вызовов: gomock упадёт на неожиданном DeleteExpiredRevocations.
	startRevocationJanitor(context.Background(), ledger, discardLogger(), 0)
	time.Sleep(20 * time.Millisecond)
}

func TestStartRevocationJanitor_Ticks(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockRevocationStorage(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	ledger.EXPECT().DeleteExpiredRevocations(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time) (int64, error) {
			select {
			case <-done:
			default:
				close(done)
			}
			return 0, nil
		}).MinTimes(1)

	startRevocationJanitor(ctx, ledger, discardLogger(), 5*time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not tick")
	}
	cancel()
	// даём горутине выйти до ctrl.Finish
	time.Sleep(20 * time.Millisecond)
}
