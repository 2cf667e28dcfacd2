// notify-sweep runs one debt reminder sweep and exits. It is meant for a scheduled job
// when the API runs without NOTIFICATION_HOUR.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/notifications"
	"github.com/ucond/ucond_backend/utils"
)

func main() {
	logger := config.GetLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper, err := notifications.NewDefaultSweeper()
	if err != nil {
		config.LogError(logger, "notify-sweep", "main", "NewDefaultSweeper", nil, err)
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry(ctx, 3)

	report, err := notifications.RunExclusive(ctx, sweeper)
	config.CloseRedis()
	_ = config.CloseDB()

	if errors.Is(err, utils.ErrLockNotObtained) {
		logger.Info("another sweep is running; nothing to do")
		return
	}
	if report != nil {
		logger.WithFields(logrus.Fields{
			"found":   report.Found,
			"sent":    report.Sent,
			"skipped": report.Skipped,
			"failed":  len(report.Failures),
		}).Info("[notificaciones.done]")
	}
	if err != nil {
		config.LogError(logger, "notify-sweep", "main", "Run", nil, err)
		os.Exit(1)
	}
}
