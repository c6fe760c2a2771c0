package watcher

import (
	"context"
	"time"

	"aqueduct/core"
	"aqueduct/internal/aqueduct"
	"aqueduct/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker scans every borrower's health factor and logs the ones that dropped
// below the liquidation threshold, so liquidators can act on them.
type Worker struct {
	worker.BaseJob
	Config         *core.Config
	ShareStore     core.IShareStore
	AccountService core.IAccountService
}

// New new health watcher worker
func New(cfg *core.Config, shareStore core.IShareStore, accountService core.IAccountService) *Worker {
	job := Worker{
		Config:         cfg,
		ShareStore:     shareStore,
		AccountService: accountService,
	}

	l, _ := time.LoadLocation(job.Config.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 30s"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "watcher")

	borrowers, err := w.ShareStore.Users(ctx, core.ShareSideVariableDebt)
	if err != nil {
		log.Errorln(err)
		return err
	}

	now := time.Now()
	for _, userID := range borrowers {
		position, err := w.AccountService.Position(ctx, userID, now)
		if err != nil {
			log.WithField("user", userID).Errorln(err)
			continue
		}

		if position.Liquidatable(aqueduct.HealthFactorLiquidationThreshold) {
			log.WithField("user", userID).
				WithField("health_factor", position.HealthFactor).
				WithField("debt_value", position.TotalDebtValue).
				Infoln("position below liquidation threshold")
		}
	}

	return nil
}
