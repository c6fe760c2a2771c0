package worker

import (
	"github.com/robfig/cron/v3"
)

// IJob a schedulable job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

// BaseJob cron driven job skeleton; Run skips a tick while the previous one
// is still going.
type BaseJob struct {
	Cron      *cron.Cron
	IsRunning bool
	OnWork    OnWork
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	job.Cron.Stop()
	return nil
}

func (job *BaseJob) Run() {
	if job.IsRunning {
		return
	}

	job.IsRunning = true

	job.OnWork()

	job.IsRunning = false
}
