package relay

import (
	"context"

	"github.com/KNICEX/binance-signals/internal/schedule"
)

type KeepAliveTask struct {
	supervisor *Supervisor
}

// NewKeepAliveTask 定时延长 listenKey, 币安要求 60 分钟内至少一次
func NewKeepAliveTask(supervisor *Supervisor) schedule.Task {
	return &KeepAliveTask{
		supervisor: supervisor,
	}
}

func (t *KeepAliveTask) Run(ctx context.Context) error {
	return t.supervisor.KeepAlive(ctx)
}

func (t *KeepAliveTask) Name() string {
	return "user stream keepalive task"
}
