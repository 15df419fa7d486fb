package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSd struct {
	states []string
}

func (r *recordingSd) notify(unsetEnvironment bool, state string) (bool, error) {
	r.states = append(r.states, state)
	return true, nil
}

func TestWatchdogTask_Run(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "no content", status: http.StatusNoContent},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
		{name: "not found", status: http.StatusNotFound, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				assert.Equal(t, http.MethodGet, r.Method)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			sd := &recordingSd{}
			task := NewWatchdogTask(srv.URL, zerolog.Nop(), WithSdNotifier(sd.notify), WithHTTPClient(srv.Client()))
			err := task.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.EqualValues(t, 1, hits.Load())
			assert.Equal(t, []string{daemon.SdNotifyWatchdog}, sd.states)
		})
	}
}

func TestWatchdogTask_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	task := NewWatchdogTask(url, zerolog.Nop(), WithSdNotifier(nil))
	assert.Error(t, task.Run(context.Background()))
}

func TestWatchdogTask_EmptyURL(t *testing.T) {
	sd := &recordingSd{}
	task := newWatchdogTask("", zerolog.Nop(), WithSdNotifier(sd.notify))

	require.NoError(t, task.Run(context.Background()))
	assert.ErrorIs(t, task.Ping(context.Background()), ErrNoWatchdogURL)
	// 没有心跳地址时仍然喂 systemd watchdog
	assert.Equal(t, []string{daemon.SdNotifyWatchdog}, sd.states)
}

func TestWatchdogTask_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	task := NewWatchdogTask(srv.URL, zerolog.Nop(), WithSdNotifier(nil))
	assert.Error(t, task.Run(ctx))
}
