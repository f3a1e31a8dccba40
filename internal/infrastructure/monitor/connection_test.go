package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitorRefresh(t *testing.T) {
	failing := true
	m := New(0, nil,
		Probe{Name: "postgres", Check: func(context.Context) error { return nil }},
		Probe{Name: "redis", Check: func(context.Context) error {
			if failing {
				return errors.New("connection refused")
			}
			return nil
		}},
	)

	assert.False(t, m.IsOnline(), "unchecked monitor must not report healthy")

	m.Refresh(context.Background())
	status := m.GetStatus()
	assert.Equal(t, map[string]bool{"postgres": true, "redis": false}, status.Services)
	assert.False(t, m.IsOnline())

	failing = false
	m.Refresh(context.Background())
	assert.True(t, m.IsOnline())
}

func TestMonitorStopIsIdempotent(t *testing.T) {
	m := New(0, nil)
	m.Start()
	m.Stop()
	m.Stop()
	assert.True(t, m.IsOnline(), "no probes means nothing can fail")
}
