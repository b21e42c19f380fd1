package natsutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", nats.ErrTimeout, true},
		{"wrapped no servers", fmt.Errorf("put unit.3: %w", nats.ErrNoServers), true},
		{"closed", nats.ErrConnectionClosed, true},
		{"deadline", context.DeadlineExceeded, true},
		{"refused text", errors.New("dial tcp 127.0.0.1:4222: connection refused"), true},
		{"application error", errors.New("invalid key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}
