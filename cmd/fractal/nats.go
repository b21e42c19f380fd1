package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/arloliu/fractal/types"
)

// connectNATS connects to url, or to a fresh in-process server when embedded is set.
//
// Returns:
//   - *nats.Conn: Connected client
//   - func(): Closes the connection and stops the embedded server, if any
//   - error: Startup or connection failure
func connectNATS(url string, embedded bool, logger types.Logger) (*nats.Conn, func(), error) {
	if !embedded {
		nc, err := nats.Connect(url, nats.Timeout(2*time.Second))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
		}

		return nc, nc.Close, nil
	}

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		NoLog:     true,
		NoSigs:    true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, nil, errors.New("embedded NATS server not ready")
	}

	nc, err := nats.Connect(ns.ClientURL())
	if err != nil {
		ns.Shutdown()
		return nil, nil, fmt.Errorf("failed to connect to embedded NATS: %w", err)
	}

	logger.Info("embedded NATS server started", "url", ns.ClientURL())

	return nc, func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	}, nil
}
