// Package testing provides test utilities for the fractal module.
//
// It offers embedded NATS servers for exercising progress recording without
// an external broker, in the manner of net/http/httptest.
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewTestLogger: types.Logger writing to t.Logf
//
// Example usage:
//
//	import (
//	    "testing"
//	    fractaltest "github.com/arloliu/fractal/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := fractaltest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
