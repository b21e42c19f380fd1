// Package progress records the work-unit audit trail of a render in a NATS
// JetStream KeyValue bucket.
//
// Every render publishes a plan entry followed by one entry per work unit.
// Unit entries are rewritten as workers complete them, so an external
// watcher can follow a long render and a finished bucket documents which
// worker produced which rows.
//
// Key layout, for the default prefix "render":
//
//	render.plan      -> Plan (JSON)
//	render.unit.<i>  -> Entry (JSON), one per work unit
package progress
