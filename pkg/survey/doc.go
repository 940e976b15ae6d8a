// Package survey aggregates per-charm repository and library-version
// detection into a table and summary statistics.
//
// # Pass structure
//
// A pass ([Runner.Execute]) fetches the catalog and the interface consumer
// list, then resolves and probes every charm ([Aggregator.Survey]). Charms
// are processed concurrently with a bounded number of workers; resolution
// and probing for one charm are sequential. Each worker writes only its own
// result slot, and the coordinating goroutine folds the results once all
// workers finish ([Fold]). No counters are shared between workers.
//
// # Failures
//
// Per-charm failures (unreachable landing pages, missing links, failed
// probes) become placeholder values in that charm's row. Only catalog and
// consumer-list failures abort a pass.
//
// # Re-sorting
//
// [View] keeps the per-charm results of the last pass. Sorting reorders
// them and folds again, so rows are renumbered from 1 and the summary is
// recomputed from scratch without touching the network.
package survey
