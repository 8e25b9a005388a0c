// Package logging provides structured logging for marionettist built on the
// standard slog package.
//
// All log entries carry a subsystem identifier so that the noisy parts of the
// control plane (discovery probing, experiment iterations, pod fan-out) can be
// filtered in log aggregation.
//
// # Usage
//
//	logging.Init(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Discovery", "Found %d candidate services", len(candidates))
//	logging.Warn("Executor", "Time slice is only %ds per configuration", secs)
//	logging.Error("Gateway", err, "Failed to notify pod %s", podName)
//
// # Subsystems
//
//   - Bootstrap: application initialization and wiring
//   - Config: configuration loading and validation
//   - Registry: configuration registry mutations
//   - Discovery: candidate finding, validation and config fetching
//   - Executor: the experiment loop
//   - Gateway: behaviour-change fan-out to pods
//   - Metrics: metrics backend queries
//   - Ranking: aggregation and lexicographic ranking
//   - API: REST adapter
package logging
