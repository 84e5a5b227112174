// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, logging, metrics and debug introspection for nsock
// programs.
//
// Provides:
//   - Config loaded from YAML with defaults and validation
//   - NewLogger building a zap logger over a rotating lumberjack file or the console
//   - Metrics registering the socket counters on a Prometheus registerer
//   - DebugProbes, a registry of named state probes dumped on demand
package control
