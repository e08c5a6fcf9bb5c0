// Package config loads the two layers of configuration spec.md §6 names:
// process-wide knobs (Process, from environment variables) and the
// virtual-server/policy file (VhostWatcher, from YAML, hot-reloadable).
package config
