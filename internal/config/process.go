package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Process holds the configuration knobs spec.md §6 lists as consumed from
// process configuration, plus the daemon-level settings a runnable binary
// needs that spec.md leaves to its external collaborators.
type Process struct {
	MaxSessions    uint32 `envconfig:"MAX_SESSIONS" default:"4096"`
	TimeoutSeconds int    `envconfig:"TIMEOUT_SECONDS" default:"30"`
	// StateSeed pins byte 3 of derived state tokens so an external load
	// balancer can shard by prefix. Values >= 256 are disabled, matching
	// spec.md §6's "values ≥256 disabled".
	StateSeed    int    `envconfig:"STATE_SEED" default:"-1"`
	SpawnWorkers bool   `envconfig:"SPAWN_WORKERS" default:"true"`
	ListenAddr   string `envconfig:"LISTEN_ADDR" default:":49"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	StateBackend string `envconfig:"STATE_BACKEND" default:"memory"`
	RedisAddr    string `envconfig:"REDIS_ADDR"`
	// Secret is the shared secret obfuscating every connection this process
	// accepts. A connection-level secret table is a VirtualServer concern,
	// not a Process one; this is the single fallback secret a deployment
	// with one shared key needs, and TACACSD_SECRET keeps it out of the
	// virtual-server YAML file.
	Secret      string `envconfig:"SECRET"`
	VhostConfig string `envconfig:"VHOST_CONFIG" default:"/etc/tacacsd/vhost.yaml"`
	PolicyURL   string `envconfig:"POLICY_URL"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9049"`
}

// LoadProcess reads Process from the environment with the TACACSD_ prefix
// (e.g. TACACSD_MAX_SESSIONS).
func LoadProcess() (*Process, error) {
	var p Process
	if err := envconfig.Process("tacacsd", &p); err != nil {
		return nil, err
	}
	if p.StateSeed >= 256 {
		p.StateSeed = -1
	}
	return &p, nil
}

// Timeout returns the configured per-conversation timeout as a
// time.Duration, for handing straight to corestate.New.
func (p *Process) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}
