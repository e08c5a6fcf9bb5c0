package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/vitalvas/tacacsd/internal/policy"
)

// ruleFile and sectionFile mirror the YAML shape of the virtual-server
// policy file (spec.md §6 "recv/process/send sections, read from a
// configuration file"). Field names follow the attribute/outcome names
// used everywhere else in this module rather than introducing a separate
// vocabulary for the file format.
type ruleFile struct {
	Match      map[string]string `koanf:"match"`
	SetControl map[string]any    `koanf:"set_control"`
	Outcome    string            `koanf:"outcome"`
}

type sectionFile struct {
	Name    string     `koanf:"name"`
	Default string     `koanf:"default"`
	Rules   []ruleFile `koanf:"rules"`
}

type vhostFile struct {
	Sections []sectionFile `koanf:"sections"`
}

// compile turns the parsed YAML shape into policy.Section values, resolving
// outcome names via policy.ParseOutcome. An unrecognized outcome name
// aborts compilation rather than silently falling back, the same way
// Registry.Compile aborts on a duplicate section name.
func (f vhostFile) compile() ([]policy.Section, error) {
	sections := make([]policy.Section, 0, len(f.Sections))
	for _, sf := range f.Sections {
		def, ok := policy.ParseOutcome(sf.Default)
		if !ok {
			return nil, fmt.Errorf("config: section %q has unknown default outcome %q", sf.Name, sf.Default)
		}

		rules := make([]policy.Rule, 0, len(sf.Rules))
		for _, rf := range sf.Rules {
			outcome, ok := policy.ParseOutcome(rf.Outcome)
			if !ok {
				return nil, fmt.Errorf("config: section %q has a rule with unknown outcome %q", sf.Name, rf.Outcome)
			}
			rules = append(rules, policy.Rule{
				Match:      rf.Match,
				SetControl: rf.SetControl,
				Outcome:    outcome,
			})
		}

		sections = append(sections, policy.Section{
			Name:    sf.Name,
			Rules:   rules,
			Default: def,
		})
	}
	return sections, nil
}

// loadVhostFile reads and compiles the sections at path without touching
// any registry, so the caller can validate a file (e.g. a "config check"
// subcommand) without installing it anywhere.
func loadVhostFile(path string) ([]policy.Section, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
	}

	var f vhostFile
	if err := k.Unmarshal("", &f); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal %s: %w", path, err)
	}

	return f.compile()
}

// VhostWatcher loads a virtual-server policy file into a policy.Registry at
// startup and keeps it live by recompiling on every fsnotify write or create
// event.
//
// Startup compilation failure is fatal (NewVhostWatcher returns an error); a failure
// during a later reload is logged and the previously-compiled sections stay
// in force, per spec.md §6's "compilation failure aborts startup... a
// reload failure is logged and the prior configuration remains active".
type VhostWatcher struct {
	path     string
	log      *zap.Logger
	registry *policy.Registry

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewVhostWatcher loads path into a fresh policy.Registry and starts
// watching it for changes. Call Close to stop watching.
func NewVhostWatcher(path string, log *zap.Logger) (*VhostWatcher, error) {
	sections, err := loadVhostFile(path)
	if err != nil {
		return nil, err
	}

	registry := policy.NewRegistry()
	if err := registry.Compile(sections); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: failed to start watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config: failed to watch %s: %w", path, err)
	}

	vw := &VhostWatcher{
		path:     path,
		log:      log,
		registry: registry,
		watcher:  watcher,
		done:     make(chan struct{}),
	}
	go vw.run()
	return vw, nil
}

// Registry returns the live Registry; its Resolve/Fallback/Run methods
// always reflect the most recently successful compilation.
func (vw *VhostWatcher) Registry() *policy.Registry {
	return vw.registry
}

func (vw *VhostWatcher) run() {
	for {
		select {
		case event, ok := <-vw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			vw.reload()
		case err, ok := <-vw.watcher.Errors:
			if !ok {
				return
			}
			vw.log.Warn("virtual-server config watcher error", zap.Error(err))
		case <-vw.done:
			return
		}
	}
}

func (vw *VhostWatcher) reload() {
	vw.mu.Lock()
	defer vw.mu.Unlock()

	sections, err := loadVhostFile(vw.path)
	if err != nil {
		vw.log.Error("virtual-server config reload failed, keeping prior configuration",
			zap.String("path", vw.path), zap.Error(err))
		return
	}
	if err := vw.registry.Compile(sections); err != nil {
		vw.log.Error("virtual-server config reload rejected, keeping prior configuration",
			zap.String("path", vw.path), zap.Error(err))
		return
	}
	vw.log.Info("virtual-server config reloaded", zap.String("path", vw.path))
}

// Close stops the underlying filesystem watcher.
func (vw *VhostWatcher) Close() error {
	close(vw.done)
	return vw.watcher.Close()
}

// CheckVhostFile loads and compiles path without installing a watcher,
// returning only an error. Intended for a "config check" CLI subcommand.
func CheckVhostFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	_, err := loadVhostFile(path)
	return err
}
