// Package config loads and validates cmd/fsmrun's program arguments, per
// spec.md §6's "Program arguments (informative, owned by external
// collaborator)" — this is that collaborator.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Debug bitmask values, per spec.md §6.
const (
	DebugTransitions uint32 = 0x01
	DebugEvents      uint32 = 0x02
	DebugTimers      uint32 = 0x04
	DebugWorkers     uint32 = 0x10
	DebugVerbose     uint32 = 0x20
)

// Config is the fully resolved, validated program configuration.
type Config struct {
	TickMs         int    `mapstructure:"tick" validate:"gt=0"`
	ScriptFile     string `mapstructure:"script" validate:"required"`
	NonInteractive bool   `mapstructure:"noninteractive"`
	Debug          uint32 `mapstructure:"debug"`
}

// HasDebugBit reports whether every bit in mask is set in c.Debug.
func (c Config) HasDebugBit(mask uint32) bool {
	return c.Debug&mask == mask
}

// debugFlag adapts a string command-line argument ("0x01", "17", "0b101")
// to the uint32 bitmask field, so pflag can parse -d the same way the
// original's strtoul(optarg, NULL, 0) did: base auto-detected from prefix.
type debugFlag struct{ value *uint32 }

func (f debugFlag) String() string {
	if f.value == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(*f.value), 10)
}

func (f debugFlag) Set(s string) error {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return fmt.Errorf("invalid debug mask %q: %w", s, err)
	}
	*f.value = uint32(v)
	return nil
}

func (f debugFlag) Type() string { return "hex" }

// NewRootCommand builds the cobra command exposing spec.md §6's "-t", "-s",
// "-n", "-d", "-h" flags. The returned command has no Run set; cmd/fsmrun
// only parses flags with it and loads Config from it, never executing it.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fsmrun",
		Short: "run the stoplight/crosswalk reference FSM workload",
	}

	flags := cmd.PersistentFlags()
	flags.IntP("tick", "t", 1000, "base tick multiplier in milliseconds, applied to every workload timer")
	flags.StringP("script", "s", "./fsmdemo.script", "event script file path")
	flags.BoolP("non-interactive", "n", false, "read only from the script file, never from stdin")

	var debug uint32
	flags.VarP(debugFlag{&debug}, "debug", "d", "debug bitmask: 0x01 transitions, 0x02 events, 0x04 timers, 0x10 workers, 0x20 verbose")

	return cmd
}

// debugValue recovers the uint32 stashed behind the "-d" flag's pflag.Value,
// since pflag.FlagSet has no typed accessor for a custom Value.
func debugValue(flags *pflag.FlagSet) uint32 {
	f := flags.Lookup("debug")
	if f == nil {
		return 0
	}
	v, err := strconv.ParseUint(f.Value.String(), 0, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

// Load binds cmd's flags into viper (with FSMRUN_* environment overrides),
// unmarshals into a Config, and validates it with go-playground/validator —
// the same load → unmarshal → validate.Struct sequence
// DNSSEC-Provisioning-music/music-cli/cmd/root.go uses for its own Config.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FSMRUN")
	v.AutomaticEnv()

	flags := cmd.PersistentFlags()
	if err := v.BindPFlag("tick", flags.Lookup("tick")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("script", flags.Lookup("script")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("noninteractive", flags.Lookup("non-interactive")); err != nil {
		return nil, err
	}

	debug := debugValue(flags)
	if !flags.Changed("debug") {
		if s := v.GetString("debug"); s != "" {
			d, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid debug mask %q: %w", s, err)
			}
			debug = uint32(d)
		}
	}

	cfg := &Config{
		TickMs:         v.GetInt("tick"),
		ScriptFile:     v.GetString("script"),
		NonInteractive: v.GetBool("noninteractive"),
		Debug:          debug,
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
