// Package config loads the benchmark settings shared by all runners.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"studyguide.parallel/imgbench/pkg/transform"
)

// EnvPrefix is prepended to every environment override, e.g.
// IMGBENCH_WORKERS=1,2,4.
const EnvPrefix = "IMGBENCH"

// Keys recognized in flags, the environment and config files.
const (
	KeyConfig    = "config"
	KeyInput     = "input"
	KeyOutput    = "output"
	KeyWorkers   = "workers"
	KeyNodes     = "nodes"
	KeyNodeMode  = "node-mode"
	KeyBaseline  = "baseline"
	KeySize      = "size"
	KeyWatermark = "watermark"
	KeyKernel    = "kernel"
	KeyFailFast  = "fail-fast"
	KeyReport    = "report"
	KeyMetrics   = "metrics"
	KeyRedis     = "redis"
	KeyLogLevel  = "log-level"
)

const DefaultInputDir = "images_dataset"

// DefaultWorkerCounts is the pool-size test set.
var DefaultWorkerCounts = []int{1, 2, 4, 8}

// NodeMode selects how simulated nodes are scheduled.
type NodeMode string

const (
	// NodeModeConcurrent runs the nodes at the same time; total time is
	// the slowest node.
	NodeModeConcurrent NodeMode = "concurrent"
	// NodeModeSerial runs the nodes one after another; total time is the
	// sum of node times.
	NodeModeSerial NodeMode = "serial"
)

// Config holds all configuration values for a runner invocation.
type Config struct {
	InputDir     string
	OutputDir    string
	WorkerCounts []int
	NodeCount    int
	NodeMode     NodeMode

	// Baseline is a fixed sequential time for the distributed efficiency.
	// Zero means measure it.
	Baseline time.Duration

	TargetSize int
	Watermark  string
	KernelSize int
	FailFast   bool

	ReportFile  string
	MetricsFile string
	RedisAddr   string
	LogLevel    slog.Level
}

// SetDefaults registers default values on v. outputDir differs per runner.
func SetDefaults(v *viper.Viper, outputDir string) {
	v.SetDefault(KeyInput, DefaultInputDir)
	v.SetDefault(KeyOutput, outputDir)
	v.SetDefault(KeyWorkers, DefaultWorkerCounts)
	v.SetDefault(KeyNodes, 2)
	v.SetDefault(KeyNodeMode, string(NodeModeConcurrent))
	v.SetDefault(KeyBaseline, 0.0)
	v.SetDefault(KeySize, transform.DefaultSize)
	v.SetDefault(KeyWatermark, transform.DefaultWatermark)
	v.SetDefault(KeyKernel, 0)
	v.SetDefault(KeyFailFast, true)
	v.SetDefault(KeyLogLevel, "info")
}

// BindEnv makes IMGBENCH_* variables override the other sources.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load builds a Config from v, reading the file named by the "config" key
// first if one is set.
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	workers, err := intList(v.Get(KeyWorkers))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyWorkers, err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}

	cfg := &Config{
		InputDir:     v.GetString(KeyInput),
		OutputDir:    v.GetString(KeyOutput),
		WorkerCounts: workers,
		NodeCount:    v.GetInt(KeyNodes),
		NodeMode:     NodeMode(strings.ToLower(v.GetString(KeyNodeMode))),
		Baseline:     time.Duration(math.Round(v.GetFloat64(KeyBaseline) * float64(time.Second))),
		TargetSize:   v.GetInt(KeySize),
		Watermark:    v.GetString(KeyWatermark),
		KernelSize:   v.GetInt(KeyKernel),
		FailFast:     v.GetBool(KeyFailFast),
		ReportFile:   v.GetString(KeyReport),
		MetricsFile:  v.GetString(KeyMetrics),
		RedisAddr:    v.GetString(KeyRedis),
		LogLevel:     level,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every option is in range.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("%s is required", KeyInput)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%s is required", KeyOutput)
	}
	if filepath.Clean(c.OutputDir) == filepath.Clean(c.InputDir) {
		return fmt.Errorf("%s %s must differ from %s", KeyOutput, c.OutputDir, KeyInput)
	}
	if len(c.WorkerCounts) == 0 {
		return fmt.Errorf("%s must list at least one worker count", KeyWorkers)
	}
	for _, n := range c.WorkerCounts {
		if n < 1 {
			return fmt.Errorf("invalid worker count %d: must be at least 1", n)
		}
	}
	if c.NodeCount < 1 {
		return fmt.Errorf("invalid %s %d: must be at least 1", KeyNodes, c.NodeCount)
	}
	switch c.NodeMode {
	case NodeModeConcurrent, NodeModeSerial:
	default:
		return fmt.Errorf("invalid %s %q: use %s or %s", KeyNodeMode, c.NodeMode, NodeModeConcurrent, NodeModeSerial)
	}
	if c.Baseline < 0 {
		return fmt.Errorf("invalid %s %v: must not be negative", KeyBaseline, c.Baseline)
	}
	if c.TargetSize < 1 {
		return fmt.Errorf("invalid %s %d: must be positive", KeySize, c.TargetSize)
	}
	if c.KernelSize != 0 && (c.KernelSize < 3 || c.KernelSize%2 == 0) {
		return fmt.Errorf("invalid %s %d: must be 0 or an odd number >= 3", KeyKernel, c.KernelSize)
	}
	return nil
}

// TransformOptions derives the per-image transform settings.
func (c *Config) TransformOptions() transform.Options {
	return transform.Options{
		Width:      c.TargetSize,
		Height:     c.TargetSize,
		Watermark:  c.Watermark,
		KernelSize: c.KernelSize,
	}
}

// intList accepts the shapes a list can take across viper sources: a
// typed slice from flags or defaults, a generic slice from YAML, or a
// comma/space separated string from the environment.
func intList(raw any) ([]int, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []int:
		return v, nil
	case []any:
		out := make([]int, 0, len(v))
		for _, item := range v {
			n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(item)))
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case []string:
		return atoiAll(v)
	case string:
		s := strings.Trim(strings.TrimSpace(v), "[]")
		return atoiAll(strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' '
		}))
	case int:
		return []int{v}, nil
	default:
		return nil, fmt.Errorf("unsupported value %v", raw)
	}
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
