package config

import (
	"os"
	"time"

	"codeberg.org/mutker/prxgyz/internal/automation"
	"codeberg.org/mutker/prxgyz/internal/engine"
	"codeberg.org/mutker/prxgyz/internal/errors"
	"codeberg.org/mutker/prxgyz/internal/logger"
	"codeberg.org/mutker/prxgyz/internal/meter"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "PRXGYZ"
	DefaultConfigFile = "/etc/prxgyz.toml"
	DefaultLogLevel   = logger.DefaultLevel
	appName           = "prxgyz"
)

type Config struct {
	ConfigFile string `mapstructure:"config"`
	LogLevel   string `mapstructure:"log_level"`
	FrameRate  int    `mapstructure:"frame_rate"`
	Headless   bool   `mapstructure:"headless"`

	SampleRate  int     `mapstructure:"sample_rate"`
	BlockSize   int     `mapstructure:"block_size"`
	PeakDecayMs float64 `mapstructure:"peak_decay_ms"`

	MeterFloorDB          float64 `mapstructure:"meter_floor_db"`
	MeterCeilingDB        float64 `mapstructure:"meter_ceiling_db"`
	MeterDecayDBPerSecond float64 `mapstructure:"meter_decay_db_per_second"`
	MeterShowLabel        bool    `mapstructure:"meter_show_label"`

	Automation             bool          `mapstructure:"automation"`
	AutomationDB           string        `mapstructure:"automation_db"`
	AutomationBatchSize    int           `mapstructure:"automation_batch_size"`
	AutomationBatchTimeout time.Duration `mapstructure:"automation_batch_timeout"`

	MetricsAddr string `mapstructure:"metrics_addr"`
}

type flagBinding struct {
	key  string
	flag string
}

var bindings = []flagBinding{
	{"log_level", "log-level"},
	{"frame_rate", "frame-rate"},
	{"headless", "headless"},
	{"sample_rate", "sample-rate"},
	{"block_size", "block-size"},
	{"peak_decay_ms", "peak-decay-ms"},
	{"meter_floor_db", "meter-floor"},
	{"meter_ceiling_db", "meter-ceiling"},
	{"meter_decay_db_per_second", "meter-decay"},
	{"meter_show_label", "meter-label"},
	{"automation", "automation"},
	{"automation_db", "automation-db"},
	{"automation_batch_size", "automation-batch-size"},
	{"automation_batch_timeout", "automation-batch-timeout"},
	{"metrics_addr", "metrics-addr"},
}

func setDefaults(v *viper.Viper) {
	meterCfg := meter.DefaultConfig()
	engineCfg := engine.DefaultConfig()
	autoCfg := automation.DefaultConfig()

	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("frame_rate", 60)
	v.SetDefault("headless", false)
	v.SetDefault("sample_rate", engineCfg.SampleRate)
	v.SetDefault("block_size", engineCfg.BlockSize)
	v.SetDefault("peak_decay_ms", engineCfg.PeakDecayMs)
	v.SetDefault("meter_floor_db", meterCfg.FloorDB)
	v.SetDefault("meter_ceiling_db", meterCfg.CeilingDB)
	v.SetDefault("meter_decay_db_per_second", meterCfg.DecayDBPerSecond)
	v.SetDefault("meter_show_label", meterCfg.ShowLabel)
	v.SetDefault("automation", autoCfg.Enabled)
	v.SetDefault("automation_db", autoCfg.DBPath)
	v.SetDefault("automation_batch_size", autoCfg.BatchSize)
	v.SetDefault("automation_batch_timeout", autoCfg.BatchTimeout)
	v.SetDefault("metrics_addr", "")
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)

	fs.String("config", "", "Path to a TOML config file (default "+DefaultConfigFile+")")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warn, error")
	fs.Int("frame-rate", 60, "Render ticks per second")
	fs.Bool("headless", false, "Run a scripted session without a terminal")
	fs.Int("sample-rate", 48000, "Simulated sample rate in Hz")
	fs.Int("block-size", 512, "Simulated block size in samples")
	fs.Float64("peak-decay-ms", 150, "Engine-side peak meter decay time")
	fs.Float64("meter-floor", -60, "Meter floor in dB")
	fs.Float64("meter-ceiling", 0, "Meter ceiling in dB")
	fs.Float64("meter-decay", 12, "Meter peak-hold decay in dB per second")
	fs.Bool("meter-label", false, "Show the meter's dB label")
	fs.Bool("automation", false, "Record automation lanes to sqlite")
	fs.String("automation-db", "", "Automation database path")
	fs.Int("automation-batch-size", 16, "Lanes buffered before a write")
	fs.Duration("automation-batch-timeout", 5*time.Second, "Maximum time lanes stay buffered")
	fs.String("metrics-addr", "", "Serve prometheus metrics on this address")

	return fs
}

// Load reads configuration from defaults, the config file, PRXGYZ_*
// environment variables and args, later sources winning.
func Load(args []string) (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrParseFlags, err)
	}
	for _, b := range bindings {
		if err := v.BindPFlag(b.key, fs.Lookup(b.flag)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path, explicit := configPath(fs)
	if err := readFile(v, path, explicit); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	cfg.ConfigFile = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPath picks the file to read: --config, then PRXGYZ_CONFIG, then the
// default. Only an explicitly named file must exist.
func configPath(fs *pflag.FlagSet) (string, bool) {
	if p, _ := fs.GetString("config"); p != "" {
		return p, true
	}
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p, true
	}
	return DefaultConfigFile, false
}

func readFile(v *viper.Viper, path string, explicit bool) error {
	errFactory := errors.New()

	if !explicit {
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return errFactory.Wrap(errors.ErrReadConfig, err)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !logger.ValidLevel(c.LogLevel) {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.FrameRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidRate, struct{ FrameRate int }{c.FrameRate})
	}
	if err := c.Meter().Validate(); err != nil {
		return err
	}
	if err := c.Engine().Validate(); err != nil {
		return err
	}
	return c.AutomationConfig().Validate()
}

// FrameInterval is the time between render ticks.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

func (c *Config) Meter() meter.Config {
	return meter.Config{
		FloorDB:          c.MeterFloorDB,
		CeilingDB:        c.MeterCeilingDB,
		DecayDBPerSecond: c.MeterDecayDBPerSecond,
		ShowLabel:        c.MeterShowLabel,
	}
}

func (c *Config) Engine() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.SampleRate = c.SampleRate
	cfg.BlockSize = c.BlockSize
	cfg.PeakDecayMs = c.PeakDecayMs
	return cfg
}

func (c *Config) AutomationConfig() automation.Config {
	return automation.Config{
		DBPath:       c.AutomationDB,
		BatchSize:    c.AutomationBatchSize,
		BatchTimeout: c.AutomationBatchTimeout,
		Enabled:      c.Automation,
	}
}
