// Package config loads engine tunables via github.com/spf13/viper, the
// pattern the rest of the retrieved pack uses for its services
// (handikong-gopherex). It generalizes the teacher's wal/config.go
// zero-value-defaulting constructor to the engine's own knobs.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Kafka configures the optional market-data fan-out sink (§11.3).
type Kafka struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// Config holds every tunable named in the spec's pipeline and queue
// sections.
type Config struct {
	// ListenAddr is the UDP address the (out-of-scope) ingress socket
	// layer binds to; carried here only so a single config file drives
	// the whole process.
	ListenAddr string

	// InQCapacity/OutQCapacity must be powers of two (§4.1). Default
	// 16384.
	InQCapacity  uint64
	OutQCapacity uint64

	// MatcherBatchSize is the target InQ drain batch size (§4.3). Default
	// 32.
	MatcherBatchSize int

	// IngressRetryAttempts/MatcherRetryAttempts bound the spin-retry on a
	// full downstream queue before a record/event is dropped with a
	// warning (§4.2, §4.3, §7).
	IngressRetryAttempts int
	MatcherRetryAttempts int

	// Idle sleep tiers for the matcher's adaptive idle policy (§4.3).
	MatcherIdleFastSleep      time.Duration
	MatcherIdleFastIterations int
	MatcherIdleSlowSleep      time.Duration

	// EgressIdleSleep is the formatter's idle sleep when OutQ is empty
	// (§4.5).
	EgressIdleSleep time.Duration

	// Controller shutdown-drain sleeps (§4.6).
	IngressDrainSleep time.Duration
	MatcherDrainSleep time.Duration

	// MetricsAddr serves /metrics (Prometheus, §10.4); empty disables it.
	MetricsAddr string

	Kafka Kafka
}

// Default returns the spec's baseline tunables (§4.1, §4.2, §4.3, §4.6).
func Default() Config {
	return Config{
		ListenAddr:                ":9444",
		InQCapacity:               16384,
		OutQCapacity:              16384,
		MatcherBatchSize:          32,
		IngressRetryAttempts:      100,
		MatcherRetryAttempts:      1000,
		MatcherIdleFastSleep:      time.Microsecond,
		MatcherIdleFastIterations: 100,
		MatcherIdleSlowSleep:      100 * time.Microsecond,
		EgressIdleSleep:           10 * time.Microsecond,
		IngressDrainSleep:         200 * time.Millisecond,
		MatcherDrainSleep:         200 * time.Millisecond,
		MetricsAddr:               ":9445",
		Kafka: Kafka{
			Enabled: false,
			Brokers: nil,
			Topic:   "vortex.marketdata",
		},
	}
}

// Load reads path (if non-empty) and VORTEX_-prefixed environment overrides
// on top of Default().
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("vortex")
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg.ListenAddr = v.GetString("listen_addr")
	cfg.InQCapacity = v.GetUint64("inq_capacity")
	cfg.OutQCapacity = v.GetUint64("outq_capacity")
	cfg.MatcherBatchSize = v.GetInt("matcher_batch_size")
	cfg.IngressRetryAttempts = v.GetInt("ingress_retry_attempts")
	cfg.MatcherRetryAttempts = v.GetInt("matcher_retry_attempts")
	cfg.MatcherIdleFastSleep = v.GetDuration("matcher_idle_fast_sleep")
	cfg.MatcherIdleFastIterations = v.GetInt("matcher_idle_fast_iterations")
	cfg.MatcherIdleSlowSleep = v.GetDuration("matcher_idle_slow_sleep")
	cfg.EgressIdleSleep = v.GetDuration("egress_idle_sleep")
	cfg.IngressDrainSleep = v.GetDuration("ingress_drain_sleep")
	cfg.MatcherDrainSleep = v.GetDuration("matcher_drain_sleep")
	cfg.MetricsAddr = v.GetString("metrics_addr")
	cfg.Kafka.Enabled = v.GetBool("kafka.enabled")
	cfg.Kafka.Brokers = v.GetStringSlice("kafka.brokers")
	cfg.Kafka.Topic = v.GetString("kafka.topic")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("inq_capacity", cfg.InQCapacity)
	v.SetDefault("outq_capacity", cfg.OutQCapacity)
	v.SetDefault("matcher_batch_size", cfg.MatcherBatchSize)
	v.SetDefault("ingress_retry_attempts", cfg.IngressRetryAttempts)
	v.SetDefault("matcher_retry_attempts", cfg.MatcherRetryAttempts)
	v.SetDefault("matcher_idle_fast_sleep", cfg.MatcherIdleFastSleep)
	v.SetDefault("matcher_idle_fast_iterations", cfg.MatcherIdleFastIterations)
	v.SetDefault("matcher_idle_slow_sleep", cfg.MatcherIdleSlowSleep)
	v.SetDefault("egress_idle_sleep", cfg.EgressIdleSleep)
	v.SetDefault("ingress_drain_sleep", cfg.IngressDrainSleep)
	v.SetDefault("matcher_drain_sleep", cfg.MatcherDrainSleep)
	v.SetDefault("metrics_addr", cfg.MetricsAddr)
	v.SetDefault("kafka.enabled", cfg.Kafka.Enabled)
	v.SetDefault("kafka.topic", cfg.Kafka.Topic)
}

func (c Config) validate() error {
	if c.InQCapacity == 0 || c.InQCapacity&(c.InQCapacity-1) != 0 {
		return fmt.Errorf("config: inq_capacity must be a power of two, got %d", c.InQCapacity)
	}
	if c.OutQCapacity == 0 || c.OutQCapacity&(c.OutQCapacity-1) != 0 {
		return fmt.Errorf("config: outq_capacity must be a power of two, got %d", c.OutQCapacity)
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		return fmt.Errorf("config: kafka.topic required when kafka.enabled")
	}
	return nil
}
