package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
}

func TestLoadWithNoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, uint64(16384), cfg.InQCapacity)
	require.Equal(t, uint64(16384), cfg.OutQCapacity)
	require.Equal(t, 32, cfg.MatcherBatchSize)
}

func TestValidateRejectsNonPowerOfTwoCapacity(t *testing.T) {
	cfg := Default()
	cfg.InQCapacity = 1000
	require.Error(t, cfg.validate())
}

func TestValidateRequiresTopicWhenKafkaEnabled(t *testing.T) {
	cfg := Default()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Topic = ""
	require.Error(t, cfg.validate())
}
