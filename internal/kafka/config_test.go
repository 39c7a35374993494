package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSaramaConfig(t *testing.T) {
	cfg := NewConfig([]string{"localhost:9092"}, "charges")
	saramaConfig := NewSaramaConfig(cfg)

	assert.Equal(t, "charges", cfg.Topic)
	assert.Equal(t, "stripe-charge", saramaConfig.ClientID)
	assert.Equal(t, sarama.WaitForAll, saramaConfig.Producer.RequiredAcks)
	assert.True(t, saramaConfig.Producer.Return.Successes)
	assert.True(t, saramaConfig.Producer.Return.Errors)
	require.NoError(t, saramaConfig.Validate())
}

func TestNewSyncProducerRequiresBrokers(t *testing.T) {
	_, err := NewSyncProducer(NewConfig(nil, "charges"))
	assert.Error(t, err)
}
