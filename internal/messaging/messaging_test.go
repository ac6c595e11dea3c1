package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/config"
)

type nopLifecycle struct{}

func (nopLifecycle) Append(fx.Hook) {}

func TestNewClient(t *testing.T) {
	t.Run("disabled messaging uses the noop client with the default topic", func(t *testing.T) {
		cfg := config.Config{}

		client, err := NewClient(nopLifecycle{}, cfg, zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, DefaultTopic, client.Topic())
		assert.NoError(t, client.Publish(context.Background(), nil, []byte("ignored")))
	})

	t.Run("configured topic wins over the default", func(t *testing.T) {
		cfg := config.Config{}
		cfg.Messaging.Kafka.Topic = "compras.pruebas"

		client, err := NewClient(nopLifecycle{}, cfg, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "compras.pruebas", client.Topic())
	})

	t.Run("unknown driver is rejected", func(t *testing.T) {
		cfg := config.Config{}
		cfg.Messaging.Enabled = true
		cfg.Messaging.Driver = "rabbitmq"

		_, err := NewClient(nopLifecycle{}, cfg, zap.NewNop())
		assert.Error(t, err)
	})
}
