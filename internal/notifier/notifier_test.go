package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("disabled smtp selects the logging noop", func(t *testing.T) {
		cfg := config.Config{}
		n := New(cfg, zap.NewNop())

		_, ok := n.(noopNotifier)
		assert.True(t, ok)
		require.NoError(t, n.NotifyAssignment(context.Background(), Assignment{
			CompraID:        10,
			NumeroOrdinario: "42",
			Comprador:       "Carla Muñoz",
			Email:           "carla@example.cl",
		}))
	})

	t.Run("enabled smtp selects the mail notifier", func(t *testing.T) {
		cfg := config.Config{}
		cfg.SMTP.Enabled = true
		cfg.SMTP.Host = "mail.example.cl"
		cfg.SMTP.Port = 587

		_, ok := New(cfg, zap.NewNop()).(*smtpNotifier)
		assert.True(t, ok)
	})
}

func TestNotifyAssignmentWithoutEmail(t *testing.T) {
	// Buyers without a registered address are skipped, not failed, so the
	// worker does not retry a message that can never be delivered.
	n := &smtpNotifier{cfg: config.SMTP{Host: "mail.example.cl", Port: 587}, logger: zap.NewNop()}

	err := n.NotifyAssignment(context.Background(), Assignment{CompraID: 10, NumeroOrdinario: "42"})
	assert.NoError(t, err)
}
