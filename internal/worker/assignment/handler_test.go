package assignment

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/config"
	"github.com/edusupply/compras/internal/messaging"
	"github.com/edusupply/compras/internal/notifier"
	requestsvc "github.com/edusupply/compras/internal/service/request"
)

type fakeNotifier struct {
	sent []notifier.Assignment
	err  error
}

func (f *fakeNotifier) NotifyAssignment(_ context.Context, a notifier.Assignment) error {
	f.sent = append(f.sent, a)
	return f.err
}

func message(t *testing.T, event requestsvc.AssignmentEvent) messaging.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return messaging.Message{Topic: "compras.eventos", Value: value}
}

func TestHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards assignment to the notifier", func(t *testing.T) {
		n := &fakeNotifier{}
		h := NewHandler(n, zap.NewNop())

		msg := message(t, requestsvc.AssignmentEvent{
			Tipo:            requestsvc.EventRequestAssigned,
			CompraID:        10,
			NumeroOrdinario: 42,
			Descripcion:     "Resmas de papel",
			Unidad:          "Escuela Los Aromos",
			Comprador:       "Carla Muñoz",
			Email:           "carla@example.cl",
		})
		require.NoError(t, h.Handle(ctx, msg))

		require.Len(t, n.sent, 1)
		got := n.sent[0]
		assert.Equal(t, int64(10), got.CompraID)
		assert.Equal(t, "42", got.NumeroOrdinario, "ordinal number travels as its display form")
		assert.Equal(t, "Resmas de papel", got.Descripcion)
		assert.Equal(t, "Escuela Los Aromos", got.Unidad)
		assert.Equal(t, "Carla Muñoz", got.Comprador)
		assert.Equal(t, "carla@example.cl", got.Email)
	})

	t.Run("drops undecodable messages", func(t *testing.T) {
		n := &fakeNotifier{}
		h := NewHandler(n, zap.NewNop())

		msg := messaging.Message{Topic: "compras.eventos", Value: []byte("{not json")}
		require.NoError(t, h.Handle(ctx, msg))
		assert.Empty(t, n.sent)
	})

	t.Run("ignores unknown event types", func(t *testing.T) {
		n := &fakeNotifier{}
		h := NewHandler(n, zap.NewNop())

		msg := message(t, requestsvc.AssignmentEvent{Tipo: "compra.comprada", CompraID: 10})
		require.NoError(t, h.Handle(ctx, msg))
		assert.Empty(t, n.sent)
	})

	t.Run("notifier errors propagate for retry", func(t *testing.T) {
		n := &fakeNotifier{err: assert.AnError}
		h := NewHandler(n, zap.NewNop())

		msg := message(t, requestsvc.AssignmentEvent{Tipo: requestsvc.EventRequestAssigned, CompraID: 10})
		assert.Error(t, h.Handle(ctx, msg))
	})
}

func TestRegistration(t *testing.T) {
	cfg := config.Config{}
	cfg.Messaging.Kafka.Topic = "compras.eventos"

	h := NewHandler(&fakeNotifier{}, zap.NewNop())
	reg := Registration(h, cfg)
	assert.Equal(t, "compras.eventos", reg.Topic)
	assert.NotNil(t, reg.Handler)
}
