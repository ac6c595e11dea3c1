package request

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/audit"
	"github.com/edusupply/compras/internal/cache"
	"github.com/edusupply/compras/internal/config"
	"github.com/edusupply/compras/internal/entity"
	"github.com/edusupply/compras/internal/messaging"
	repo "github.com/edusupply/compras/internal/repository/request"
	"github.com/edusupply/compras/internal/workflow"
	"github.com/edusupply/compras/pkg/errorbank"
)

type fakeStore struct {
	nextID   int64
	byID     map[int64]*entity.PurchaseRequest
	updates  int
	deletes  int
	lastSave *entity.PurchaseRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, byID: make(map[int64]*entity.PurchaseRequest)}
}

func (f *fakeStore) Create(_ context.Context, req *entity.PurchaseRequest) error {
	req.ID = f.nextID
	f.nextID++
	clone := *req
	f.byID[req.ID] = &clone
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*entity.PurchaseRequest, error) {
	req, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	clone := *req
	return &clone, nil
}

func (f *fakeStore) List(_ context.Context, _ repo.ListFilter) ([]*entity.PurchaseRequest, error) {
	out := make([]*entity.PurchaseRequest, 0, len(f.byID))
	for _, req := range f.byID {
		out = append(out, req)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, req *entity.PurchaseRequest) error {
	if _, ok := f.byID[req.ID]; !ok {
		return repo.ErrNotFound
	}
	clone := *req
	f.byID[req.ID] = &clone
	f.updates++
	f.lastSave = &clone
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.byID, id)
	f.deletes++
	return nil
}

type fakeAuditStore struct {
	entries []*entity.AuditLog
}

func (f *fakeAuditStore) Append(_ context.Context, log *entity.AuditLog) error {
	f.entries = append(f.entries, log)
	return nil
}

func (f *fakeAuditStore) ListByRequest(_ context.Context, compraID int64) ([]*entity.AuditLog, error) {
	var out []*entity.AuditLog
	for _, e := range f.entries {
		if e.CompraID == compraID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users map[int64]*entity.User
}

func (f *fakeUserStore) GetUser(_ context.Context, id int64) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repo.ErrNotFound
}

type fakePublisher struct {
	published [][]byte
}

func (f *fakePublisher) Publish(_ context.Context, _ []byte, value []byte) error {
	f.published = append(f.published, value)
	return nil
}

func (f *fakePublisher) Consume(ctx context.Context, _ messaging.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakePublisher) Topic() string { return "compras.eventos" }

type nullCache struct{}

func (nullCache) Get(context.Context, string) ([]byte, error) { return nil, cache.ErrCacheMiss }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (nullCache) Delete(context.Context, string) error { return nil }

type fixture struct {
	svc       *Service
	store     *fakeStore
	audits    *fakeAuditStore
	users     *fakeUserStore
	publisher *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newFakeStore()
	audits := &fakeAuditStore{}
	users := &fakeUserStore{users: map[int64]*entity.User{
		7: {ID: 7, Nombre: "Carla Muñoz", Email: "carla@example.cl", Rol: workflow.RoleBuyer},
	}}
	publisher := &fakePublisher{}

	cfg := config.Config{}
	cfg.Cache.DefaultTTL = time.Minute
	cfg.Messaging.Enabled = true
	cfg.Messaging.Kafka.Topic = "compras.eventos"

	svc := NewService(Params{
		Requests:  store,
		Audits:    audits,
		Users:     users,
		Cache:     nullCache{},
		Config:    cfg,
		Logger:    zap.NewNop(),
		Publisher: publisher,
	})
	return &fixture{svc: svc, store: store, audits: audits, users: users, publisher: publisher}
}

var (
	admin   = workflow.Actor{ID: 1, Nombre: "Ana", Rol: workflow.RoleAdmin}
	manager = workflow.Actor{ID: 2, Nombre: "Pedro", Rol: workflow.RoleManager}
	buyer   = workflow.Actor{ID: 3, Nombre: "Carla", Rol: workflow.RoleBuyer}
)

func strPtr(s string) *string { return &s }

func seed(t *testing.T, f *fixture, req *entity.PurchaseRequest) int64 {
	t.Helper()
	require.NoError(t, f.store.Create(context.Background(), req))
	return req.ID
}

func kindOf(err error) errorbank.Kind {
	return errorbank.From(err).Kind()
}

func TestCreate(t *testing.T) {
	t.Run("defaults to assigned and audits the creation", func(t *testing.T) {
		f := newFixture(t)
		req := &entity.PurchaseRequest{Descripcion: "Resmas de papel"}

		require.NoError(t, f.svc.Create(context.Background(), admin, req))

		assert.Equal(t, workflow.StateAssigned, req.Estado)
		require.Len(t, f.audits.entries, 1)
		assert.Equal(t, audit.ActionCreation, f.audits.entries[0].Accion)
		assert.Equal(t, "Creó la solicitud", f.audits.entries[0].Resumen)
		assert.Equal(t, "Ana", f.audits.entries[0].Usuario)
	})

	t.Run("buyer may not create", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Create(context.Background(), buyer, &entity.PurchaseRequest{})
		assert.Equal(t, errorbank.KindForbidden, kindOf(err))
	})

	t.Run("cannot be born cancelled", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Create(context.Background(), admin, &entity.PurchaseRequest{Estado: workflow.StateCancelled})
		assert.Equal(t, errorbank.KindUnprocessableEntity, kindOf(err))
	})

	t.Run("assignment at creation publishes an event", func(t *testing.T) {
		f := newFixture(t)
		req := &entity.PurchaseRequest{Descripcion: "Proyector", CompradorID: 7}

		require.NoError(t, f.svc.Create(context.Background(), admin, req))

		require.Len(t, f.publisher.published, 1)
		var event AssignmentEvent
		require.NoError(t, json.Unmarshal(f.publisher.published[0], &event))
		assert.Equal(t, EventRequestAssigned, event.Tipo)
		assert.Equal(t, "carla@example.cl", event.Email)
		assert.Equal(t, "Carla Muñoz", event.Comprador)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("applies the patch and audits the diff", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Descripcion: "Sillas", Estado: workflow.StateAssigned})

		got, err := f.svc.Update(context.Background(), admin, id, audit.Patch{Descripcion: strPtr("Sillas ergonómicas")})
		require.NoError(t, err)

		assert.Equal(t, "Sillas ergonómicas", got.Descripcion)
		require.Len(t, f.audits.entries, 1)
		assert.Equal(t, audit.ActionModification, f.audits.entries[0].Accion)
		assert.Equal(t, "Modificó: descripcion", f.audits.entries[0].Resumen)
	})

	t.Run("no-op patch writes nothing", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Descripcion: "Sillas", Estado: workflow.StateAssigned})

		_, err := f.svc.Update(context.Background(), admin, id, audit.Patch{Descripcion: strPtr("Sillas")})
		require.NoError(t, err)

		assert.Zero(t, f.store.updates)
		assert.Empty(t, f.audits.entries)
	})

	t.Run("buyer may not touch the budget", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateAssigned})

		budget := decimal.NewFromInt(99000)
		_, err := f.svc.Update(context.Background(), buyer, id, audit.Patch{Presupuesto: &budget})
		assert.Equal(t, errorbank.KindForbidden, kindOf(err))
	})

	t.Run("cancelled requests are immutable even for admins", func(t *testing.T) {
		f := newFixture(t)
		motivo := "duplicada"
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateCancelled, MotivoAnula: &motivo})

		_, err := f.svc.Update(context.Background(), admin, id, audit.Patch{Descripcion: strPtr("x")})
		assert.Equal(t, errorbank.KindForbidden, kindOf(err))
	})

	t.Run("transition outside the role's offer is rejected", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateAssigned})

		estado := workflow.StateDelivered
		_, err := f.svc.Update(context.Background(), buyer, id, audit.Patch{Estado: &estado})
		assert.Equal(t, errorbank.KindForbidden, kindOf(err))
	})

	t.Run("cancelling through a patch needs the cancel capability", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateAssigned})

		estado := workflow.StateCancelled
		_, err := f.svc.Update(context.Background(), admin, id, audit.Patch{Estado: &estado, MotivoAnula: strPtr("x")})
		assert.Equal(t, errorbank.KindForbidden, kindOf(err))
	})

	t.Run("manager can cancel through a patch with a reason", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateAssigned})

		estado := workflow.StateCancelled
		got, err := f.svc.Update(context.Background(), manager, id, audit.Patch{Estado: &estado, MotivoAnula: strPtr("sin presupuesto")})
		require.NoError(t, err)

		assert.Equal(t, workflow.StateCancelled, got.Estado)
		require.NotNil(t, got.MotivoAnula)
		assert.Equal(t, "sin presupuesto", *got.MotivoAnula)
	})

	t.Run("reassigning the buyer publishes an event", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateAssigned})

		comprador := int64(7)
		_, err := f.svc.Update(context.Background(), admin, id, audit.Patch{CompradorID: &comprador})
		require.NoError(t, err)

		require.Len(t, f.publisher.published, 1)
		var event AssignmentEvent
		require.NoError(t, json.Unmarshal(f.publisher.published[0], &event))
		assert.Equal(t, id, event.CompraID)
		assert.Equal(t, "carla@example.cl", event.Email)
	})

	t.Run("unchanged fields do not publish", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateAssigned, CompradorID: 7})

		_, err := f.svc.Update(context.Background(), admin, id, audit.Patch{Descripcion: strPtr("x")})
		require.NoError(t, err)
		assert.Empty(t, f.publisher.published)
	})
}

func TestCancel(t *testing.T) {
	t.Run("manager cancels with a reason", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StatePurchased})

		got, err := f.svc.Cancel(context.Background(), manager, id, "proveedor quebrado")
		require.NoError(t, err)

		assert.Equal(t, workflow.StateCancelled, got.Estado)
		require.NotNil(t, got.MotivoAnula)
		assert.Equal(t, "proveedor quebrado", *got.MotivoAnula)
		require.Len(t, f.audits.entries, 1)
		assert.Equal(t, audit.ActionModification, f.audits.entries[0].Accion)
	})

	t.Run("reason is mandatory", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateAssigned})

		_, err := f.svc.Cancel(context.Background(), manager, id, "")
		assert.Equal(t, errorbank.KindUnprocessableEntity, kindOf(err))
	})

	t.Run("admin lacks the cancel capability", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateAssigned})

		_, err := f.svc.Cancel(context.Background(), admin, id, "motivo")
		assert.Equal(t, errorbank.KindForbidden, kindOf(err))
	})

	t.Run("cancelling twice conflicts", func(t *testing.T) {
		f := newFixture(t)
		motivo := "duplicada"
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateCancelled, MotivoAnula: &motivo})

		_, err := f.svc.Cancel(context.Background(), manager, id, "otra vez")
		assert.Equal(t, errorbank.KindConflict, kindOf(err))
	})
}

func TestDelete(t *testing.T) {
	t.Run("admin deletes and audits", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateAssigned})

		require.NoError(t, f.svc.Delete(context.Background(), admin, id))

		assert.Equal(t, 1, f.store.deletes)
		require.Len(t, f.audits.entries, 1)
		assert.Equal(t, audit.ActionDeletion, f.audits.entries[0].Accion)
		assert.Equal(t, "Eliminó la solicitud", f.audits.entries[0].Resumen)
	})

	t.Run("buyer may not delete", func(t *testing.T) {
		f := newFixture(t)
		id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateAssigned})

		err := f.svc.Delete(context.Background(), buyer, id)
		assert.Equal(t, errorbank.KindForbidden, kindOf(err))
		assert.Zero(t, f.store.deletes)
	})

	t.Run("missing request is not found", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Delete(context.Background(), admin, 404)
		assert.Equal(t, errorbank.KindNotFound, kindOf(err))
	})
}

func TestPermissionsFor(t *testing.T) {
	f := newFixture(t)
	id := seed(t, f, &entity.PurchaseRequest{Estado: workflow.StateAssigned})

	perms, err := f.svc.PermissionsFor(context.Background(), buyer, id)
	require.NoError(t, err)

	assert.True(t, perms.PuedeEditar)
	assert.False(t, perms.PuedeAnular)
	assert.False(t, perms.PuedeEliminar)
	assert.NotContains(t, perms.Campos, workflow.FieldPresupuesto)
	assert.Equal(t, []workflow.State{workflow.StateAssigned, workflow.StatePurchased}, perms.EstadosSiguientes)
}
