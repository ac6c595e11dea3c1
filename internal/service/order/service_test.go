package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/calendar"
	"github.com/edusupply/compras/internal/config"
	"github.com/edusupply/compras/internal/entity"
	orderrepo "github.com/edusupply/compras/internal/repository/order"
	requestrepo "github.com/edusupply/compras/internal/repository/request"
	"github.com/edusupply/compras/internal/workflow"
	"github.com/edusupply/compras/pkg/errorbank"
)

type fakeOrderStore struct {
	nextID  int64
	byID    map[int64]*entity.PurchaseOrder
	updates int
	deletes int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{nextID: 1, byID: make(map[int64]*entity.PurchaseOrder)}
}

func (f *fakeOrderStore) Create(_ context.Context, oc *entity.PurchaseOrder) error {
	oc.ID = f.nextID
	f.nextID++
	clone := *oc
	f.byID[oc.ID] = &clone
	return nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, id int64) (*entity.PurchaseOrder, error) {
	oc, ok := f.byID[id]
	if !ok {
		return nil, orderrepo.ErrNotFound
	}
	clone := *oc
	return &clone, nil
}

func (f *fakeOrderStore) ListByRequest(_ context.Context, compraID int64) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	for _, oc := range f.byID {
		if oc.CompraID == compraID {
			out = append(out, oc)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) Update(_ context.Context, oc *entity.PurchaseOrder) error {
	if _, ok := f.byID[oc.ID]; !ok {
		return orderrepo.ErrNotFound
	}
	clone := *oc
	f.byID[oc.ID] = &clone
	f.updates++
	return nil
}

func (f *fakeOrderStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return orderrepo.ErrNotFound
	}
	delete(f.byID, id)
	f.deletes++
	return nil
}

type fakeRequestStore struct {
	byID map[int64]*entity.PurchaseRequest
}

func (f *fakeRequestStore) GetByID(_ context.Context, id int64) (*entity.PurchaseRequest, error) {
	req, ok := f.byID[id]
	if !ok {
		return nil, requestrepo.ErrNotFound
	}
	clone := *req
	return &clone, nil
}

type fakeHolidaySource struct {
	set   calendar.HolidaySet
	years []int
}

func (f *fakeHolidaySource) SetForYears(_ context.Context, years ...int) calendar.HolidaySet {
	f.years = append(f.years, years...)
	return f.set
}

type fixture struct {
	svc      *Service
	orders   *fakeOrderStore
	requests *fakeRequestStore
	holidays *fakeHolidaySource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orders := newFakeOrderStore()
	requests := &fakeRequestStore{byID: map[int64]*entity.PurchaseRequest{
		10: {ID: 10, NumeroOrdinario: 42, Estado: workflow.StatePurchased},
		11: {ID: 11, NumeroOrdinario: 43, Estado: workflow.StateAssigned},
	}}
	holidays := &fakeHolidaySource{set: calendar.HolidaySet{}}

	svc := NewService(Params{
		Orders:   orders,
		Requests: requests,
		Calc:     calendar.NewCalculator(config.Config{}, zap.NewNop()),
		Holidays: holidays,
		Logger:   zap.NewNop(),
	})
	return &fixture{svc: svc, orders: orders, requests: requests, holidays: holidays}
}

var (
	manager  = workflow.Actor{ID: 2, Nombre: "Pedro", Rol: workflow.RoleManager}
	buyer    = workflow.Actor{ID: 3, Nombre: "Carla", Rol: workflow.RoleBuyer}
	observer = workflow.Actor{ID: 4, Nombre: "Olga", Rol: workflow.RoleObserver}
)

func kindOf(err error) errorbank.Kind {
	return errorbank.From(err).Kind()
}

func intPtr(n int) *int { return &n }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches to purchased request", func(t *testing.T) {
		f := newFixture(t)
		oc := &entity.PurchaseOrder{Codigo: "OC-2026-001", Valor: decimal.NewFromInt(150000)}

		require.NoError(t, f.svc.Create(ctx, buyer, 10, oc))
		assert.Equal(t, int64(10), oc.CompraID)
		assert.False(t, oc.Fecha.IsZero(), "date defaults to now when omitted")

		saved, err := f.orders.GetByID(ctx, oc.ID)
		require.NoError(t, err)
		assert.Equal(t, "OC-2026-001", saved.Codigo)
	})

	t.Run("rejects negative value", func(t *testing.T) {
		f := newFixture(t)
		oc := &entity.PurchaseOrder{Valor: decimal.NewFromInt(-1)}

		err := f.svc.Create(ctx, manager, 10, oc)
		assert.Equal(t, errorbank.KindUnprocessableEntity, kindOf(err))
	})

	t.Run("rejects request still in assigned state", func(t *testing.T) {
		f := newFixture(t)
		oc := &entity.PurchaseOrder{Valor: decimal.NewFromInt(1000)}

		err := f.svc.Create(ctx, manager, 11, oc)
		assert.Equal(t, errorbank.KindUnprocessableEntity, kindOf(err))
		assert.Empty(t, f.orders.byID)
	})

	t.Run("observer may not attach orders", func(t *testing.T) {
		f := newFixture(t)
		oc := &entity.PurchaseOrder{Valor: decimal.NewFromInt(1000)}

		err := f.svc.Create(ctx, observer, 10, oc)
		assert.Equal(t, errorbank.KindForbidden, kindOf(err))
	})

	t.Run("missing request is not found", func(t *testing.T) {
		f := newFixture(t)
		oc := &entity.PurchaseOrder{Valor: decimal.NewFromInt(1000)}

		err := f.svc.Create(ctx, manager, 999, oc)
		assert.Equal(t, errorbank.KindNotFound, kindOf(err))
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("owning request is immutable", func(t *testing.T) {
		f := newFixture(t)
		oc := &entity.PurchaseOrder{Codigo: "OC-1", Valor: decimal.NewFromInt(1000)}
		require.NoError(t, f.svc.Create(ctx, manager, 10, oc))

		patch := &entity.PurchaseOrder{ID: oc.ID, CompraID: 999, Codigo: "OC-1B", Valor: decimal.NewFromInt(2000)}
		require.NoError(t, f.svc.Update(ctx, manager, patch))

		saved, err := f.orders.GetByID(ctx, oc.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), saved.CompraID, "compra reference must not move")
		assert.Equal(t, "OC-1B", saved.Codigo)
	})

	t.Run("rejects negative value", func(t *testing.T) {
		f := newFixture(t)
		oc := &entity.PurchaseOrder{Valor: decimal.NewFromInt(1000)}
		require.NoError(t, f.svc.Create(ctx, manager, 10, oc))

		patch := &entity.PurchaseOrder{ID: oc.ID, Valor: decimal.NewFromInt(-500)}
		err := f.svc.Update(ctx, manager, patch)
		assert.Equal(t, errorbank.KindUnprocessableEntity, kindOf(err))
		assert.Zero(t, f.orders.updates)
	})

	t.Run("observer may not update", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Update(ctx, observer, &entity.PurchaseOrder{ID: 1})
		assert.Equal(t, errorbank.KindForbidden, kindOf(err))
	})

	t.Run("missing order is not found", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Update(ctx, manager, &entity.PurchaseOrder{ID: 404, Valor: decimal.Zero})
		assert.Equal(t, errorbank.KindNotFound, kindOf(err))
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("manager removes order", func(t *testing.T) {
		f := newFixture(t)
		oc := &entity.PurchaseOrder{Valor: decimal.NewFromInt(1000)}
		require.NoError(t, f.svc.Create(ctx, manager, 10, oc))

		require.NoError(t, f.svc.Delete(ctx, manager, oc.ID))
		assert.Equal(t, 1, f.orders.deletes)
	})

	t.Run("observer may not delete", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Delete(ctx, observer, 1)
		assert.Equal(t, errorbank.KindForbidden, kindOf(err))
	})
}

func TestDeliveryDate(t *testing.T) {
	ctx := context.Background()

	t.Run("adds business days over a holiday", func(t *testing.T) {
		f := newFixture(t)
		f.holidays.set.Add("2026-01-06")
		oc := &entity.PurchaseOrder{
			Fecha:        date(2026, time.January, 5), // Monday
			Valor:        decimal.NewFromInt(1000),
			PlazoEntrega: intPtr(3),
		}
		require.NoError(t, f.svc.Create(ctx, manager, 10, oc))

		got, err := f.svc.DeliveryDate(ctx, oc.ID)
		require.NoError(t, err)
		assert.Equal(t, date(2026, time.January, 9), got)
	})

	t.Run("fetches holidays for the start year and the next", func(t *testing.T) {
		f := newFixture(t)
		oc := &entity.PurchaseOrder{
			Fecha:        date(2026, time.December, 28),
			Valor:        decimal.NewFromInt(1000),
			PlazoEntrega: intPtr(10),
		}
		require.NoError(t, f.svc.Create(ctx, manager, 10, oc))

		_, err := f.svc.DeliveryDate(ctx, oc.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{2026, 2027}, f.holidays.years)
	})

	t.Run("order without a term has no delivery date", func(t *testing.T) {
		f := newFixture(t)
		oc := &entity.PurchaseOrder{Fecha: date(2026, time.March, 2), Valor: decimal.NewFromInt(1000)}
		require.NoError(t, f.svc.Create(ctx, manager, 10, oc))

		_, err := f.svc.DeliveryDate(ctx, oc.ID)
		assert.Equal(t, errorbank.KindUnprocessableEntity, kindOf(err))
	})
}
