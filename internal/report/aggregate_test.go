package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusupply/compras/internal/entity"
)

func req(unit *entity.Unit, subsidy *entity.Subsidy, created time.Time, values ...int64) *entity.PurchaseRequest {
	r := &entity.PurchaseRequest{
		Unidad:     unit,
		Subvencion: subsidy,
		CreatedAt:  created,
	}
	if unit != nil {
		r.UnidadID = unit.ID
	}
	for _, v := range values {
		r.Ordenes = append(r.Ordenes, &entity.PurchaseOrder{Valor: decimal.NewFromInt(v)})
	}
	return r
}

func TestBuildTotals(t *testing.T) {
	escuela := &entity.Unit{ID: 1, Nombre: "Escuela A"}
	liceo := &entity.Unit{ID: 2, Nombre: "Liceo B"}
	sep := &entity.Subsidy{Nombre: "SEP"}

	records := []*entity.PurchaseRequest{
		req(escuela, sep, time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC), 100000, 50000),
		req(liceo, nil, time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC), 200000),
		req(escuela, sep, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)),
	}

	rep := Build(records, Filter{Year: 2026})

	assert.True(t, rep.TotalInvestment.Equal(decimal.NewFromInt(350000)))
	// Requests are counted, not their orders: three requests, three orders.
	assert.Equal(t, 3, rep.TotalOrders)

	require.Len(t, rep.MonthlyEvolution, 12)
	march := rep.MonthlyEvolution[2]
	assert.True(t, march.Amount.Equal(decimal.NewFromInt(350000)))
	assert.Equal(t, 2, march.Count)

	july := rep.MonthlyEvolution[6]
	assert.True(t, july.Amount.IsZero())
	assert.Equal(t, 1, july.Count, "orderless requests still count")

	for _, i := range []int{0, 1, 3, 4, 5, 7, 8, 9, 10, 11} {
		assert.True(t, rep.MonthlyEvolution[i].Amount.IsZero())
		assert.Zero(t, rep.MonthlyEvolution[i].Count)
	}
}

func TestBuildBySchoolOrdering(t *testing.T) {
	alto := &entity.Unit{ID: 1, Nombre: "Alto Monto"}
	zebra := &entity.Unit{ID: 2, Nombre: "Zebra"}
	andes := &entity.Unit{ID: 3, Nombre: "Andes"}
	created := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	records := []*entity.PurchaseRequest{
		req(zebra, nil, created, 5000),
		req(andes, nil, created, 5000),
		req(alto, nil, created, 90000),
	}

	rep := Build(records, Filter{Year: 2026})

	require.Len(t, rep.BySchool, 3)
	assert.Equal(t, "Alto Monto", rep.BySchool[0].Unidad)
	// Ties break alphabetically.
	assert.Equal(t, "Andes", rep.BySchool[1].Unidad)
	assert.Equal(t, "Zebra", rep.BySchool[2].Unidad)
}

func TestBuildUnassignedUnitBucket(t *testing.T) {
	created := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	rep := Build([]*entity.PurchaseRequest{req(nil, nil, created, 1000)}, Filter{Year: 2026})

	require.Len(t, rep.BySchool, 1)
	assert.Equal(t, UnassignedUnit, rep.BySchool[0].Unidad)
}

func TestBuildFilters(t *testing.T) {
	escuela := &entity.Unit{ID: 1, Nombre: "Escuela A"}
	liceo := &entity.Unit{ID: 2, Nombre: "Liceo B"}
	sep := &entity.Subsidy{Nombre: "Subvención SEP"}
	general := &entity.Subsidy{Nombre: "General"}

	records := []*entity.PurchaseRequest{
		req(escuela, sep, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), 1000),
		req(liceo, general, time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC), 2000),
		req(escuela, sep, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), 4000),
	}

	t.Run("year", func(t *testing.T) {
		rep := Build(records, Filter{Year: 2025})
		assert.Equal(t, 1, rep.TotalOrders)
		assert.True(t, rep.TotalInvestment.Equal(decimal.NewFromInt(4000)))
	})

	t.Run("subsidy name is matched case-insensitively", func(t *testing.T) {
		rep := Build(records, Filter{Year: 2026, SubsidyContains: "sep"})
		assert.Equal(t, 1, rep.TotalOrders)
		assert.True(t, rep.TotalInvestment.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("unit", func(t *testing.T) {
		rep := Build(records, Filter{Year: 2026, UnitID: 2})
		assert.Equal(t, 1, rep.TotalOrders)
		assert.True(t, rep.TotalInvestment.Equal(decimal.NewFromInt(2000)))
	})

	t.Run("month", func(t *testing.T) {
		month := 1 // February, zero-based
		rep := Build(records, Filter{Year: 2026, Month: &month})
		assert.Equal(t, 1, rep.TotalOrders)
		assert.True(t, rep.TotalInvestment.Equal(decimal.NewFromInt(2000)))
	})
}

func TestBuildIsOrderIndependent(t *testing.T) {
	escuela := &entity.Unit{ID: 1, Nombre: "Escuela A"}
	created := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	records := []*entity.PurchaseRequest{
		req(escuela, nil, created, 100),
		req(escuela, nil, created, 200),
		req(nil, nil, created, 300),
	}
	reversed := []*entity.PurchaseRequest{records[2], records[1], records[0]}

	a := Build(records, Filter{Year: 2026})
	b := Build(reversed, Filter{Year: 2026})

	assert.True(t, a.TotalInvestment.Equal(b.TotalInvestment))
	assert.Equal(t, a.TotalOrders, b.TotalOrders)
	assert.Equal(t, a.BySchool, b.BySchool)
}

func TestBuildIgnoresNilRecords(t *testing.T) {
	rep := Build([]*entity.PurchaseRequest{nil}, Filter{Year: 2026})
	assert.Zero(t, rep.TotalOrders)
	assert.True(t, rep.TotalInvestment.IsZero())
	assert.Empty(t, rep.BySchool)
}
