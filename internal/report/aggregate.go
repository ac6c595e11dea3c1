// Package report folds purchase requests and their linked orders into the
// investment report buckets. Pure computation; callers fetch the records and
// memoise results.
package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/edusupply/compras/internal/entity"
)

// UnassignedUnit labels records without a requesting unit.
const UnassignedUnit = "Sin unidad"

// Filter narrows the record set before folding.
type Filter struct {
	// Year filters on the creation year; zero keeps every year.
	Year int
	// SubsidyContains is matched case-insensitively against the subsidy name.
	SubsidyContains string
	// UnitID keeps a single requesting unit when non-zero.
	UnitID int64
	// Month keeps a single creation month (0-11) when non-nil.
	Month *int
}

// Bucket is a per-month total.
type Bucket struct {
	Amount decimal.Decimal `json:"monto"`
	Count  int             `json:"cantidad"`
}

// UnitBucket is a per-unit total.
type UnitBucket struct {
	Unidad string          `json:"unidad"`
	Amount decimal.Decimal `json:"monto"`
	Count  int             `json:"cantidad"`
}

// Report is the aggregated investment view for a reporting period.
type Report struct {
	TotalInvestment decimal.Decimal `json:"inversion_total"`
	// TotalOrders counts kept requests, not individual purchase orders. The
	// name is historical; downstream consumers depend on this semantic.
	TotalOrders      int          `json:"total_ordenes"`
	MonthlyEvolution []Bucket     `json:"evolucion_mensual"`
	BySchool         []UnitBucket `json:"por_unidad"`
}

// Build folds the records into a Report. Requests without orders contribute
// amount zero but still count: they represent committed, not-yet-priced
// spend. The result is independent of input ordering.
func Build(records []*entity.PurchaseRequest, f Filter) Report {
	monthly := make([]Bucket, 12)
	for i := range monthly {
		monthly[i].Amount = decimal.Zero
	}

	byUnit := make(map[string]UnitBucket)
	total := decimal.Zero
	kept := 0

	needle := strings.ToLower(f.SubsidyContains)

	for _, req := range records {
		if req == nil || !matches(req, f, needle) {
			continue
		}
		kept++

		amount := decimal.Zero
		for _, oc := range req.Ordenes {
			if oc != nil {
				amount = amount.Add(oc.Valor)
			}
		}
		total = total.Add(amount)

		month := int(req.CreatedAt.Month()) - 1
		if month >= 0 && month < 12 {
			monthly[month].Amount = monthly[month].Amount.Add(amount)
			monthly[month].Count++
		}

		name := UnassignedUnit
		if req.Unidad != nil && req.Unidad.Nombre != "" {
			name = req.Unidad.Nombre
		}
		bucket := byUnit[name]
		if bucket.Unidad == "" {
			bucket = UnitBucket{Unidad: name, Amount: decimal.Zero}
		}
		bucket.Amount = bucket.Amount.Add(amount)
		bucket.Count++
		byUnit[name] = bucket
	}

	bySchool := make([]UnitBucket, 0, len(byUnit))
	for _, bucket := range byUnit {
		bySchool = append(bySchool, bucket)
	}
	sort.Slice(bySchool, func(i, j int) bool {
		if cmp := bySchool[i].Amount.Cmp(bySchool[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return bySchool[i].Unidad < bySchool[j].Unidad
	})

	return Report{
		TotalInvestment:  total,
		TotalOrders:      kept,
		MonthlyEvolution: monthly,
		BySchool:         bySchool,
	}
}

func matches(req *entity.PurchaseRequest, f Filter, needle string) bool {
	if f.Year != 0 && req.CreatedAt.Year() != f.Year {
		return false
	}
	if needle != "" {
		name := ""
		if req.Subvencion != nil {
			name = req.Subvencion.Nombre
		}
		if !strings.Contains(strings.ToLower(name), needle) {
			return false
		}
	}
	if f.UnitID != 0 && req.UnidadID != f.UnitID {
		return false
	}
	if f.Month != nil && int(req.CreatedAt.Month())-1 != *f.Month {
		return false
	}
	return true
}
