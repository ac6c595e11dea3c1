package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusupply/compras/internal/entity"
	"github.com/edusupply/compras/internal/workflow"
)

func strPtr(s string) *string { return &s }

func TestDiffUnsetFieldsAreIgnored(t *testing.T) {
	original := &entity.PurchaseRequest{
		Descripcion: "Resmas de papel",
		Observacion: "urgente",
	}

	cs := Diff(original, Patch{Descripcion: strPtr("Resmas de papel carta")})

	require.Len(t, cs, 1)
	assert.Equal(t, workflow.FieldDescripcion, cs[0].Field)
	assert.Equal(t, "Resmas de papel", *cs[0].Anterior)
	assert.Equal(t, "Resmas de papel carta", *cs[0].Nuevo)
}

func TestDiffEmptyVersusAbsent(t *testing.T) {
	original := &entity.PurchaseRequest{Observacion: "revisar"}

	t.Run("submitted empty clears the field", func(t *testing.T) {
		cs := Diff(original, Patch{Observacion: strPtr("")})
		require.Len(t, cs, 1)
		assert.Equal(t, "revisar", *cs[0].Anterior)
		assert.Nil(t, cs[0].Nuevo)
	})

	t.Run("absent field emits nothing", func(t *testing.T) {
		cs := Diff(original, Patch{})
		assert.True(t, cs.Empty())
	})

	t.Run("empty against empty is not a change", func(t *testing.T) {
		cs := Diff(&entity.PurchaseRequest{}, Patch{Observacion: strPtr("")})
		assert.True(t, cs.Empty())
	})
}

func TestDiffZeroValuesCountAsEmpty(t *testing.T) {
	original := &entity.PurchaseRequest{}

	zeroNum := 0
	zeroID := int64(0)
	zeroDec := decimal.Zero
	zeroDate := time.Time{}
	cs := Diff(original, Patch{
		NumeroOrdinario: &zeroNum,
		UnidadID:        &zeroID,
		Presupuesto:     &zeroDec,
		FechaSolicitud:  &zeroDate,
	})
	assert.True(t, cs.Empty())
}

func TestDiffFollowsTrackedOrder(t *testing.T) {
	original := &entity.PurchaseRequest{
		NumeroOrdinario: 12,
		Descripcion:     "Mobiliario",
		Observacion:     "sala 3",
	}

	num := 15
	cs := Diff(original, Patch{
		Observacion:     strPtr("sala 4"),
		NumeroOrdinario: &num,
		Descripcion:     strPtr("Mobiliario escolar"),
	})

	require.Len(t, cs, 3)
	assert.Equal(t, []workflow.Field{
		workflow.FieldNumeroOrdinario,
		workflow.FieldDescripcion,
		workflow.FieldObservacion,
	}, cs.Fields())
}

func TestDiffDoesNotTrackAttachments(t *testing.T) {
	cs := Diff(&entity.PurchaseRequest{}, Patch{Adjunto: strPtr("acta.pdf")})
	assert.True(t, cs.Empty())
}

func TestDiffCoercions(t *testing.T) {
	original := &entity.PurchaseRequest{
		FechaInicio: time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC),
		Presupuesto: decimal.NewFromInt(150000),
	}

	newDate := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	newBudget := decimal.RequireFromString("175000.50")
	cs := Diff(original, Patch{FechaInicio: &newDate, Presupuesto: &newBudget})

	require.Len(t, cs, 2)
	assert.Equal(t, "2026-03-10", *cs[0].Anterior)
	assert.Equal(t, "2026-03-12", *cs[0].Nuevo)
	assert.Equal(t, "150000", *cs[1].Anterior)
	assert.Equal(t, "175000.5", *cs[1].Nuevo)
}

func TestChangeSetJSON(t *testing.T) {
	estado := workflow.StatePurchased
	cs := Diff(&entity.PurchaseRequest{Estado: workflow.StateAssigned}, Patch{Estado: &estado})

	raw, err := cs.JSON()
	require.NoError(t, err)

	var decoded map[string]struct {
		Anterior *string `json:"anterior"`
		Nuevo    *string `json:"nuevo"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "estado")
	assert.Equal(t, "asignada", *decoded["estado"].Anterior)
	assert.Equal(t, "comprada", *decoded["estado"].Nuevo)
}

func TestChangeSetJSONEmptyIsNil(t *testing.T) {
	raw, err := ChangeSet{}.JSON()
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "Creó la solicitud", Summarize(nil, ActionCreation))
	assert.Equal(t, "Eliminó la solicitud", Summarize(nil, ActionDeletion))
	assert.Equal(t, "Acción: modificacion", Summarize(nil, ActionModification))

	num := 4
	cs := Diff(&entity.PurchaseRequest{}, Patch{
		NumeroOrdinario: &num,
		MotivoAnula:     strPtr("duplicada"),
	})
	assert.Equal(t, "Modificó: numero ordinario, motivo anula", Summarize(cs, ActionModification))
}

func TestPatchApply(t *testing.T) {
	req := &entity.PurchaseRequest{
		Descripcion: "original",
		MotivoAnula: strPtr("error de digitación"),
	}

	estado := workflow.StateAssigned
	Patch{
		Descripcion: strPtr("corregida"),
		Estado:      &estado,
		MotivoAnula: strPtr(""),
	}.Apply(req)

	assert.Equal(t, "corregida", req.Descripcion)
	assert.Equal(t, workflow.StateAssigned, req.Estado)
	assert.Nil(t, req.MotivoAnula, "empty motivo clears the pointer")
}

func TestPatchFieldsAndEmpty(t *testing.T) {
	assert.True(t, Patch{}.Empty())

	p := Patch{Descripcion: strPtr("x"), Adjunto: strPtr("doc.pdf")}
	assert.False(t, p.Empty())
	assert.Equal(t, []workflow.Field{workflow.FieldDescripcion, workflow.FieldAdjuntos}, p.Fields())
}
