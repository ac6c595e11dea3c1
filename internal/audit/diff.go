// Package audit turns a proposed purchase-request update into a structured,
// human-readable change record. Everything here is a pure transformation;
// persistence of the resulting log entry happens in the service layer.
package audit

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edusupply/compras/internal/entity"
	"github.com/edusupply/compras/internal/workflow"
)

// Action tags recorded in the audit trail.
const (
	ActionCreation     = "creacion"
	ActionModification = "modificacion"
	ActionDeletion     = "eliminacion"
)

// Patch is a partial update to a purchase request. A nil pointer means the
// field was not submitted; a pointer to a zero value means it was submitted
// empty. The distinction is what makes the empty-vs-absent diff rule exact.
type Patch struct {
	NumeroOrdinario *int
	Descripcion     *string
	UnidadID        *int64
	CompradorID     *int64
	FechaSolicitud  *time.Time
	FechaInicio     *time.Time
	SubvencionID    *int64
	Estado          *workflow.State
	Presupuesto     *decimal.Decimal
	Observacion     *string
	MotivoAnula     *string
	Adjunto         *string
}

// Fields lists the submitted fields in tracked order, for permission gating.
func (p Patch) Fields() []workflow.Field {
	var out []workflow.Field
	for _, f := range append(append([]workflow.Field{}, TrackedFields...), workflow.FieldAdjuntos) {
		if _, set := p.value(f); set {
			out = append(out, f)
		}
	}
	return out
}

// Empty reports whether the patch carries no fields at all.
func (p Patch) Empty() bool { return len(p.Fields()) == 0 }

// Apply writes the submitted fields onto the request.
func (p Patch) Apply(req *entity.PurchaseRequest) {
	if p.NumeroOrdinario != nil {
		req.NumeroOrdinario = *p.NumeroOrdinario
	}
	if p.Descripcion != nil {
		req.Descripcion = *p.Descripcion
	}
	if p.UnidadID != nil {
		req.UnidadID = *p.UnidadID
	}
	if p.CompradorID != nil {
		req.CompradorID = *p.CompradorID
	}
	if p.FechaSolicitud != nil {
		req.FechaSolicitud = *p.FechaSolicitud
	}
	if p.FechaInicio != nil {
		req.FechaInicio = *p.FechaInicio
	}
	if p.SubvencionID != nil {
		req.SubvencionID = *p.SubvencionID
	}
	if p.Estado != nil {
		req.Estado = *p.Estado
	}
	if p.Presupuesto != nil {
		req.Presupuesto = *p.Presupuesto
	}
	if p.Observacion != nil {
		req.Observacion = *p.Observacion
	}
	if p.MotivoAnula != nil {
		if *p.MotivoAnula == "" {
			req.MotivoAnula = nil
		} else {
			motivo := *p.MotivoAnula
			req.MotivoAnula = &motivo
		}
	}
	if p.Adjunto != nil {
		req.Adjunto = *p.Adjunto
	}
}

// TrackedFields is the fixed, ordered list of fields the diff inspects.
// Adjuntos is deliberately absent: attachment churn is not audited.
var TrackedFields = []workflow.Field{
	workflow.FieldNumeroOrdinario,
	workflow.FieldDescripcion,
	workflow.FieldUnidad,
	workflow.FieldComprador,
	workflow.FieldFechaSolicitud,
	workflow.FieldFechaInicio,
	workflow.FieldSubvencion,
	workflow.FieldEstado,
	workflow.FieldPresupuesto,
	workflow.FieldObservacion,
	workflow.FieldMotivoAnula,
}

// Change is one modified field with its previous and proposed values.
// Empty sides are nil so consumers can tell "cleared" from "was empty".
type Change struct {
	Field    workflow.Field `json:"campo"`
	Anterior *string        `json:"anterior"`
	Nuevo    *string        `json:"nuevo"`
}

// ChangeSet is an ordered collection of changes, following TrackedFields.
type ChangeSet []Change

// Empty reports whether no tracked field differs.
func (cs ChangeSet) Empty() bool { return len(cs) == 0 }

// Fields returns the changed field names in tracked order.
func (cs ChangeSet) Fields() []workflow.Field {
	out := make([]workflow.Field, len(cs))
	for i, c := range cs {
		out[i] = c.Field
	}
	return out
}

// JSON serializes the change set for storage alongside the audit entry.
func (cs ChangeSet) JSON() (json.RawMessage, error) {
	if cs.Empty() {
		return nil, nil
	}
	type pair struct {
		Anterior *string `json:"anterior"`
		Nuevo    *string `json:"nuevo"`
	}
	m := make(map[string]pair, len(cs))
	for _, c := range cs {
		m[string(c.Field)] = pair{Anterior: c.Anterior, Nuevo: c.Nuevo}
	}
	return json.Marshal(m)
}

// Diff compares a request against a proposed patch over the tracked fields.
// Values are compared by string coercion; an unset patch field never emits an
// entry, and two empty values (zero, nil, "") are considered equal.
func Diff(original *entity.PurchaseRequest, patch Patch) ChangeSet {
	var cs ChangeSet
	for _, field := range TrackedFields {
		next, set := patch.value(field)
		if !set {
			continue
		}
		prev := fieldValue(original, field)
		if prev == "" && next == "" {
			continue
		}
		if prev == next {
			continue
		}
		cs = append(cs, Change{
			Field:    field,
			Anterior: nonEmpty(prev),
			Nuevo:    nonEmpty(next),
		})
	}
	return cs
}

// Summarize renders a human-readable line for the audit trail.
func Summarize(cs ChangeSet, accion string) string {
	switch accion {
	case ActionCreation:
		return "Creó la solicitud"
	case ActionDeletion:
		return "Eliminó la solicitud"
	}
	if cs.Empty() {
		return "Acción: " + accion
	}
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = strings.ReplaceAll(string(c.Field), "_", " ")
	}
	return "Modificó: " + strings.Join(names, ", ")
}

func (p Patch) value(field workflow.Field) (string, bool) {
	switch field {
	case workflow.FieldNumeroOrdinario:
		if p.NumeroOrdinario != nil {
			return intValue(*p.NumeroOrdinario), true
		}
	case workflow.FieldDescripcion:
		if p.Descripcion != nil {
			return *p.Descripcion, true
		}
	case workflow.FieldUnidad:
		if p.UnidadID != nil {
			return idValue(*p.UnidadID), true
		}
	case workflow.FieldComprador:
		if p.CompradorID != nil {
			return idValue(*p.CompradorID), true
		}
	case workflow.FieldFechaSolicitud:
		if p.FechaSolicitud != nil {
			return dateValue(*p.FechaSolicitud), true
		}
	case workflow.FieldFechaInicio:
		if p.FechaInicio != nil {
			return dateValue(*p.FechaInicio), true
		}
	case workflow.FieldSubvencion:
		if p.SubvencionID != nil {
			return idValue(*p.SubvencionID), true
		}
	case workflow.FieldEstado:
		if p.Estado != nil {
			return string(*p.Estado), true
		}
	case workflow.FieldPresupuesto:
		if p.Presupuesto != nil {
			return decimalValue(*p.Presupuesto), true
		}
	case workflow.FieldObservacion:
		if p.Observacion != nil {
			return *p.Observacion, true
		}
	case workflow.FieldMotivoAnula:
		if p.MotivoAnula != nil {
			return *p.MotivoAnula, true
		}
	case workflow.FieldAdjuntos:
		if p.Adjunto != nil {
			return *p.Adjunto, true
		}
	}
	return "", false
}

func fieldValue(req *entity.PurchaseRequest, field workflow.Field) string {
	if req == nil {
		return ""
	}
	switch field {
	case workflow.FieldNumeroOrdinario:
		return intValue(req.NumeroOrdinario)
	case workflow.FieldDescripcion:
		return req.Descripcion
	case workflow.FieldUnidad:
		return idValue(req.UnidadID)
	case workflow.FieldComprador:
		return idValue(req.CompradorID)
	case workflow.FieldFechaSolicitud:
		return dateValue(req.FechaSolicitud)
	case workflow.FieldFechaInicio:
		return dateValue(req.FechaInicio)
	case workflow.FieldSubvencion:
		return idValue(req.SubvencionID)
	case workflow.FieldEstado:
		return string(req.Estado)
	case workflow.FieldPresupuesto:
		return decimalValue(req.Presupuesto)
	case workflow.FieldObservacion:
		return req.Observacion
	case workflow.FieldMotivoAnula:
		if req.MotivoAnula == nil {
			return ""
		}
		return *req.MotivoAnula
	}
	return ""
}

func intValue(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func idValue(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func dateValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func decimalValue(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
