package workflow

// Field names a user-editable attribute of a purchase request. The values
// double as the keys recorded in the audit trail.
type Field string

const (
	FieldNumeroOrdinario Field = "numero_ordinario"
	FieldDescripcion     Field = "descripcion"
	FieldUnidad          Field = "unidad_requirente"
	FieldComprador       Field = "comprador"
	FieldFechaSolicitud  Field = "fecha_solicitud"
	FieldFechaInicio     Field = "fecha_inicio"
	FieldSubvencion      Field = "subvencion"
	FieldEstado          Field = "estado"
	FieldPresupuesto     Field = "presupuesto"
	FieldObservacion     Field = "observacion"
	FieldMotivoAnula     Field = "motivo_anula"
	FieldAdjuntos        Field = "adjuntos"
)

// AllFields is the complete editable field set in presentation order.
var AllFields = []Field{
	FieldNumeroOrdinario,
	FieldDescripcion,
	FieldUnidad,
	FieldComprador,
	FieldFechaSolicitud,
	FieldFechaInicio,
	FieldSubvencion,
	FieldEstado,
	FieldPresupuesto,
	FieldObservacion,
	FieldMotivoAnula,
	FieldAdjuntos,
}

func (f Field) String() string { return string(f) }

func fieldsWithout(fields []Field, excluded ...Field) []Field {
	out := make([]Field, 0, len(fields))
next:
	for _, f := range fields {
		for _, ex := range excluded {
			if f == ex {
				continue next
			}
		}
		out = append(out, f)
	}
	return out
}
