package domain

import "time"

// MotivoDesincorporacion clasifica la causa del retiro del bien.
type MotivoDesincorporacion string

const (
	MotivoPerdida       MotivoDesincorporacion = "PERDIDA"
	MotivoDano          MotivoDesincorporacion = "DANO"
	MotivoObsolescencia MotivoDesincorporacion = "OBSOLESCENCIA"
	MotivoDonacionBaja  MotivoDesincorporacion = "DONACION_BAJA"
	MotivoOtro          MotivoDesincorporacion = "OTRO"
)

// EsValido verifica que el motivo pertenezca al conjunto permitido.
func (m MotivoDesincorporacion) EsValido() bool {
	switch m {
	case MotivoPerdida, MotivoDano, MotivoObsolescencia, MotivoDonacionBaja, MotivoOtro:
		return true
	}
	return false
}

// EstadoDesincorporacion modela la máquina de estados del flujo:
// PENDIENTE -> APROBADA -> EJECUTADA; PENDIENTE -> RECHAZADA;
// PENDIENTE puede eliminarse por cancelación del propio solicitante.
type EstadoDesincorporacion string

const (
	DesincorporacionPendiente EstadoDesincorporacion = "PENDIENTE"
	DesincorporacionAprobada  EstadoDesincorporacion = "APROBADA"
	DesincorporacionRechazada EstadoDesincorporacion = "RECHAZADA"
	DesincorporacionEjecutada EstadoDesincorporacion = "EJECUTADA"
)

// Desincorporacion representa el retiro formal de un bien del inventario
// activo. A diferencia de la transferencia, aprobar NO muta el bien: el
// cambio de estado a DESINCORPORADO ocurre recién al Ejecutar. La ejecución
// es una compuerta deliberada por el mayor impacto del retiro.
type Desincorporacion struct {
	ID                string                 `json:"id"`
	BienID            string                 `json:"bien_id"`
	Motivo            MotivoDesincorporacion `json:"motivo"`
	Descripcion       string                 `json:"descripcion"`
	ValorResidual     float64                `json:"valor_residual"`
	DocumentoSoporte  string                 `json:"documento_soporte,omitempty"`
	Observaciones     string                 `json:"observaciones,omitempty"`
	Estado            EstadoDesincorporacion `json:"estado"`
	SolicitadaPor     string                 `json:"solicitada_por"`
	AprobadaPor       string                 `json:"aprobada_por,omitempty"`
	FechaSolicitud    time.Time              `json:"fecha_solicitud"`
	FechaAprobacion   *time.Time             `json:"fecha_aprobacion,omitempty"`
	FechaEjecucion    *time.Time             `json:"fecha_ejecucion,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// SolicitudDesincorporacion es el payload de entrada para solicitar una desincorporación.
type SolicitudDesincorporacion struct {
	BienID           string                 `json:"bien_id"`
	Motivo           MotivoDesincorporacion `json:"motivo"`
	Descripcion      string                 `json:"descripcion"`
	ValorResidual    float64                `json:"valor_residual,omitempty"`
	DocumentoSoporte string                 `json:"documento_soporte,omitempty"`
	Observaciones    string                 `json:"observaciones,omitempty"`
}
