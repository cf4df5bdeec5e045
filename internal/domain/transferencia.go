package domain

import "time"

// TipoTransferencia distingue un movimiento definitivo de un préstamo con retorno.
type TipoTransferencia string

const (
	TransferenciaPermanente TipoTransferencia = "PERMANENTE"
	TransferenciaTemporal   TipoTransferencia = "TEMPORAL"
)

// EsValido verifica que el tipo pertenezca al conjunto permitido.
func (t TipoTransferencia) EsValido() bool {
	return t == TransferenciaPermanente || t == TransferenciaTemporal
}

// EstadoTransferencia modela la máquina de estados del flujo:
// PENDIENTE -> APROBADA -> EJECUTADA; PENDIENTE -> RECHAZADA;
// PENDIENTE puede eliminarse por cancelación del propio solicitante.
type EstadoTransferencia string

const (
	TransferenciaPendiente EstadoTransferencia = "PENDIENTE"
	TransferenciaAprobada  EstadoTransferencia = "APROBADA"
	TransferenciaRechazada EstadoTransferencia = "RECHAZADA"
	TransferenciaEjecutada EstadoTransferencia = "EJECUTADA"
)

// Transferencia representa la solicitud de movimiento de un bien entre dos
// unidades administrativas. El origen se captura del estado actual del bien
// al momento de la solicitud, nunca lo aporta el llamador.
//
// La mutación de custodia del bien se aplica al APROBAR (decisión de diseño:
// la transferencia surte efecto con la aprobación; Ejecutar reconfirma de
// forma idempotente y marca el cierre administrativo).
type Transferencia struct {
	ID                    string              `json:"id"`
	BienID                string              `json:"bien_id"`
	UbicacionOrigenID     string              `json:"ubicacion_origen_id"`
	ResponsableOrigenID   string              `json:"responsable_origen_id"`
	UbicacionDestinoID    string              `json:"ubicacion_destino_id"`
	ResponsableDestinoID  string              `json:"responsable_destino_id"`
	Motivo                string              `json:"motivo"`
	Tipo                  TipoTransferencia   `json:"tipo"`
	FechaRetornoPrevista  *time.Time          `json:"fecha_retorno_prevista,omitempty"` // solo TEMPORAL
	Observaciones         string              `json:"observaciones,omitempty"`
	Estado                EstadoTransferencia `json:"estado"`
	SolicitadaPor         string              `json:"solicitada_por"`
	AprobadaPor           string              `json:"aprobada_por,omitempty"`
	FechaSolicitud        time.Time           `json:"fecha_solicitud"`
	FechaAprobacion       *time.Time          `json:"fecha_aprobacion,omitempty"`
	FechaEjecucion        *time.Time          `json:"fecha_ejecucion,omitempty"`
	FechaDevolucion       *time.Time          `json:"fecha_devolucion,omitempty"` // solo TEMPORAL, al registrar el retorno
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// SolicitudTransferencia es el payload de entrada para solicitar una transferencia.
type SolicitudTransferencia struct {
	BienID               string            `json:"bien_id"`
	UbicacionDestinoID   string            `json:"ubicacion_destino_id"`
	ResponsableDestinoID string            `json:"responsable_destino_id"`
	Motivo               string            `json:"motivo"`
	Tipo                 TipoTransferencia `json:"tipo,omitempty"` // PERMANENTE por defecto
	FechaRetornoPrevista *time.Time        `json:"fecha_retorno_prevista,omitempty"`
	Observaciones        string            `json:"observaciones,omitempty"`
}
