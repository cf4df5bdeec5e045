package domain

import "time"

// AccionAuditoria identifica la operación registrada en la bitácora.
type AccionAuditoria string

const (
	AccionCreacion      AccionAuditoria = "CREACION"
	AccionActualizacion AccionAuditoria = "ACTUALIZACION"
	AccionAprobacion    AccionAuditoria = "APROBACION"
	AccionRechazo       AccionAuditoria = "RECHAZO"
	AccionEjecucion     AccionAuditoria = "EJECUCION"
	AccionCancelacion   AccionAuditoria = "CANCELACION"
	AccionDevolucion    AccionAuditoria = "DEVOLUCION"
	AccionBaja          AccionAuditoria = "BAJA"
)

// Auditoria es una entrada de la bitácora de movimientos. La escritura es de
// mejor esfuerzo: un fallo al registrarla se loguea y nunca hace fallar la
// operación principal.
type Auditoria struct {
	ID        string          `json:"id"`
	Entidad   string          `json:"entidad"` // "bien", "asignacion", "transferencia", "desincorporacion"
	EntidadID string          `json:"entidad_id"`
	Accion    AccionAuditoria `json:"accion"`
	UsuarioID string          `json:"usuario_id"`
	Detalle   string          `json:"detalle,omitempty"`
	Fecha     time.Time       `json:"fecha"`
}
