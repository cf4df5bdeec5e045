package domain

import "time"

// Asignacion representa la entrega única de un bien desde el almacén central
// hacia su primer departamento y responsable. Es un registro terminal: se crea
// una sola vez por bien (restricción única sobre bien_id) y no tiene
// transiciones posteriores; los movimientos siguientes van por Transferencia.
type Asignacion struct {
	ID                    string    `json:"id"`
	BienID                string    `json:"bien_id"`
	UbicacionDestinoID    string    `json:"ubicacion_destino_id"`
	ResponsableDestinoID  string    `json:"responsable_destino_id"`
	Motivo                string    `json:"motivo"`
	Observaciones         string    `json:"observaciones,omitempty"`
	EmitidaPor            string    `json:"emitida_por"`
	FechaAsignacion       time.Time `json:"fecha_asignacion"`
	CreatedAt             time.Time `json:"created_at"`
}

// SolicitudAsignacion es el payload de entrada para crear una asignación.
type SolicitudAsignacion struct {
	BienID               string `json:"bien_id"`
	UbicacionDestinoID   string `json:"ubicacion_destino_id"`
	ResponsableDestinoID string `json:"responsable_destino_id"`
	Motivo               string `json:"motivo"`
	Observaciones        string `json:"observaciones,omitempty"`
}
