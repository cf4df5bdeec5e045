package domain

import (
	"time"
)

// EstadoBien representa el estado de vida de un bien dentro del inventario.
type EstadoBien string

const (
	BienActivo         EstadoBien = "ACTIVO"
	BienInactivo       EstadoBien = "INACTIVO"
	BienEnReparacion   EstadoBien = "EN_REPARACION"
	BienDesincorporado EstadoBien = "DESINCORPORADO"
)

// EsValido verifica que el estado pertenezca al conjunto permitido.
func (e EstadoBien) EsValido() bool {
	switch e {
	case BienActivo, BienInactivo, BienEnReparacion, BienDesincorporado:
		return true
	}
	return false
}

// CondicionFisica representa la condición física observada del bien.
type CondicionFisica string

const (
	CondicionExcelente CondicionFisica = "EXCELENTE"
	CondicionBuena     CondicionFisica = "BUENO"
	CondicionRegular   CondicionFisica = "REGULAR"
	CondicionMala      CondicionFisica = "MALO"
	CondicionObsoleta  CondicionFisica = "OBSOLETO"
)

// EsValida verifica que la condición pertenezca al conjunto permitido.
func (c CondicionFisica) EsValida() bool {
	switch c {
	case CondicionExcelente, CondicionBuena, CondicionRegular, CondicionMala, CondicionObsoleta:
		return true
	}
	return false
}

// Bien representa un activo físico del inventario institucional.
// Los campos de custodia (UbicacionID, ResponsableID) y el estado solo se
// mutan a través de los flujos de asignación, transferencia y
// desincorporación; nunca por edición directa.
type Bien struct {
	ID                string          `json:"id"`
	CodigoInterno     string          `json:"codigo_interno"` // único e inmutable una vez emitido
	CodigoBarras      string          `json:"codigo_barras,omitempty"`
	Descripcion       string          `json:"descripcion"`
	Marca             string          `json:"marca,omitempty"`
	Modelo            string          `json:"modelo,omitempty"`
	Serial            string          `json:"serial,omitempty"`
	FechaAdquisicion  *time.Time      `json:"fecha_adquisicion,omitempty"`
	Estado            EstadoBien      `json:"estado"`
	Condicion         CondicionFisica `json:"condicion"`
	UbicacionID       string          `json:"ubicacion_id"`
	ResponsableID     string          `json:"responsable_id"`
	CategoriaID       string          `json:"categoria_id"`
	CreadoPor         string          `json:"creado_por"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// FiltroBienes define los parámetros de búsqueda y paginación del listado.
type FiltroBienes struct {
	Page        int
	Limit       int
	UbicacionID string
	Estado      EstadoBien
	Condicion   CondicionFisica
	CategoriaID string
	Texto       string // busca sobre código interno y descripción
}

// ActualizacionBien contiene los campos editables de un bien que no forman
// parte de la custodia. Los punteros distinguen "no enviado" de "vaciar".
type ActualizacionBien struct {
	Descripcion      *string          `json:"descripcion,omitempty"`
	Marca            *string          `json:"marca,omitempty"`
	Modelo           *string          `json:"modelo,omitempty"`
	Serial           *string          `json:"serial,omitempty"`
	CodigoBarras     *string          `json:"codigo_barras,omitempty"`
	Condicion        *CondicionFisica `json:"condicion,omitempty"`
	FechaAdquisicion *time.Time       `json:"fecha_adquisicion,omitempty"`
	CategoriaID      *string          `json:"categoria_id,omitempty"`
}

// CustodiaBien agrupa el par ubicación/responsable que los flujos aplican
// sobre el bien al aprobar o ejecutar un movimiento.
type CustodiaBien struct {
	UbicacionID   string
	ResponsableID string
}
