package httputil

import (
	"encoding/json"
	"net/http"

	"siab/internal/domain"
	apperror "siab/internal/errors"
	"siab/internal/pkg/logger"
)

// Respond procesa el resultado de un servicio y escribe la respuesta
// estandarizada: el dato con el status de éxito, o el sobre de error
// {code, category, message} mapeado desde el error tipado.
func Respond(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		log.Debug("Requisición completada con éxito.", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				log.Error("Falla al codificar el JSON de respuesta.", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		log.Error("Error de servidor en la requisición.", err)
	} else {
		// Los errores de cliente (4xx) son resultados de negocio esperados.
		log.Debug("Requisición rechazada.", map[string]interface{}{
			"path":     r.URL.Path,
			"status":   status,
			"category": category,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// DecodeJSON decodifica el cuerpo de la requisición; un cuerpo malformado se
// reporta como error de validación.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique el formato JSON.")
	}
	return nil
}
