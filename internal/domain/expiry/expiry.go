// Package expiry calcula fechas y porcentajes de vida útil de lotes.
// Funciones puras: nunca mutan el ledger; marcar un lote como vencido es
// una deducción SPOILAGE que pasa por el mismo camino que cualquier consumo.
package expiry

import "time"

// ComputeExpiration devuelve la fecha esperada de vencimiento de un lote:
// creación + vida útil. nil si el item no es perecedero o no tiene vida útil.
func ComputeExpiration(createdAt time.Time, shelfLifeDays int, perishable bool) *time.Time {
	if !perishable || shelfLifeDays <= 0 {
		return nil
	}
	t := createdAt.AddDate(0, 0, shelfLifeDays)
	return &t
}

// DaysRemaining devuelve los días que faltan para el vencimiento respecto a now.
// Negativo si ya venció. Redondea hacia abajo (un lote que vence mañana a
// cualquier hora reporta 0 días completos restantes).
func DaysRemaining(expiresAt, now time.Time) int {
	h := expiresAt.Sub(now).Hours()
	days := int(h / 24)
	if h < 0 && h != float64(days)*24 {
		days--
	}
	return days
}

// PercentLifeRemaining devuelve el porcentaje 0..100 de vida útil restante.
// 100 si la ventana es inválida o aún no empieza; 0 una vez vencido.
func PercentLifeRemaining(createdAt, expiresAt, now time.Time) int {
	total := expiresAt.Sub(createdAt)
	if total <= 0 {
		return 100
	}
	elapsed := now.Sub(createdAt)
	if elapsed <= 0 {
		return 100
	}
	if elapsed >= total {
		return 0
	}
	return int(100 - elapsed*100/total)
}
