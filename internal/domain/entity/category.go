package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category agrupa items y aporta la densidad por defecto (g/ml) para
// conversiones peso↔volumen cuando el item no define la suya.
type Category struct {
	ID             string
	Name           string
	DefaultDensity *decimal.Decimal
	CreatedAt      time.Time
}
