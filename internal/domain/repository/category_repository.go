package repository

import "github.com/tu-usuario/inventario-core/internal/domain/entity"

// CategoryRepository define el puerto de persistencia para Category (DIP).
// Una categoría aporta la densidad por defecto cuando el item no define la suya.
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id string) (*entity.Category, error)
	List() ([]*entity.Category, error)
}
