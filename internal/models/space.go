package models

import "time"

// Space представляет пространство - контейнер документов одного владельца.
// Документы живут внутри пространства, доступ проверяется по владельцу.
type Space struct {
	ID        string    `json:"id"`         // UUID пространства
	OwnerID   string    `json:"owner_id"`   // ID пользователя-владельца
	Name      string    `json:"name"`       // отображаемое имя
	Slug      string    `json:"slug"`       // уникальный в рамках владельца slug
	CreatedAt time.Time `json:"created_at"` // время создания
	UpdatedAt time.Time `json:"updated_at"` // время последнего обновления
}
