package api

import "time"

// Space представляет пространство документов в API
type Space struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
}

// CreateSpaceRequest представляет запрос на создание пространства
type CreateSpaceRequest struct {
	Name string `json:"name"` // отображаемое имя
	Slug string `json:"slug"` // уникальный slug
}

// SpaceListResponse представляет список пространств пользователя
type SpaceListResponse struct {
	Spaces []Space `json:"spaces"`
}
