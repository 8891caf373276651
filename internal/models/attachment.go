package models

import "time"

// Attachment представляет файл, прикрепленный к документу.
// Содержимое хранится в БД сервера; внешние объектные хранилища
// за рамками этой подсистемы.
type Attachment struct {
	CreatedAt  time.Time `json:"created_at"`  // время загрузки
	ID         string    `json:"id"`          // UUID вложения
	DocumentID string    `json:"document_id"` // ID документа
	Name       string    `json:"name"`        // имя файла
	MimeType   string    `json:"mime_type"`   // MIME-тип, например "application/pdf"
	Data       []byte    `json:"data"`        // содержимое файла
	Size       int64     `json:"size"`        // размер в байтах
}
