package api

import "time"

// Document представляет документ в API.
// StateVector - бинарное представление state vector сервера
// (base64 в JSON за счет сериализации []byte).
type Document struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	SpaceID     string    `json:"space_id"`
	Title       string    `json:"title"`
	Content     []byte    `json:"content,omitempty"`
	StateVector []byte    `json:"state_vector,omitempty"`
	Deleted     bool      `json:"deleted"`
}

// CreateDocumentRequest представляет запрос на создание документа
type CreateDocumentRequest struct {
	Title string `json:"title"` // заголовок документа
}

// UpdateDocumentRequest представляет запрос на обновление документа.
// StateVector - вектор клиента на момент правки; сервер использует его
// для разрешения конфликта, если документ менялся параллельно.
type UpdateDocumentRequest struct {
	Title       string `json:"title,omitempty"`
	Content     []byte `json:"content,omitempty"`
	StateVector []byte `json:"state_vector,omitempty"`
}

// DocumentListResponse представляет список документов пространства
type DocumentListResponse struct {
	Documents []Document `json:"documents"`
}

// Attachment представляет метаданные вложения в API
type Attachment struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
}

// UploadAttachmentRequest представляет запрос на загрузку вложения
type UploadAttachmentRequest struct {
	Name     string `json:"name"`      // имя файла
	MimeType string `json:"mime_type"` // MIME-тип
	Data     []byte `json:"data"`      // содержимое (base64 в JSON)
}

// AttachmentListResponse представляет список вложений документа
type AttachmentListResponse struct {
	Attachments []Attachment `json:"attachments"`
}
