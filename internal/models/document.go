package models

import "time"

// Document представляет документ в пространстве.
// StateVector - сериализованный канонический state vector сервера для
// этого документа (формат internal/crdt); хранится рядом с контентом,
// чтобы авторитетные часы переживали рестарт.
type Document struct {
	CreatedAt   time.Time `json:"created_at"`   // время создания
	UpdatedAt   time.Time `json:"updated_at"`   // время последнего обновления
	ID          string    `json:"id"`           // UUID документа
	SpaceID     string    `json:"space_id"`     // ID пространства
	Title       string    `json:"title"`        // заголовок документа
	Content     []byte    `json:"content"`      // последний снапшот контента
	StateVector []byte    `json:"state_vector"` // закодированный state vector сервера
	Deleted     bool      `json:"deleted"`      // флаг soft delete
}

// Clone создает глубокую копию документа
func (d *Document) Clone() *Document {
	content := make([]byte, len(d.Content))
	copy(content, d.Content)

	sv := make([]byte, len(d.StateVector))
	copy(sv, d.StateVector)

	return &Document{
		ID:          d.ID,
		SpaceID:     d.SpaceID,
		Title:       d.Title,
		Content:     content,
		StateVector: sv,
		Deleted:     d.Deleted,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Operation представляет одну операцию редактирования, произведенную
// репликой. Идентифицируется парой (ReplicaID, Seq): Seq - значение
// счетчика реплики после Increment, поэтому номера операций одной реплики
// монотонны и без дыр. Payload непрозрачен для слоя синхронизации.
type Operation struct {
	CreatedAt  time.Time `json:"created_at"`  // время приема сервером
	DocumentID string    `json:"document_id"` // ID документа
	Payload    []byte    `json:"payload"`     // непрозрачное тело операции
	ReplicaID  uint64    `json:"replica_id"`  // идентификатор реплики-автора
	Seq        uint64    `json:"seq"`         // номер операции у реплики, с 1
}

// Clone создает глубокую копию операции
func (o *Operation) Clone() *Operation {
	payload := make([]byte, len(o.Payload))
	copy(payload, o.Payload)

	return &Operation{
		DocumentID: o.DocumentID,
		ReplicaID:  o.ReplicaID,
		Seq:        o.Seq,
		Payload:    payload,
		CreatedAt:  o.CreatedAt,
	}
}
