package api

// Operation представляет одну операцию редактирования для синхронизации.
// Пара (ReplicaID, Seq) уникально идентифицирует операцию в документе.
type Operation struct {
	Payload   []byte `json:"payload"`    // непрозрачное тело операции
	ReplicaID uint64 `json:"replica_id"` // идентификатор реплики-автора
	Seq       uint64 `json:"seq"`        // номер операции у реплики, с 1
}

// UpdateRange описывает диапазон операций реплики [from_seq, to_seq],
// которых не хватает клиенту.
type UpdateRange struct {
	ReplicaID uint64 `json:"replica_id"`
	FromSeq   uint64 `json:"from_seq"`
	ToSeq     uint64 `json:"to_seq"`
}

// SyncRequest представляет запрос на синхронизацию документа.
// StateVector - закодированный вектор клиента; пустой или отсутствующий
// вектор означает "у меня ничего нет" и приводит к полной выдаче.
// Operations - локальные операции клиента, еще не виденные сервером.
type SyncRequest struct {
	StateVector []byte      `json:"state_vector,omitempty"`
	Operations  []Operation `json:"operations,omitempty"`
}

// SyncResponse представляет ответ сервера на синхронизацию документа.
// Operations содержат ровно операции из Missing-диапазонов.
type SyncResponse struct {
	StateVector []byte        `json:"state_vector"`       // текущий вектор сервера
	Operations  []Operation   `json:"operations"`         // недостающие клиенту операции
	Missing     []UpdateRange `json:"missing,omitempty"`  // диапазоны, по которым они выданы
	Accepted    int           `json:"accepted"`           // сколько операций клиента принято
	Discarded   int           `json:"discarded"`          // сколько отброшено: дубликаты и разрывы нумерации
}
