package docsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docspace-io/docspace/internal/crdt"
	"github.com/docspace-io/docspace/internal/models"
	"github.com/docspace-io/docspace/internal/server/storage"
)

// Delta результат синхронизации документа: текущий вектор сервера,
// операции, которых не хватало клиенту, и диапазоны, по которым они выданы.
type Delta struct {
	StateVector crdt.StateVector
	Operations  []*models.Operation
	Ranges      []crdt.UpdateRange
	Accepted    int
	Discarded   int
}

// Coordinator владеет каноническим state vector каждого документа.
// Алгоритмы crdt чистые, но канонический вектор - разделяемое состояние,
// поэтому все мутации одного документа сериализуются через реестр
// per-document мьютексов. Реестр создается композиционным корнем и
// передается обработчикам явно, глобального состояния нет.
type Coordinator struct {
	logger     *slog.Logger
	documents  storage.DocumentStorage
	operations storage.OperationStorage
	resolver   *crdt.Resolver
	locks      map[string]*sync.Mutex
	mu         sync.Mutex
}

// New создает координатор синхронизации
func New(logger *slog.Logger, documents storage.DocumentStorage, operations storage.OperationStorage, resolver *crdt.Resolver) *Coordinator {
	return &Coordinator{
		logger:     logger,
		documents:  documents,
		operations: operations,
		resolver:   resolver,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockDocument возвращает мьютекс документа, создавая его при первом обращении
func (c *Coordinator) lockDocument(docID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[docID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[docID] = lock
	}
	return lock
}

// Sync выполняет один цикл синхронизации документа:
//  1. принимает операции клиента (идемпотентно, дубликаты отбрасываются)
//     и продвигает серверный вектор; операция с разрывом нумерации
//     (seq > current+1) отбрасывается, клиент должен прислать историю
//     по порядку;
//  2. вычисляет, каких операций не хватает клиенту относительно сервера,
//     не возвращая клиенту его же только что принятые операции;
//  3. сохраняет обновленный вектор и возвращает дельту.
//
// Пустой clientSV означает "у клиента ничего нет" - выдается все.
func (c *Coordinator) Sync(ctx context.Context, docID string, clientSV crdt.StateVector, ops []*models.Operation) (*Delta, error) {
	lock := c.lockDocument(docID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := c.documents.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	serverSV, err := crdt.Decode(doc.StateVector)
	if err != nil {
		// Вектор пишем только мы, битые байты означают поврежденную БД
		return nil, fmt.Errorf("stored state vector is corrupted: %w", err)
	}

	delta := &Delta{}

	// Эффективное знание клиента: присланный вектор плюс операции этого
	// push'а. Без этого клиент получал бы собственные операции обратно.
	known := clientSV.Clone()

	for _, op := range ops {
		if op.Seq == 0 {
			c.logger.WarnContext(ctx, "rejecting operation with zero seq",
				slog.String("document_id", docID),
				slog.Uint64("replica_id", op.ReplicaID))
			delta.Discarded++
			continue
		}

		replica := crdt.ReplicaID(op.ReplicaID)
		current, _ := serverSV.Get(replica)
		if op.Seq <= current {
			// Уже видели: клиент повторил push после потерянного ответа
			delta.Discarded++
			if seen, _ := known.Get(replica); seen < op.Seq {
				known.Set(replica, op.Seq)
			}
			continue
		}
		if op.Seq > current+1 {
			// Разрыв нумерации: принять нельзя, иначе вектор перепрыгнет
			// дыру и пропущенные операции станут невыдаваемыми
			c.logger.WarnContext(ctx, "rejecting operation with sequence gap",
				slog.String("document_id", docID),
				slog.Uint64("replica_id", op.ReplicaID),
				slog.Uint64("seq", op.Seq),
				slog.Uint64("expected", current+1))
			delta.Discarded++
			continue
		}

		stored := op.Clone()
		stored.DocumentID = docID
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = time.Now()
		}

		saved, err := c.operations.SaveOperation(ctx, stored)
		if err != nil {
			return nil, fmt.Errorf("failed to save operation: %w", err)
		}

		if saved {
			serverSV.Set(replica, op.Seq)
			delta.Accepted++
		} else {
			delta.Discarded++
		}
		if seen, _ := known.Get(replica); seen < op.Seq {
			known.Set(replica, op.Seq)
		}
	}

	// Диапазоны, которых не хватает клиенту относительно сервера.
	// Нумерация операций начинается с единицы, нулевую нижнюю границу
	// для незнакомой клиенту реплики поднимаем до первой операции.
	delta.Ranges = c.resolver.CalculateMissingUpdates(known, serverSV)
	for i := range delta.Ranges {
		if delta.Ranges[i].FromSeq == 0 {
			delta.Ranges[i].FromSeq = 1
		}
	}

	for _, r := range delta.Ranges {
		rangeOps, err := c.operations.GetOperationsInRange(ctx, docID, uint64(r.Replica), r.FromSeq, r.ToSeq)
		if err != nil {
			return nil, fmt.Errorf("failed to load missing operations: %w", err)
		}
		delta.Operations = append(delta.Operations, rangeOps...)
	}

	if delta.Accepted > 0 {
		if err := c.documents.SaveStateVector(ctx, docID, serverSV.Encode()); err != nil {
			return nil, fmt.Errorf("failed to persist state vector: %w", err)
		}
	}

	delta.StateVector = serverSV

	c.logger.InfoContext(ctx, "document sync completed",
		slog.String("document_id", docID),
		slog.Int("accepted", delta.Accepted),
		slog.Int("discarded", delta.Discarded),
		slog.Int("returned", len(delta.Operations)))

	return delta, nil
}

// StateVector возвращает текущий канонический вектор документа
func (c *Coordinator) StateVector(ctx context.Context, docID string) (crdt.StateVector, error) {
	doc, err := c.documents.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	sv, err := crdt.Decode(doc.StateVector)
	if err != nil {
		return nil, fmt.Errorf("stored state vector is corrupted: %w", err)
	}
	return sv, nil
}

// UpdateContent обновляет снапшот контента документа с разрешением
// конфликта: если документ менялся параллельно, победителя выбирает
// resolver по векторам сервера и клиента. Возвращает сохраненный документ
// и исход разрешения.
func (c *Coordinator) UpdateContent(ctx context.Context, docID string, content []byte, clientSV crdt.StateVector) (*models.Document, crdt.Resolution, error) {
	lock := c.lockDocument(docID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := c.documents.GetDocument(ctx, docID)
	if err != nil {
		return nil, crdt.ResolutionUnresolved, fmt.Errorf("failed to load document: %w", err)
	}

	serverSV, err := crdt.Decode(doc.StateVector)
	if err != nil {
		return nil, crdt.ResolutionUnresolved, fmt.Errorf("stored state vector is corrupted: %w", err)
	}

	winner, resolution := c.resolver.ResolveDocumentConflict(doc.Content, content, serverSV, clientSV)
	merged, _ := c.resolver.ResolveStateVector(serverSV, clientSV)

	doc.Content = winner
	doc.StateVector = merged.Encode()

	if err := c.documents.UpdateDocument(ctx, doc); err != nil {
		return nil, crdt.ResolutionUnresolved, fmt.Errorf("failed to update document: %w", err)
	}

	c.logger.InfoContext(ctx, "document content updated",
		slog.String("document_id", docID),
		slog.String("resolution", resolution.String()))

	return doc, resolution, nil
}
