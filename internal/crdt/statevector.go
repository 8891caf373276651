package crdt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ReplicaID уникальный идентификатор реплики документа (сессии редактирования).
// Назначается вызывающей стороной, например из младших битов UUID сессии.
// Центрального выделения идентификаторов нет.
type ReplicaID uint64

// EntrySize размер одной записи state vector в бинарном представлении:
// 8 байт ReplicaID + 8 байт счетчик, оба little-endian.
const EntrySize = 16

// ErrMalformedStateVector возвращается при декодировании буфера,
// длина которого не кратна EntrySize. Частичный результат не создается.
var ErrMalformedStateVector = errors.New("malformed state vector encoding")

// StateVector отображает идентификатор реплики в монотонный счетчик
// "сколько операций этой реплики я видел". Два вектора равны тогда и
// только тогда, когда равны их отображения; порядок вставки значения не имеет.
//
// Тип не потокобезопасен: владелец канонического вектора документа обязан
// сериализовать мутации сам (например, через docsync.Coordinator).
type StateVector map[ReplicaID]uint64

// NewStateVector создает пустой state vector.
// Пустой вектор соответствует реплике, не видевшей ни одной операции.
func NewStateVector() StateVector {
	return make(StateVector)
}

// Get возвращает счетчик реплики и признак того, что реплика известна вектору.
func (sv StateVector) Get(id ReplicaID) (uint64, bool) {
	clock, ok := sv[id]
	return clock, ok
}

// Set безусловно перезаписывает счетчик реплики.
// Используется при применении результата merge или загрузке сохраненного
// состояния. Монотонность здесь не проверяется: для локальных правок
// вызывающая сторона должна использовать Increment.
func (sv StateVector) Set(id ReplicaID, clock uint64) {
	sv[id] = clock
}

// Increment увеличивает счетчик реплики на единицу и возвращает новое
// значение. Единственная операция, которой реплика фиксирует собственную
// локальную правку.
func (sv StateVector) Increment(id ReplicaID) uint64 {
	sv[id]++
	return sv[id]
}

// Clone создает глубокую копию вектора.
func (sv StateVector) Clone() StateVector {
	clone := make(StateVector, len(sv))
	for id, clock := range sv {
		clone[id] = clock
	}
	return clone
}

// Equal проверяет равенство двух векторов независимо от порядка вставки.
func (sv StateVector) Equal(other StateVector) bool {
	if len(sv) != len(other) {
		return false
	}
	for id, clock := range sv {
		if other[id] != clock {
			return false
		}
	}
	return true
}

// Encode сериализует вектор в детерминированное бинарное представление:
// записи сортируются по возрастанию ReplicaID, каждая запись - 16 байт
// (ReplicaID little-endian, затем счетчик little-endian). Заголовка и
// префикса длины нет, длина результата всегда кратна 16.
// Детерминизм обязателен: одинаковые логические состояния дают одинаковые
// байты (хеширование, кеширование, идемпотентная запись в БД).
func (sv StateVector) Encode() []byte {
	ids := make([]ReplicaID, 0, len(sv))
	for id := range sv {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	buf := make([]byte, 0, len(ids)*EntrySize)
	var entry [EntrySize]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint64(entry[0:8], uint64(id))
		binary.LittleEndian.PutUint64(entry[8:16], sv[id])
		buf = append(buf, entry[:]...)
	}
	return buf
}

// Decode восстанавливает вектор из бинарного представления.
// Буфер потребляется строго по 16 байт; любой остаток - ошибка
// ErrMalformedStateVector без частичного результата. Получив такую ошибку,
// вызывающая сторона должна запросить полную ресинхронизацию (пустой
// вектор), а не пытаться продолжить с частичной дельтой.
func Decode(data []byte) (StateVector, error) {
	if len(data)%EntrySize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d", ErrMalformedStateVector, len(data), EntrySize)
	}

	sv := make(StateVector, len(data)/EntrySize)
	for offset := 0; offset < len(data); offset += EntrySize {
		id := ReplicaID(binary.LittleEndian.Uint64(data[offset : offset+8]))
		clock := binary.LittleEndian.Uint64(data[offset+8 : offset+16])
		sv[id] = clock
	}
	return sv, nil
}

// Ordering результат сравнения двух векторов по причинности.
type Ordering int

const (
	// OrderingLess вектор строго предшествует другому (другой видел больше).
	OrderingLess Ordering = iota
	// OrderingEqual векторы равны.
	OrderingEqual
	// OrderingGreater вектор строго доминирует над другим.
	OrderingGreater
	// OrderingConcurrent векторы несравнимы: у каждого есть информация,
	// которой нет у другого.
	OrderingConcurrent
)

// String возвращает текстовое представление результата сравнения.
func (o Ordering) String() string {
	switch o {
	case OrderingLess:
		return "less"
	case OrderingEqual:
		return "equal"
	case OrderingGreater:
		return "greater"
	case OrderingConcurrent:
		return "concurrent"
	default:
		return fmt.Sprintf("ordering(%d)", int(o))
	}
}

// Compare сравнивает векторы по частичному порядку причинности, просматривая
// объединение ключей обоих векторов:
//   - OrderingEqual: все счетчики совпадают;
//   - OrderingLess: все счетчики <= и хотя бы один строго меньше;
//   - OrderingGreater: все счетчики >= и хотя бы один строго больше;
//   - OrderingConcurrent: у каждой стороны есть счетчик строго больше.
//
// Отсутствующая запись эквивалентна нулевому счетчику.
func (sv StateVector) Compare(other StateVector) Ordering {
	var less, greater bool

	for id, clock := range sv {
		otherClock := other[id]
		if clock < otherClock {
			less = true
		} else if clock > otherClock {
			greater = true
		}
	}
	for id, otherClock := range other {
		if _, ok := sv[id]; !ok && otherClock > 0 {
			less = true
		}
	}

	switch {
	case less && greater:
		return OrderingConcurrent
	case less:
		return OrderingLess
	case greater:
		return OrderingGreater
	default:
		return OrderingEqual
	}
}

// IsAncestorOf проверяет отношение "happened-before-or-equal": вектор
// является предком другого, если для каждой его записи другой вектор имеет
// счетчик не меньше. В отличие от Compare результат не зависит от того,
// какая сторона вызывает метод первой, и пригоден для проверки, можно ли
// применять операции без дозагрузки.
func (sv StateVector) IsAncestorOf(other StateVector) bool {
	for id, clock := range sv {
		if other[id] < clock {
			return false
		}
	}
	return true
}

// MissingEntry описывает диапазон операций реплики, которых не хватает
// вектору: все операции начиная с FromSeq.
type MissingEntry struct {
	Replica ReplicaID
	FromSeq uint64
}

// Missing вычисляет, какие операции известны other, но отсутствуют у sv.
// Для каждой реплики из other: если sv реплику не видел - диапазон с нуля;
// если счетчик sv строго меньше - диапазон со следующего номера.
// Порядок результата не определен. Используется для дельта-синхронизации
// вместо полной пересылки документа.
func (sv StateVector) Missing(other StateVector) []MissingEntry {
	var missing []MissingEntry
	for id, otherClock := range other {
		clock, ok := sv[id]
		switch {
		case !ok:
			missing = append(missing, MissingEntry{Replica: id, FromSeq: 0})
		case clock < otherClock:
			missing = append(missing, MissingEntry{Replica: id, FromSeq: clock + 1})
		}
	}
	return missing
}

// Merge возвращает поточечный максимум двух векторов по объединению ключей.
// Векторы образуют join-полурешетку: merge всегда определен, коммутативен,
// ассоциативен и идемпотентен. Аргументы не изменяются.
func Merge(a, b StateVector) StateVector {
	merged := a.Clone()
	for id, clock := range b {
		if merged[id] < clock {
			merged[id] = clock
		}
	}
	return merged
}

// String возвращает детерминированное текстовое представление вектора
// вида {1:10, 2:5}. Используется в логах и сообщениях тестов.
func (sv StateVector) String() string {
	if len(sv) == 0 {
		return "{}"
	}

	ids := make([]ReplicaID, 0, len(sv))
	for id := range sv {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d:%d", id, sv[id]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
