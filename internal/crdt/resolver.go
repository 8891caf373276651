package crdt

import (
	"bytes"
	"fmt"
)

// Strategy задает политику разрешения конфликтов значений.
// Выбирается один раз при создании Resolver.
type Strategy int

const (
	// StrategyMerge намерение выполнять содержательный merge значений.
	// Для непрозрачных байтовых значений контентного merge нет, поэтому
	// стратегия делегирует правилу StrategyTimestamp. Настоящий merge
	// контента подключается через MergeFunc.
	StrategyMerge Strategy = iota
	// StrategyTimestamp побеждает сторона с большим максимальным счетчиком
	// в своем state vector. При равенстве побеждает локальная сторона.
	StrategyTimestamp
	// StrategyReplicaID побеждает сторона с большим максимальным ReplicaID.
	// Грубый детерминированный tie-break, а не осмысленная политика
	// владения: кому нужен настоящий приоритет, использует StrategyCustom.
	StrategyReplicaID
	// StrategyCustom разрешение выполняется вне этой подсистемы:
	// Resolver всегда возвращает ResolutionUnresolved.
	StrategyCustom
)

// String возвращает текстовое представление стратегии.
func (s Strategy) String() string {
	switch s {
	case StrategyMerge:
		return "merge"
	case StrategyTimestamp:
		return "timestamp"
	case StrategyReplicaID:
		return "replica_id"
	case StrategyCustom:
		return "custom"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Resolution исход одного вызова разрешения конфликта. Не персистится.
type Resolution int

const (
	// ResolutionNoConflict конфликта не было: значения или векторы совпали.
	ResolutionNoConflict Resolution = iota
	// ResolutionKeepFirst победило локальное (первое) значение.
	ResolutionKeepFirst
	// ResolutionKeepSecond победило удаленное (второе) значение.
	ResolutionKeepSecond
	// ResolutionMerged векторы были объединены.
	ResolutionMerged
	// ResolutionUnresolved разрешение требует логики вне подсистемы.
	// Это не ошибка, а осознанный сигнал вызывающей стороне.
	ResolutionUnresolved
)

// String возвращает текстовое представление исхода.
func (r Resolution) String() string {
	switch r {
	case ResolutionNoConflict:
		return "no_conflict"
	case ResolutionKeepFirst:
		return "keep_first"
	case ResolutionKeepSecond:
		return "keep_second"
	case ResolutionMerged:
		return "merged"
	case ResolutionUnresolved:
		return "unresolved"
	default:
		return fmt.Sprintf("resolution(%d)", int(r))
	}
}

// MergeFunc контентный merge двух значений. Подключается снаружи,
// когда появится настоящий CRDT для содержимого документа.
type MergeFunc func(local, remote []byte) ([]byte, error)

// Resolver принимает решения о конфликтах на основе state vector'ов.
// Не содержит изменяемого состояния кроме конфигурации: все методы -
// чистые функции своих аргументов, любое число горутин может вызывать
// их параллельно.
type Resolver struct {
	mergeFn  MergeFunc
	strategy Strategy
}

// NewResolver создает resolver с заданной стратегией.
func NewResolver(strategy Strategy) *Resolver {
	return &Resolver{strategy: strategy}
}

// NewResolverWithMerge создает resolver со стратегией StrategyMerge и
// внешней функцией контентного merge.
func NewResolverWithMerge(fn MergeFunc) *Resolver {
	return &Resolver{strategy: StrategyMerge, mergeFn: fn}
}

// Strategy возвращает сконфигурированную стратегию.
func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// ResolveStateVector объединяет два вектора поточечным максимумом.
// Исход: ResolutionNoConflict если векторы уже равны, иначе
// ResolutionMerged - merge либо произошел, либо векторы были согласованы;
// направление отдельно не раскрывается.
func (r *Resolver) ResolveStateVector(local, remote StateVector) (StateVector, Resolution) {
	merged := Merge(local, remote)
	if local.Compare(remote) == OrderingEqual {
		return merged, ResolutionNoConflict
	}
	return merged, ResolutionMerged
}

// ResolveDocumentConflict выбирает победителя из двух расходящихся значений.
// Равные значения - всегда (local, ResolutionNoConflict) независимо от
// стратегии и векторов. Иначе решает стратегия; ничья в пользу local.
func (r *Resolver) ResolveDocumentConflict(localValue, remoteValue []byte, localSV, remoteSV StateVector) ([]byte, Resolution) {
	if bytes.Equal(localValue, remoteValue) {
		return localValue, ResolutionNoConflict
	}

	switch r.strategy {
	case StrategyTimestamp:
		return r.resolveByMaxClock(localValue, remoteValue, localSV, remoteSV)
	case StrategyReplicaID:
		if maxReplica(localSV) >= maxReplica(remoteSV) {
			return localValue, ResolutionKeepFirst
		}
		return remoteValue, ResolutionKeepSecond
	case StrategyMerge:
		if r.mergeFn != nil {
			merged, err := r.mergeFn(localValue, remoteValue)
			if err == nil {
				return merged, ResolutionMerged
			}
			// Контентный merge не справился - откатываемся к правилу
			// максимального счетчика, как для непрозрачных значений.
		}
		return r.resolveByMaxClock(localValue, remoteValue, localSV, remoteSV)
	case StrategyCustom:
		return localValue, ResolutionUnresolved
	default:
		return localValue, ResolutionUnresolved
	}
}

// resolveByMaxClock правило LWW над state vector'ами: побеждает сторона
// с большим максимальным счетчиком, ничья в пользу local.
func (r *Resolver) resolveByMaxClock(localValue, remoteValue []byte, localSV, remoteSV StateVector) ([]byte, Resolution) {
	if maxClock(localSV) >= maxClock(remoteSV) {
		return localValue, ResolutionKeepFirst
	}
	return remoteValue, ResolutionKeepSecond
}

// UpdateRange явный диапазон операций реплики для дозагрузки:
// [FromSeq, ToSeq] включительно, где ToSeq - текущий счетчик сервера.
type UpdateRange struct {
	Replica ReplicaID
	FromSeq uint64
	ToSeq   uint64
}

// CalculateMissingUpdates вычисляет диапазоны операций, которых не хватает
// клиенту относительно сервера. Оборачивает StateVector.Missing, дополняя
// каждый диапазон верхней границей из серверного вектора.
func (r *Resolver) CalculateMissingUpdates(clientSV, serverSV StateVector) []UpdateRange {
	missing := clientSV.Missing(serverSV)
	ranges := make([]UpdateRange, 0, len(missing))
	for _, m := range missing {
		ranges = append(ranges, UpdateRange{
			Replica: m.Replica,
			FromSeq: m.FromSeq,
			ToSeq:   serverSV[m.Replica],
		})
	}
	return ranges
}

// CanMerge сообщает, можно ли объединить два вектора. Всегда true:
// векторы образуют join-полурешетку и merge определен безусловно.
// Метод существует, чтобы эта гарантия была явной и тестируемой.
func (r *Resolver) CanMerge(_, _ StateVector) bool {
	return true
}

// GetNewerState упорядочивает два вектора по Compare. При равенстве или
// конкурентности возвращает (a, b) как есть - дополнительного tie-break нет.
func (r *Resolver) GetNewerState(a, b StateVector) (newer, older StateVector) {
	if a.Compare(b) == OrderingLess {
		return b, a
	}
	return a, b
}

// maxClock максимальный счетчик в векторе, 0 для пустого.
func maxClock(sv StateVector) uint64 {
	var max uint64
	for _, clock := range sv {
		if clock > max {
			max = clock
		}
	}
	return max
}

// maxReplica максимальный ReplicaID в векторе, 0 для пустого.
func maxReplica(sv StateVector) ReplicaID {
	var max ReplicaID
	for id := range sv {
		if id > max {
			max = id
		}
	}
	return max
}
