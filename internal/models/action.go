package models

import (
	"fmt"
	"maps"
	"time"
)

// ActionKind определяет тип отложенной мутации.
// Закрытое перечисление: допустимы только Create, Update и Delete.
type ActionKind string

const (
	// ActionCreate добавляет новую запись в коллекцию на сервере
	ActionCreate ActionKind = "CREATE"
	// ActionUpdate изменяет существующую запись по её серверному id
	ActionUpdate ActionKind = "UPDATE"
	// ActionDelete удаляет существующую запись по её серверному id
	ActionDelete ActionKind = "DELETE"
)

// Valid проверяет, что kind входит в закрытое перечисление
func (k ActionKind) Valid() bool {
	switch k {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// DefaultMaxRetries — лимит попыток выполнения действия по умолчанию.
// После исчерпания лимита действие удаляется из очереди без повторов.
const DefaultMaxRetries = 3

// PayloadIDKey - зарезервированное поле payload с серверным id записи.
// Обязательно для Update и Delete действий.
const PayloadIDKey = "id"

// Action представляет одну отложенную мутацию, ожидающую отправки на сервер.
// Создаётся при постановке в очередь, сразу персистится и мутирует только
// счётчиком RetryCount. Удаляется либо после успешного выполнения,
// либо после исчерпания MaxRetries.
type Action struct {
	EnqueuedAt time.Time      `json:"enqueued_at"` // EnqueuedAt время постановки в очередь (для порядка и диагностики)
	Payload    map[string]any `json:"payload"`     // Payload данные мутации; для Update/Delete содержит "id"
	ID         string         `json:"id"`          // ID уникальный идентификатор действия (UUID)
	Kind       ActionKind     `json:"kind"`        // Kind тип мутации (CREATE/UPDATE/DELETE)
	Entity     string         `json:"entity"`      // Entity имя коллекции на сервере (например, "expenses")
	RetryCount int            `json:"retry_count"` // RetryCount количество неудачных попыток выполнения
	MaxRetries int            `json:"max_retries"` // MaxRetries лимит попыток, неизменяемый после создания
}

// TargetID возвращает серверный id записи из payload.
// Используется для построения пути Update/Delete запросов.
func (a *Action) TargetID() (string, error) {
	raw, ok := a.Payload[PayloadIDKey]
	if !ok {
		return "", fmt.Errorf("payload has no %q field", PayloadIDKey)
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("payload %q field must be a non-empty string", PayloadIDKey)
	}
	return id, nil
}

// Exhausted сообщает, исчерпан ли лимит попыток
func (a *Action) Exhausted() bool {
	return a.RetryCount >= a.MaxRetries
}

// Clone возвращает копию действия с собственной копией payload.
// Снимки очереди отдаются наружу только копиями, чтобы вызывающий
// код не мог мутировать состояние очереди.
func (a *Action) Clone() *Action {
	clone := *a
	clone.Payload = maps.Clone(a.Payload)
	return &clone
}
