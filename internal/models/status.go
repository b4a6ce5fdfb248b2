package models

import "time"

// SyncStatus - агрегированный снимок состояния синхронизации.
// Не персистится: это чистая проекция состояния монитора сети,
// очереди и исполнителя синхронизации на момент запроса.
type SyncStatus struct {
	LastSync       *time.Time `json:"last_sync,omitempty"` // LastSync время последнего прохода синхронизации (nil если не было)
	Errors         []string   `json:"errors"`              // Errors сообщения об ошибках последнего прохода
	PendingActions int        `json:"pending_actions"`     // PendingActions количество действий в очереди
	IsOnline       bool       `json:"is_online"`           // IsOnline текущее состояние связи с сервером
	IsSyncing      bool       `json:"is_syncing"`          // IsSyncing идёт ли проход синхронизации прямо сейчас
}
