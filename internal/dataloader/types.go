package dataloader

// SyncStatus состояние синхронизации каталога и индекса
type SyncStatus struct {
	PostgreSQLCount int  `json:"postgresql_count"`
	IndexCount      int  `json:"index_count"`
	InSync          bool `json:"in_sync"`
	Difference      int  `json:"difference"`
}
