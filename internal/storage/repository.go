package storage

// Repository is the persistence surface the service layer depends on.
type Repository interface {
	CreateRecord(r *BattleRecord) error
	GetRecordByID(id uint) (*BattleRecord, error)
	GetRecordBySessionID(sessionID string) (*BattleRecord, error)
	ListRecords(limit int) ([]BattleRecord, error)
	// FindRecordsByArmyKey returns every stored outcome for one army
	// pairing, most recent first. Used to cross-check determinism across
	// seeds for the same matchup.
	FindRecordsByArmyKey(key string) ([]BattleRecord, error)
}
