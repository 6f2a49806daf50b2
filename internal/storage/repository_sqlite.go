package storage

import "gorm.io/gorm"

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateRecord(rec *BattleRecord) error {
	return r.db.Create(rec).Error
}

func (r *sqliteRepository) GetRecordByID(id uint) (*BattleRecord, error) {
	var rec BattleRecord
	if err := r.db.First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *sqliteRepository) GetRecordBySessionID(sessionID string) (*BattleRecord, error) {
	var rec BattleRecord
	if err := r.db.Where("session_id = ?", sessionID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *sqliteRepository) ListRecords(limit int) ([]BattleRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var recs []BattleRecord
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *sqliteRepository) FindRecordsByArmyKey(key string) ([]BattleRecord, error) {
	var recs []BattleRecord
	if err := r.db.Where("army_key = ?", key).Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
