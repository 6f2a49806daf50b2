package storage

import "gorm.io/gorm"

// BattleRecord is the persisted outcome of a completed battle. The army
// specs and seed are enough to replay the whole fight; the log digest lets
// a replay be verified without storing the full turn-by-turn trace.
type BattleRecord struct {
	gorm.Model
	SessionID  string `json:"session_id" gorm:"uniqueIndex"`
	Seed       int64  `json:"seed"`
	ArmyKey    string `json:"army_key" gorm:"index"`
	Army1JSON  string `json:"-" gorm:"type:text"`
	Army2JSON  string `json:"-" gorm:"type:text"`
	RulesJSON  string `json:"-" gorm:"type:text"`
	Winner     int    `json:"winner"`
	Rounds     int    `json:"rounds"`
	Steps      int    `json:"steps"`
	Survivors1 string `json:"-" gorm:"type:text"`
	Survivors2 string `json:"-" gorm:"type:text"`
	LogDigest  string `json:"log_digest"`
}

// TableName keeps the persisted table named `battle_records`.
func (BattleRecord) TableName() string { return "battle_records" }
