package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"warhex/internal/battle"
	"warhex/internal/constants"
	"warhex/internal/dedupe"
	"warhex/internal/keys"
	"warhex/internal/logging"
)

var ErrRecordNotFound = errors.New("battle record not found")

// ReplayResult carries a verified re-simulation of a stored battle.
type ReplayResult struct {
	RecordID   uint           `json:"record_id"`
	Seed       int64          `json:"seed"`
	Winner     int            `json:"winner"`
	Rounds     int            `json:"rounds"`
	Verified   bool           `json:"verified"`
	Log        []string       `json:"log"`
	Survivors1 map[string]int `json:"survivors_player1"`
	Survivors2 map[string]int `json:"survivors_player2"`
}

// Replay re-runs the battle stored under recordID from its armies and seed
// and checks the resulting log digest against the stored one. Identical
// in-flight replays of the same armies+seed collapse into a single
// simulation.
func (m *Manager) Replay(recordID uint) (*ReplayResult, error) {
	if m.repo == nil {
		return nil, ErrRecordNotFound
	}
	rec, err := m.repo.GetRecordByID(recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecordNotFound
	}

	var army1, army2 []battle.UnitSpec
	if err := json.Unmarshal([]byte(rec.Army1JSON), &army1); err != nil {
		return nil, fmt.Errorf("decode stored army 1: %w", err)
	}
	if err := json.Unmarshal([]byte(rec.Army2JSON), &army2); err != nil {
		return nil, fmt.Errorf("decode stored army 2: %w", err)
	}
	opts := battle.DefaultOptions()
	if rec.RulesJSON != "" {
		if err := json.Unmarshal([]byte(rec.RulesJSON), &opts); err != nil {
			return nil, fmt.Errorf("decode stored rules: %w", err)
		}
	}

	key := keys.ReplayKey(army1, army2, rec.Seed)
	v, err, shared := dedupe.ReplayGroup.Do(key, func() (interface{}, error) {
		bt, err := battle.New(army1, army2, rec.Seed, opts)
		if err != nil {
			return nil, err
		}
		for bt.Step() {
			if !opts.ApplyEventsImmediately {
				bt.DrainEvents()
			}
		}
		return bt, nil
	})
	if err != nil {
		return nil, err
	}
	bt := v.(*battle.Battle)
	if shared {
		logging.Info("replay deduplicated", logging.Fields{constants.LogFieldRecordID: recordID, "replay_key": key})
	}

	digest := keys.LogDigest(bt.Log)
	res := &ReplayResult{
		RecordID:   rec.ID,
		Seed:       rec.Seed,
		Winner:     bt.Winner,
		Rounds:     bt.RoundNum,
		Verified:   digest == rec.LogDigest,
		Log:        bt.Log,
		Survivors1: bt.Survivors(1),
		Survivors2: bt.Survivors(2),
	}
	if !res.Verified {
		logging.Warn("replay digest mismatch", logging.Fields{
			constants.LogFieldRecordID: recordID, "stored": rec.LogDigest, "computed": digest,
		})
	}
	return res, nil
}
