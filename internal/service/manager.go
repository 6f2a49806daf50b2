// Package service hosts live battle sessions and the replay verification
// path. The engine itself is synchronous and single-threaded; the manager
// serializes access per session so a server can host many battles at once.
package service

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"warhex/internal/battle"
	"warhex/internal/constants"
	"warhex/internal/keys"
	"warhex/internal/logging"
	"warhex/internal/storage"
)

var (
	ErrSessionNotFound = errors.New("battle session not found")
	ErrBattleFinished  = errors.New("battle already finished")
	ErrNothingToUndo   = errors.New("nothing to undo")
)

// Session wraps one live battle and the inputs needed to replay it.
type Session struct {
	ID      string
	Seed    int64
	Army1   []battle.UnitSpec
	Army2   []battle.UnitSpec
	Battle  *battle.Battle
	Created time.Time

	mu        sync.Mutex
	lastTouch time.Time
	persisted bool
}

// StepResult is what one simulated unit-turn produced.
type StepResult struct {
	Continues  bool                 `json:"continues"`
	LastAction *battle.Action       `json:"last_action,omitempty"`
	Events     []battle.EffectEvent `json:"events,omitempty"`
	Winner     int                  `json:"winner"`
	Round      int                  `json:"round"`
}

// RunResult is the final battle output the overworld layer consumes.
type RunResult struct {
	Winner     int            `json:"winner"`
	Rounds     int            `json:"rounds"`
	Steps      int            `json:"steps"`
	Survivors1 map[string]int `json:"survivors_player1"`
	Survivors2 map[string]int `json:"survivors_player2"`
	LogDigest  string         `json:"log_digest"`
	RecordID   uint           `json:"record_id,omitempty"`
}

// Manager owns all live sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	repo     storage.Repository
	rules    battle.Options
	ttl      time.Duration
}

// NewManager creates a session manager persisting finished battles via
// repo. repo may be nil for purely in-memory use (tests, the sim CLI).
func NewManager(repo storage.Repository, rules battle.Options, ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		repo:     repo,
		rules:    rules,
		ttl:      ttl,
	}
}

// CreateBattle validates the armies, constructs the battle and registers a
// session for it. A nil seed draws a non-deterministic one, which is
// acceptable only for genuinely new battles, never for replays.
func (m *Manager) CreateBattle(army1, army2 []battle.UnitSpec, seed *int64, rules *battle.Options) (*Session, error) {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	opts := m.rules
	if rules != nil {
		opts = *rules
	}
	bt, err := battle.New(army1, army2, s, opts)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Seed:      s,
		Army1:     army1,
		Army2:     army2,
		Battle:    bt,
		Created:   now,
		lastTouch: now,
	}
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	logging.Info("battle session created", logging.Fields{constants.LogFieldBattleID: sess.ID, constants.LogFieldSeed: s})
	return sess, nil
}

// Get returns the live session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Step advances the session's battle by one unit-turn.
func (m *Manager) Step(id string) (*StepResult, error) {
	sess, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastTouch = time.Now()

	bt := sess.Battle
	if bt.Decided() {
		return nil, ErrBattleFinished
	}
	cont := bt.Step()
	res := &StepResult{
		Continues:  cont,
		LastAction: bt.LastAction,
		Winner:     bt.Winner,
		Round:      bt.RoundNum,
	}
	if !bt.Opts.ApplyEventsImmediately {
		res.Events = bt.PendingEvents()
	}
	if bt.Decided() {
		m.persistLocked(sess)
	}
	return res, nil
}

// ApplyEvents drains the session's queued effect-events, making their
// state changes visible. Consumers that create battles with deferred
// events call this between steps once their animations have played.
func (m *Manager) ApplyEvents(id string) ([]battle.EffectEvent, error) {
	sess, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastTouch = time.Now()
	return sess.Battle.DrainEvents(), nil
}

// Undo rolls the session's battle back one step.
func (m *Manager) Undo(id string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastTouch = time.Now()
	if !sess.Battle.Undo() {
		return ErrNothingToUndo
	}
	return nil
}

// Run steps the session's battle to completion and persists the outcome.
func (m *Manager) Run(id string) (*RunResult, error) {
	sess, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastTouch = time.Now()

	bt := sess.Battle
	steps := 0
	for bt.Step() {
		steps++
		if !bt.Opts.ApplyEventsImmediately {
			bt.DrainEvents()
		}
	}
	recID := m.persistLocked(sess)
	return &RunResult{
		Winner:     bt.Winner,
		Rounds:     bt.RoundNum,
		Steps:      steps,
		Survivors1: bt.Survivors(1),
		Survivors2: bt.Survivors(2),
		LogDigest:  keys.LogDigest(bt.Log),
		RecordID:   recID,
	}, nil
}

// persistLocked stores the finished battle's record once. Callers hold the
// session lock.
func (m *Manager) persistLocked(sess *Session) uint {
	if m.repo == nil || sess.persisted || !sess.Battle.Decided() {
		return 0
	}
	bt := sess.Battle
	a1, _ := json.Marshal(sess.Army1)
	a2, _ := json.Marshal(sess.Army2)
	rules, _ := json.Marshal(bt.Opts)
	s1, _ := json.Marshal(bt.Survivors(1))
	s2, _ := json.Marshal(bt.Survivors(2))
	rec := &storage.BattleRecord{
		SessionID:  sess.ID,
		Seed:       sess.Seed,
		ArmyKey:    keys.ArmyKey(sess.Army1, sess.Army2),
		Army1JSON:  string(a1),
		Army2JSON:  string(a2),
		RulesJSON:  string(rules),
		Winner:     bt.Winner,
		Rounds:     bt.RoundNum,
		Steps:      bt.HistoryLen(),
		Survivors1: string(s1),
		Survivors2: string(s2),
		LogDigest:  keys.LogDigest(bt.Log),
	}
	if err := m.repo.CreateRecord(rec); err != nil {
		logging.Error("failed to persist battle record", err, logging.Fields{constants.LogFieldBattleID: sess.ID})
		return 0
	}
	sess.persisted = true
	logging.Info("battle record persisted", logging.Fields{
		constants.LogFieldBattleID: sess.ID, constants.LogFieldRecordID: rec.ID,
		constants.LogFieldWinner: bt.Winner, constants.LogFieldRounds: bt.RoundNum,
	})
	return rec.ID
}

// ExpireIdle drops sessions untouched for longer than the configured TTL.
// Finished sessions were already persisted; an expired running battle is
// simply abandoned.
func (m *Manager) ExpireIdle(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	expired := 0
	for id, sess := range m.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastTouch)
		sess.mu.Unlock()
		if idle > m.ttl {
			delete(m.sessions, id)
			expired++
			logging.Info("battle session expired", logging.Fields{constants.LogFieldBattleID: id})
		}
	}
	return expired
}
