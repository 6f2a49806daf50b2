package service

import (
	"testing"
	"time"

	"warhex/internal/battle"
	"warhex/internal/storage"
)

type mockRepo struct {
	created []*storage.BattleRecord
	nextID  uint
}

func (m *mockRepo) CreateRecord(r *storage.BattleRecord) error {
	m.nextID++
	r.ID = m.nextID
	m.created = append(m.created, r)
	return nil
}

func (m *mockRepo) GetRecordByID(id uint) (*storage.BattleRecord, error) {
	for _, r := range m.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *mockRepo) GetRecordBySessionID(sessionID string) (*storage.BattleRecord, error) {
	for _, r := range m.created {
		if r.SessionID == sessionID {
			return r, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *mockRepo) ListRecords(limit int) ([]storage.BattleRecord, error) {
	out := make([]storage.BattleRecord, 0, len(m.created))
	for _, r := range m.created {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRepo) FindRecordsByArmyKey(key string) ([]storage.BattleRecord, error) {
	var out []storage.BattleRecord
	for _, r := range m.created {
		if r.ArmyKey == key {
			out = append(out, *r)
		}
	}
	return out, nil
}

func duelArmies() ([]battle.UnitSpec, []battle.UnitSpec) {
	a1 := []battle.UnitSpec{{Name: "Knight", MaxHP: 8, Damage: 3, Range: 1, Count: 2}}
	a2 := []battle.UnitSpec{{Name: "Archer", MaxHP: 5, Damage: 2, Range: 3, Count: 2}}
	return a1, a2
}

func newTestManager(repo storage.Repository) *Manager {
	return NewManager(repo, battle.DefaultOptions(), time.Minute)
}

func TestRun_PersistsRecord(t *testing.T) {
	mr := &mockRepo{}
	m := newTestManager(mr)
	a1, a2 := duelArmies()
	seed := int64(42)
	sess, err := m.CreateBattle(a1, a2, &seed, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := m.Run(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Winner == battle.WinnerNone {
		t.Fatalf("battle should be decided after Run")
	}
	if len(mr.created) != 1 {
		t.Fatalf("expected exactly one persisted record, got %d", len(mr.created))
	}
	rec := mr.created[0]
	if rec.SessionID != sess.ID || rec.Seed != seed || rec.Winner != res.Winner {
		t.Fatalf("record does not match run result: %+v vs %+v", rec, res)
	}
	if rec.LogDigest == "" || rec.LogDigest != res.LogDigest {
		t.Fatalf("log digest missing or inconsistent")
	}

	// A second Run on the finished session must not persist again.
	if _, err := m.Run(sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mr.created) != 1 {
		t.Fatalf("finished battle persisted twice")
	}
}

func TestStepAndUndo(t *testing.T) {
	m := newTestManager(nil)
	a1, a2 := duelArmies()
	seed := int64(7)
	sess, err := m.CreateBattle(a1, a2, &seed, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := m.Step(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Continues {
		t.Fatalf("battle should continue after a single step")
	}
	if err := m.Undo(sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Undo(sess.ID); err != ErrNothingToUndo {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func healerArmies() ([]battle.UnitSpec, []battle.UnitSpec) {
	a1 := []battle.UnitSpec{{Name: "Knight", MaxHP: 20, Damage: 3, Range: 1, Count: 1}}
	a2 := []battle.UnitSpec{{Name: "Priest", MaxHP: 20, Damage: 1, Range: 1, Count: 1,
		Abilities: []battle.Ability{{Trigger: battle.TriggerPeriodic, Effect: battle.EffectHeal, Target: battle.TargetSelf, Value: 2}}}}
	return a1, a2
}

func TestApplyEvents_DeferredMode(t *testing.T) {
	m := newTestManager(nil)
	a1, a2 := healerArmies()
	seed := int64(21)
	rules := battle.DefaultOptions()
	rules.ApplyEventsImmediately = false
	sess, err := m.CreateBattle(a1, a2, &seed, &rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var queued int
	for i := 0; i < 100; i++ {
		res, err := m.Step(sess.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Events) > 0 {
			queued = len(res.Events)
			break
		}
	}
	if queued == 0 {
		t.Fatalf("healer never queued an effect event")
	}

	applied, err := m.ApplyEvents(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(applied) != queued {
		t.Fatalf("expected %d applied events, got %d", queued, len(applied))
	}
	if n := len(sess.Battle.PendingEvents()); n != 0 {
		t.Fatalf("%d events still pending after ApplyEvents", n)
	}
}

func TestRun_DeferredEventsApplied(t *testing.T) {
	m := newTestManager(nil)
	a1, a2 := healerArmies()
	seed := int64(21)
	rules := battle.DefaultOptions()
	rules.ApplyEventsImmediately = false
	sess, err := m.CreateBattle(a1, a2, &seed, &rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := m.Run(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Winner == battle.WinnerNone {
		t.Fatalf("battle should be decided after Run")
	}
	if n := len(sess.Battle.PendingEvents()); n != 0 {
		t.Fatalf("%d events left pending after a headless run", n)
	}
}

func TestStep_FinishedBattle(t *testing.T) {
	m := newTestManager(nil)
	a1, a2 := duelArmies()
	seed := int64(3)
	sess, err := m.CreateBattle(a1, a2, &seed, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Run(sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Step(sess.ID); err != ErrBattleFinished {
		t.Fatalf("expected ErrBattleFinished, got %v", err)
	}
}

func TestGet_UnknownSession(t *testing.T) {
	m := newTestManager(nil)
	if _, err := m.Get("nope"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestExpireIdle(t *testing.T) {
	m := newTestManager(nil)
	a1, a2 := duelArmies()
	seed := int64(1)
	sess, err := m.CreateBattle(a1, a2, &seed, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := m.ExpireIdle(time.Now()); n != 0 {
		t.Fatalf("fresh session expired: %d", n)
	}
	if n := m.ExpireIdle(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("expected one expired session, got %d", n)
	}
	if _, err := m.Get(sess.ID); err != ErrSessionNotFound {
		t.Fatalf("expired session still reachable: %v", err)
	}
}

func TestReplay_VerifiesDigest(t *testing.T) {
	mr := &mockRepo{}
	m := newTestManager(mr)
	a1, a2 := duelArmies()
	seed := int64(99)
	sess, err := m.CreateBattle(a1, a2, &seed, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := m.Run(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rep, err := m.Replay(res.RecordID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Verified {
		t.Fatalf("replay of a freshly stored record must verify")
	}
	if rep.Winner != res.Winner || rep.Rounds != res.Rounds {
		t.Fatalf("replay outcome diverged: %+v vs %+v", rep, res)
	}
}

func TestReplay_DeferredRulesVerify(t *testing.T) {
	mr := &mockRepo{}
	m := newTestManager(mr)
	a1, a2 := healerArmies()
	seed := int64(13)
	rules := battle.DefaultOptions()
	rules.ApplyEventsImmediately = false
	sess, err := m.CreateBattle(a1, a2, &seed, &rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := m.Run(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rep, err := m.Replay(res.RecordID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Verified {
		t.Fatalf("replay under deferred event rules must reproduce the stored digest")
	}
}

func TestReplay_DetectsTamperedDigest(t *testing.T) {
	mr := &mockRepo{}
	m := newTestManager(mr)
	a1, a2 := duelArmies()
	seed := int64(5)
	sess, err := m.CreateBattle(a1, a2, &seed, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := m.Run(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mr.created[0].LogDigest = "tampered"

	rep, err := m.Replay(res.RecordID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Verified {
		t.Fatalf("tampered digest must not verify")
	}
}
