// Package api exposes the battle engine over HTTP (gin) and a per-battle
// websocket stream for step-by-step spectating.
package api

import (
	"warhex/internal/service"
	"warhex/internal/storage"
)

// BattleHandler groups all battle-related HTTP handlers.
type BattleHandler struct {
	manager *service.Manager
	repo    storage.Repository
}

// NewBattleHandler creates a BattleHandler backed by the given session
// manager and record repository.
func NewBattleHandler(manager *service.Manager, repo storage.Repository) *BattleHandler {
	return &BattleHandler{manager: manager, repo: repo}
}
