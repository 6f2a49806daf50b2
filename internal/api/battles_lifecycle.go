package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"warhex/internal/battle"
	"warhex/internal/constants"
	"warhex/internal/service"
)

// createBattleRequest is the payload for POST /api/battles. Seed and rules
// are optional; a missing seed draws a fresh one.
type createBattleRequest struct {
	Army1 []battle.UnitSpec `json:"army1" binding:"required"`
	Army2 []battle.UnitSpec `json:"army2" binding:"required"`
	Seed  *int64            `json:"seed"`
	Rules *battle.Options   `json:"rules"`
}

// CreateBattle starts a new battle session from two armies.
func (h *BattleHandler) CreateBattle(c *gin.Context) {
	var req createBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	sess, err := h.manager.CreateBattle(req.Army1, req.Army2, req.Seed, req.Rules)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"battle_id": sess.ID,
		"seed":      sess.Seed,
		"battle":    sess.Battle,
	})
}

// StepBattle advances the battle by one unit-turn.
func (h *BattleHandler) StepBattle(c *gin.Context) {
	id := c.Param("battleID")
	res, err := h.manager.Step(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ApplyBattleEvents drains the battle's queued effect-events. Only useful
// for sessions created with deferred event application; with the default
// rules the queue is always empty.
func (h *BattleHandler) ApplyBattleEvents(c *gin.Context) {
	id := c.Param("battleID")
	events, err := h.manager.ApplyEvents(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": events})
}

// UndoBattle rolls the battle back one step.
func (h *BattleHandler) UndoBattle(c *gin.Context) {
	id := c.Param("battleID")
	if err := h.manager.Undo(id); err != nil {
		writeSessionError(c, err)
		return
	}
	sess, err := h.manager.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"battle": sess.Battle})
}

// RunBattle steps the battle to completion and returns the outcome.
func (h *BattleHandler) RunBattle(c *gin.Context) {
	id := c.Param("battleID")
	res, err := h.manager.Run(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
	case errors.Is(err, service.ErrBattleFinished):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrBattleFinished})
	case errors.Is(err, service.ErrNothingToUndo):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrNothingToUndo})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: err.Error()})
	}
}
