package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warhex/internal/constants"
)

// GetBattle returns the live state of a battle session.
func (h *BattleHandler) GetBattle(c *gin.Context) {
	id := c.Param("battleID")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return
	}
	sess, err := h.manager.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"battle_id": sess.ID,
		"seed":      sess.Seed,
		"battle":    sess.Battle,
	})
}
