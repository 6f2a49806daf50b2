package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"warhex/internal/constants"
	"warhex/internal/service"
)

// ListRecords returns stored battle outcomes, most recent first.
// Optional ?limit=N and ?army_key=K filters.
func (h *BattleHandler) ListRecords(c *gin.Context) {
	if key := c.Query("army_key"); key != "" {
		recs, err := h.repo.FindRecordsByArmyKey(key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedListRecords})
			return
		}
		c.JSON(http.StatusOK, recs)
		return
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	recs, err := h.repo.ListRecords(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedListRecords})
		return
	}
	c.JSON(http.StatusOK, recs)
}

// GetRecord returns one stored battle record by ID.
func (h *BattleHandler) GetRecord(c *gin.Context) {
	id, ok := recordIDParam(c)
	if !ok {
		return
	}
	rec, err := h.repo.GetRecordByID(id)
	if err != nil || rec == nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrRecordNotFound})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ReplayRecord re-simulates a stored battle and reports whether the result
// matches the stored log digest.
func (h *BattleHandler) ReplayRecord(c *gin.Context) {
	id, ok := recordIDParam(c)
	if !ok {
		return
	}
	res, err := h.manager.Replay(id)
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrRecordNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrReplayFailed})
		return
	}
	c.JSON(http.StatusOK, res)
}

func recordIDParam(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("recordID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRecordID})
		return 0, false
	}
	return uint(n), true
}
