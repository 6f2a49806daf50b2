package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"warhex/internal/constants"
	"warhex/internal/logging"
	"warhex/internal/service"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsMsg is the envelope for every frame on the battle stream.
type wsMsg struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

const defaultStreamInterval = 250 * time.Millisecond

// StreamBattle upgrades to a websocket and plays the battle out step by
// step, one frame per unit-turn, ending with a result frame. The optional
// ?interval_ms= query parameter controls the pacing.
func (h *BattleHandler) StreamBattle(c *gin.Context) {
	id := c.Param("battleID")
	sess, err := h.manager.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	interval := defaultStreamInterval
	if s := c.Query("interval_ms"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 5000 {
			interval = time.Duration(n) * time.Millisecond
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: err.Error()})
		return
	}
	defer conn.Close()
	logging.Info("battle stream opened", logging.Fields{constants.LogFieldBattleID: id})

	if err := conn.WriteJSON(wsMsg{Type: "state", Data: sess.Battle}); err != nil {
		return
	}

	for {
		res, err := h.manager.Step(id)
		if errors.Is(err, service.ErrBattleFinished) {
			break
		}
		if err != nil {
			_ = conn.WriteJSON(wsMsg{Type: "error", Data: err.Error()})
			return
		}
		if err := conn.WriteJSON(wsMsg{Type: "step", Data: res}); err != nil {
			logging.Info("battle stream closed by client", logging.Fields{constants.LogFieldBattleID: id})
			return
		}
		// The stream frame is the animation; deferred events are applied
		// as soon as it has been sent.
		if len(res.Events) > 0 {
			if _, err := h.manager.ApplyEvents(id); err != nil {
				_ = conn.WriteJSON(wsMsg{Type: "error", Data: err.Error()})
				return
			}
		}
		if !res.Continues {
			break
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}

	final := wsMsg{Type: "result", Data: gin.H{
		"winner": sess.Battle.Winner,
		"rounds": sess.Battle.RoundNum,
		"log":    sess.Battle.Log,
	}}
	_ = conn.WriteJSON(final)
}
