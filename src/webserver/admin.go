package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/dao-govern/src/data"
	"github.com/stake-plus/dao-govern/src/engine"
)

type Admin struct {
	eng   *engine.Engine
	clock *data.HeightClock
}

func NewAdmin(eng *engine.Engine, clock *data.HeightClock) Admin {
	return Admin{eng: eng, clock: clock}
}

func (a Admin) TransferOwnership(c *gin.Context) {
	var req struct {
		Owner string `json:"owner" binding:"required,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := a.eng.TransferOwnership(c.GetString("addr"), req.Owner); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// AdvanceHeight moves the host clock. Only the administrator drives it; in
// deployments with a block ticker this is a manual override.
func (a Admin) AdvanceHeight(c *gin.Context) {
	var req struct {
		Blocks uint64 `json:"blocks" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if a.eng.Owner() != c.GetString("addr") {
		c.JSON(http.StatusForbidden, gin.H{"err": "not authorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"height": a.clock.Advance(req.Blocks)})
}

func (a Admin) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"owner":  a.eng.Owner(),
		"height": a.eng.Height(),
	})
}
