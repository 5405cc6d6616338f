package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/dao-govern/src/engine"
)

type Delegations struct {
	eng *engine.Engine
}

func NewDelegations(eng *engine.Engine) Delegations { return Delegations{eng: eng} }

func (d Delegations) Delegate(c *gin.Context) {
	var req struct {
		Delegate string `json:"delegate" binding:"required,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := d.eng.DelegateVote(c.GetString("addr"), req.Delegate); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (d Delegations) Revoke(c *gin.Context) {
	if err := d.eng.RevokeDelegation(c.GetString("addr")); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (d Delegations) Status(c *gin.Context) {
	rec, ok := d.eng.Delegation(c.Param("voter"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"err": "no delegation"})
		return
	}
	c.JSON(http.StatusOK, rec)
}
