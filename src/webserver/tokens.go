package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/dao-govern/src/engine"
)

type Tokens struct {
	eng *engine.Engine
}

func NewTokens(eng *engine.Engine) Tokens { return Tokens{eng: eng} }

func (t Tokens) Add(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required,max=128"`
		Decimals uint8  `json:"decimals"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := t.eng.AddSupportedToken(c.GetString("addr"), req.Token, req.Decimals); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (t Tokens) Configure(c *gin.Context) {
	var req struct {
		Model          string `json:"model" binding:"required,oneof=linear square-root"`
		LockMultiplier bool   `json:"lockMultiplier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := t.eng.ConfigureVotingPowerModel(c.GetString("addr"), c.Param("token"), req.Model, req.LockMultiplier); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (t Tokens) CreateSnapshot(c *gin.Context) {
	var req struct {
		ProposalID uint64 `json:"proposalId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := t.eng.CreateSnapshot(c.GetString("addr"), c.Param("token"), req.ProposalID); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (t Tokens) AddToSnapshot(c *gin.Context) {
	proposalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	var req struct {
		Holder string `json:"holder" binding:"required,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := t.eng.AddToSnapshot(c.GetString("addr"), c.Param("token"), proposalID, req.Holder); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (t Tokens) Lock(c *gin.Context) {
	var req struct {
		Amount        uint64 `json:"amount" binding:"required,min=1"`
		LockDays      uint64 `json:"lockDays" binding:"required,min=7,max=365"`
		MultiplierBps uint64 `json:"multiplierBps" binding:"required,min=100,max=300"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := t.eng.LockTokens(c.GetString("addr"), c.Param("token"), req.Amount, req.LockDays, req.MultiplierBps); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (t Tokens) Unlock(c *gin.Context) {
	if err := t.eng.UnlockTokens(c.GetString("addr"), c.Param("token")); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (t Tokens) Power(c *gin.Context) {
	var proposalID *uint64
	if raw := c.Query("proposal"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
			return
		}
		proposalID = &id
	}
	power, err := t.eng.TokenVotingPower(c.Param("token"), c.Param("holder"), proposalID)
	if err != nil {
		engineErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"power": power})
}
