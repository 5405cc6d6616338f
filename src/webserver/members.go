package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/dao-govern/src/engine"
)

type Members struct {
	eng *engine.Engine
}

func NewMembers(eng *engine.Engine) Members { return Members{eng: eng} }

func (m Members) CreateTier(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required,max=32"`
		Multiplier uint64 `json:"multiplier" binding:"required,min=1"`
		Active     *bool  `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := m.eng.CreateTier(c.GetString("addr"), req.Name, req.Multiplier, *req.Active); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (m Members) UpdateTier(c *gin.Context) {
	var req struct {
		Multiplier uint64 `json:"multiplier" binding:"required,min=1"`
		Active     *bool  `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := m.eng.UpdateTier(c.GetString("addr"), c.Param("name"), req.Multiplier, *req.Active); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (m Members) Register(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required,max=128"`
		Tier    string `json:"tier" binding:"required,max=32"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := m.eng.RegisterMember(c.GetString("addr"), req.Address, req.Tier); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (m Members) ChangeTier(c *gin.Context) {
	var req struct {
		Tier string `json:"tier" binding:"required,max=32"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := m.eng.ChangeMemberTier(c.GetString("addr"), c.Param("address"), req.Tier); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (m Members) SetStatus(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := m.eng.SetMemberStatus(c.GetString("addr"), c.Param("address"), *req.Active); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (m Members) SetCustomWeight(c *gin.Context) {
	var req struct {
		Weight uint64 `json:"weight"` // 0 clears the override
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := m.eng.SetCustomWeight(c.GetString("addr"), c.Param("address"), req.Weight); err != nil {
		engineErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (m Members) Get(c *gin.Context) {
	member, ok := m.eng.Member(c.Param("address"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"err": "member not found"})
		return
	}
	c.JSON(http.StatusOK, member)
}

func (m Members) History(c *gin.Context) {
	c.JSON(http.StatusOK, m.eng.MemberHistory(c.Param("address")))
}

func (m Members) Power(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"power": m.eng.GetVotingPower(c.Param("address"))})
}
