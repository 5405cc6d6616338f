package webserver

import (
	"html"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stake-plus/dao-govern/src/engine"
	"github.com/stake-plus/dao-govern/src/engine/proposal"
)

type Proposals struct {
	eng       *engine.Engine
	sanitizer *bluemonday.Policy
}

func NewProposals(eng *engine.Engine) Proposals {
	// Proposal text is plain: strip every tag, escape the rest.
	return Proposals{eng: eng, sanitizer: bluemonday.StrictPolicy()}
}

func (p Proposals) Create(c *gin.Context) {
	var req struct {
		Title           string   `json:"title" binding:"required,max=50"`
		ExpirationDelta uint64   `json:"expirationDelta" binding:"required,min=1"`
		Category        string   `json:"category" binding:"max=20"`
		Tags            []string `json:"tags" binding:"max=5,dive,max=15"`
		VotingMode      string   `json:"votingMode" binding:"required,oneof=standard quadratic"`
		Token           string   `json:"token"`
		MaxVotePower    uint64   `json:"maxVotePower"`
		Target          string   `json:"target"`
		Function        string   `json:"function"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	req.Title = html.EscapeString(p.sanitizer.Sanitize(req.Title))
	req.Category = html.EscapeString(p.sanitizer.Sanitize(req.Category))
	for i, tag := range req.Tags {
		req.Tags[i] = html.EscapeString(p.sanitizer.Sanitize(tag))
	}
	if !utf8.ValidString(req.Title) || !utf8.ValidString(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid characters in input"})
		return
	}
	if len(req.Title) == 0 || len(req.Title) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "title must be between 1 and 50 characters"})
		return
	}

	id, err := p.eng.CreateProposal(c.GetString("addr"), proposal.CreateParams{
		Title:           req.Title,
		ExpirationDelta: req.ExpirationDelta,
		Category:        req.Category,
		Tags:            req.Tags,
		VotingMode:      req.VotingMode,
		Token:           req.Token,
		MaxVotePower:    req.MaxVotePower,
		Target:          req.Target,
		Function:        req.Function,
	})
	if err != nil {
		engineErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (p Proposals) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	prop, ok := p.eng.Proposal(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
		return
	}
	c.JSON(http.StatusOK, prop)
}

func (p Proposals) List(c *gin.Context) {
	c.JSON(http.StatusOK, p.eng.ListProposals())
}

func (p Proposals) Vote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	var req struct {
		Choice string `json:"choice" binding:"required,oneof=for against"`
		Voter  string `json:"voter"` // optional: vote on behalf of a delegator
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	caller := c.GetString("addr")
	voter := req.Voter
	if voter == "" {
		voter = caller
	}
	power, err := p.eng.VoteFor(caller, voter, id, req.Choice == "for")
	if err != nil {
		engineErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"power": power})
}

func (p Proposals) Execute(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	result, err := p.eng.ExecuteProposal(c.GetString("addr"), id)
	if err != nil {
		engineErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}
