package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/stake-plus/dao-govern/src/config"
	"github.com/stake-plus/dao-govern/src/data"
	"github.com/stake-plus/dao-govern/src/engine"
	"github.com/stake-plus/dao-govern/src/engine/types"
)

func New(cfg config.Config, eng *engine.Engine, clock *data.HeightClock, rdb *redis.Client) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, eng, clock, rdb)
	return g
}

func attachRoutes(r *gin.Engine, cfg config.Config, eng *engine.Engine, clock *data.HeightClock, rdb *redis.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(data.NewRedisNonces(rdb), []byte(cfg.JWTSecret), func(addr string) bool {
		return eng.Owner() == addr
	})
	propH := NewProposals(eng)
	memH := NewMembers(eng)
	tokH := NewTokens(eng)
	delH := NewDelegations(eng)
	adminH := NewAdmin(eng, clock)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/challenge", authH.Challenge)
		v1.POST("/auth/verify", authH.Verify)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.POST("/auth/confirm", authH.Confirm)
		secured.GET("/proposals", propH.List)
		secured.GET("/proposals/:id", propH.Get)
		secured.POST("/proposals", propH.Create)
		secured.POST("/proposals/:id/votes", propH.Vote)
		secured.POST("/proposals/:id/execute", propH.Execute)

		secured.POST("/delegation", delH.Delegate)
		secured.DELETE("/delegation", delH.Revoke)
		secured.GET("/delegation/:voter", delH.Status)

		secured.POST("/tiers", memH.CreateTier)
		secured.PUT("/tiers/:name", memH.UpdateTier)
		secured.POST("/members", memH.Register)
		secured.PUT("/members/:address/tier", memH.ChangeTier)
		secured.PUT("/members/:address/status", memH.SetStatus)
		secured.PUT("/members/:address/weight", memH.SetCustomWeight)
		secured.GET("/members/:address", memH.Get)
		secured.GET("/members/:address/history", memH.History)
		secured.GET("/members/:address/power", memH.Power)

		secured.POST("/tokens", tokH.Add)
		secured.PUT("/tokens/:token/model", tokH.Configure)
		secured.POST("/tokens/:token/snapshots", tokH.CreateSnapshot)
		secured.POST("/tokens/:token/snapshots/:id/holders", tokH.AddToSnapshot)
		secured.POST("/tokens/:token/lockups", tokH.Lock)
		secured.DELETE("/tokens/:token/lockups", tokH.Unlock)
		secured.GET("/tokens/:token/power/:holder", tokH.Power)

		secured.POST("/admin/ownership", adminH.TransferOwnership)
		secured.POST("/admin/height", adminH.AdvanceHeight)
		secured.GET("/status", adminH.Status)
	}
}

// engineErr translates a numbered engine error into an HTTP response.
func engineErr(c *gin.Context, err error) {
	var kind *types.Error
	if !errors.As(err, &kind) {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	status := http.StatusBadRequest
	switch kind.Kind {
	case "not authorized", "unauthorized":
		status = http.StatusForbidden
	case "invalid proposal", "member not found", "tier not found", "no delegation", "no snapshot":
		status = http.StatusNotFound
	case "duplicate vote", "already delegated", "already locked", "snapshot exists", "member exists", "tier exists":
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"err": kind.Kind, "code": kind.Code, "detail": err.Error()})
}
