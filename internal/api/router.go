package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"repairshop-backend/config"
	"repairshop-backend/internal/mw"
	"repairshop-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowOrigins) == 1 && cfg.CORSAllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	handler := NewHandler(s, cfg.QueryMode)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/")
	api.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	{
		api.GET("/repairs", handler.ListRepairs)
		api.GET("/repairs/:id", handler.GetRepair)
		api.POST("/repairs", handler.CreateRepair)
		api.PUT("/repairs/:id", handler.UpdateRepair)
		api.DELETE("/repairs/:id", handler.DeleteRepair)

		api.GET("/machines", handler.ListMachines)
		api.GET("/machines/:ns", handler.GetMachine)
		api.POST("/machines", handler.UpsertMachine)

		api.GET("/clients", handler.ListClients)
		api.GET("/clients/:id", handler.GetClient)
		api.POST("/clients", handler.FindOrCreateClient)
		api.PUT("/clients/:id", handler.UpdateClient)

		api.GET("/lookups", handler.GetLookups)
	}

	return r
}
