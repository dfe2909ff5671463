package api

import (
	"github.com/gin-gonic/gin"

	"github.com/guilhemriera/Parallel-Ants-Project/api/i"
	"github.com/guilhemriera/Parallel-Ants-Project/config"
)

// Router manages the HTTP monitor server and its controllers.
type Router struct {
	addr        string
	baseURL     string
	controllers []i.Controller
}

// Config holds configuration settings for creating a new Router instance.
type Config struct {
	Addr        string // Address to listen on
	BaseURL     string // Base URL for API routes
	Controllers []i.Controller
}

// NewRouter creates a new Router instance with the given configuration.
func NewRouter(config Config) *Router {
	return &Router{
		addr:        config.Addr,
		baseURL:     config.BaseURL,
		controllers: config.Controllers,
	}
}

// Run starts the HTTP server and sets up routes under the base URL.
func (r *Router) Run() error {
	if config.Envs.GinMode != "" {
		gin.SetMode(config.Envs.GinMode)
	}
	gin.ForceConsoleColor()
	router := gin.Default()

	// Setting up routes under baseURL
	api := router.Group(r.baseURL)
	{
		v1 := api.Group("/v1")
		{
			for _, c := range r.controllers {
				c.RegisterRoutes(v1)
			}
		}
	}

	return router.Run(r.addr)
}
