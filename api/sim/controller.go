// Package simapi exposes the simulation run over the REST monitor.
package simapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guilhemriera/Parallel-Ants-Project/sim"
)

// StatusProvider is the read-only view of the run the controller serves.
type StatusProvider interface {
	Status() sim.Status
	LatestSnapshot() *sim.Snapshot
}

// MonitorController serves run progress and display frames.
type MonitorController struct {
	provider StatusProvider
}

// NewMonitorController initializes a MonitorController.
func NewMonitorController(p StatusProvider) (*MonitorController, error) {
	return &MonitorController{provider: p}, nil
}

// RegisterRoutes registers the monitor routes.
func (mc *MonitorController) RegisterRoutes(route *gin.RouterGroup) {
	simulation := route.Group("/simulation")
	{
		simulation.GET("/status", mc.status)
		simulation.GET("/snapshot", mc.snapshot)
		simulation.GET("/field", mc.field)
	}
}

// status reports the run counters.
func (mc *MonitorController) status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, mc.provider.Status())
}

// snapshot returns the latest display frame.
func (mc *MonitorController) snapshot(ctx *gin.Context) {
	snap := mc.provider.LatestSnapshot()
	if snap == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no snapshot yet"})
		return
	}
	ctx.JSON(http.StatusOK, snap)
}

// field returns the merged scent field of the latest display frame.
func (mc *MonitorController) field(ctx *gin.Context) {
	snap := mc.provider.LatestSnapshot()
	if snap == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no snapshot yet"})
		return
	}
	ctx.JSON(http.StatusOK, FieldResponse{
		Tick:  snap.Tick,
		Rows:  snap.Rows,
		Cols:  snap.Cols,
		Cells: snap.Field,
	})
}
