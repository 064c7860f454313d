// Package router exposes the workflow engine over HTTP. Wire shapes are
// stable: camelCase keys, ISO-8601 UTC timestamps.
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/migration"
	"github.com/testbridge/testbridge/engine/workflow"
)

type Router struct {
	engine *workflow.Engine
	runner *workflow.Runner
}

func New(engine *workflow.Engine, runner *workflow.Runner) *Router {
	return &Router{engine: engine, runner: runner}
}

// Register mounts the workflow routes on an API group.
func (r *Router) Register(api *gin.RouterGroup) {
	workflows := api.Group("/workflows")
	workflows.POST("/migration", r.createMigration)
	workflows.GET("", r.listWorkflows)
	workflows.GET("/:workflow_id", r.getWorkflow)
	workflows.POST("/:workflow_id/start", r.startWorkflow)
	workflows.POST("/:workflow_id/steps/:step_id/retry", r.retryStep)
	workflows.GET("/:workflow_id/translations", r.getTranslations)
}

type createMigrationRequest struct {
	SourceSystem  string                               `json:"sourceSystem"`
	SourceConfig  map[string]any                       `json:"sourceConfig"`
	TargetSystem  string                               `json:"targetSystem"`
	TargetConfig  map[string]any                       `json:"targetConfig"`
	ProjectKey    string                               `json:"projectKey"`
	EntityTypes   []string                             `json:"entityTypes"`
	Filters       map[string]any                       `json:"filters"`
	FieldMappings map[string]map[string]string         `json:"fieldMappings"`
	ValueMappings map[string]map[string]map[string]any `json:"valueMappings"`
}

// createMigration submits a new migration workflow and schedules its run.
// Input problems surface on the workflow's first step, not here; the
// endpoint fails only when the submission itself cannot be accepted.
func (r *Router) createMigration(c *gin.Context) {
	var req createMigrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	wf, err := r.engine.CreateMigrationWorkflow(&migration.Config{
		SourceSystem:  req.SourceSystem,
		SourceConfig:  req.SourceConfig,
		TargetSystem:  req.TargetSystem,
		TargetConfig:  req.TargetConfig,
		ProjectKey:    req.ProjectKey,
		EntityTypes:   req.EntityTypes,
		Filters:       req.Filters,
		FieldMappings: req.FieldMappings,
		ValueMappings: req.ValueMappings,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	r.runner.Submit(wf.ID)
	c.JSON(http.StatusCreated, toStatusDTO(wf.Snapshot()))
}

func (r *Router) listWorkflows(c *gin.Context) {
	items := r.engine.Registry().List()
	out := make([]gin.H, 0, len(items))
	for _, wf := range items {
		out = append(out, gin.H{
			"id":        wf.ID,
			"type":      wf.Type,
			"state":     string(wf.State),
			"createdAt": isoTime(wf.CreatedAt),
		})
	}
	c.JSON(http.StatusOK, gin.H{"workflows": out})
}

func (r *Router) getWorkflow(c *gin.Context) {
	wf, ok := r.engine.Registry().Get(c.Param("workflow_id"))
	if !ok {
		respondNotFound(c, "workflow not found")
		return
	}
	c.JSON(http.StatusOK, toStatusDTO(wf.Snapshot()))
}

// startWorkflow triggers a run (initial or resume) asynchronously.
func (r *Router) startWorkflow(c *gin.Context) {
	id := c.Param("workflow_id")
	wf, ok := r.engine.Registry().Get(id)
	if !ok {
		respondNotFound(c, "workflow not found")
		return
	}
	if wf.CurrentState() == core.StatusRunning {
		respondError(c, http.StatusConflict, fmt.Errorf("workflow %s is already running", id))
		return
	}
	r.runner.Submit(id)
	c.JSON(http.StatusAccepted, toStatusDTO(wf.Snapshot()))
}

func (r *Router) retryStep(c *gin.Context) {
	id := c.Param("workflow_id")
	if _, ok := r.engine.Registry().Get(id); !ok {
		respondNotFound(c, "workflow not found")
		return
	}
	if err := r.engine.RetryStep(id, c.Param("step_id")); err != nil {
		respondError(c, http.StatusConflict, err)
		return
	}
	wf, _ := r.engine.Registry().Get(id)
	c.JSON(http.StatusOK, toStatusDTO(wf.Snapshot()))
}

// getTranslations returns the per-record audit log for a workflow's job.
func (r *Router) getTranslations(c *gin.Context) {
	wf, ok := r.engine.Registry().Get(c.Param("workflow_id"))
	if !ok {
		respondNotFound(c, "workflow not found")
		return
	}
	snap := wf.Snapshot()
	jobID := ""
	if len(snap.Steps) > 0 && snap.Steps[0].Result != nil {
		jobID = core.AsString(snap.Steps[0].Result["job_id"])
	}
	entries := r.engine.Service().Translations(jobID)
	c.JSON(http.StatusOK, gin.H{"translations": entries, "count": len(entries)})
}
