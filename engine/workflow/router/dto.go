package router

import (
	"time"

	"github.com/testbridge/testbridge/engine/workflow"
)

// workflowStatusDTO is the stable workflow status wire shape.
type workflowStatusDTO struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	State       string         `json:"state"`
	CreatedAt   string         `json:"createdAt"`
	StartedAt   string         `json:"startedAt,omitempty"`
	CompletedAt string         `json:"completedAt,omitempty"`
	Steps       []stepDTO      `json:"steps"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type stepDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	Status    string `json:"status"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Error     string `json:"error,omitempty"`
}

func toStatusDTO(wf *workflow.Workflow) workflowStatusDTO {
	dto := workflowStatusDTO{
		ID:          wf.ID,
		Type:        wf.Type,
		State:       string(wf.State),
		CreatedAt:   isoTime(wf.CreatedAt),
		StartedAt:   isoTime(wf.StartedAt),
		CompletedAt: isoTime(wf.CompletedAt),
		Result:      wf.Result,
		Error:       wf.Error,
	}
	for _, s := range wf.Steps {
		dto.Steps = append(dto.Steps, stepDTO{
			ID:        s.ID,
			Name:      s.Name,
			Order:     s.Order,
			Status:    string(s.Status),
			StartTime: isoTime(s.StartTime),
			EndTime:   isoTime(s.EndTime),
			Error:     s.Error,
		})
	}
	return dto
}

// isoTime renders an instant as ISO-8601 UTC, or empty for the zero value.
func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
