package dashboardqueries

import (
	"context"

	metricsstore "github.com/dalemusser/realtycrm/internal/app/store/metrics"
	"github.com/dalemusser/realtycrm/internal/domain/models"
)

// StatusCount is the number of records in one status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// SourceCount is the number of leads from one source.
type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// ProjectStatus counts all projects by status. It is not role-scoped.
func (e *Engine) ProjectStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := e.src.GroupCount(ctx, metricsstore.Projects, metricsstore.Filter{}, fieldStatus)
	if err != nil {
		return nil, err
	}
	return statusCounts(rows), nil
}

// LeadSources counts leads by source; associates only see their own leads.
func (e *Engine) LeadSources(ctx context.Context, id models.Identity) ([]SourceCount, error) {
	scope, err := leadScope(id)
	if err != nil {
		return nil, err
	}
	rows, err := e.src.GroupCount(ctx, metricsstore.Leads, scope, fieldSource)
	if err != nil {
		return nil, err
	}

	out := make([]SourceCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, SourceCount{Source: r.Key, Count: r.Count})
	}
	return out, nil
}

func statusCounts(rows []metricsstore.KeyCount) []StatusCount {
	out := make([]StatusCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, StatusCount{Status: r.Key, Count: r.Count})
	}
	return out
}
