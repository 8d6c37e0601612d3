// internal/app/system/syncmetrics/syncmetrics.go
package syncmetrics

import (
	"sort"
	"sync"
)

// Registry accumulates per-(workspace, data source) success and error
// counters for document sync operations. Safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	counts map[key]*Stat
}

type key struct {
	workspaceID    string
	dataSourceName string
}

// Stat is one counter row in a snapshot.
type Stat struct {
	WorkspaceID    string `json:"workspace_id"`
	DataSourceName string `json:"data_source_name"`
	Successes      int64  `json:"successes"`
	Errors         int64  `json:"errors"`
}

func NewRegistry() *Registry {
	return &Registry{counts: make(map[key]*Stat)}
}

func (r *Registry) get(workspaceID, dataSourceName string) *Stat {
	k := key{workspaceID: workspaceID, dataSourceName: dataSourceName}
	s, ok := r.counts[k]
	if !ok {
		s = &Stat{WorkspaceID: workspaceID, DataSourceName: dataSourceName}
		r.counts[k] = s
	}
	return s
}

// IncSuccess records a successful sync call.
func (r *Registry) IncSuccess(workspaceID, dataSourceName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(workspaceID, dataSourceName).Successes++
}

// IncError records a failed sync call.
func (r *Registry) IncError(workspaceID, dataSourceName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(workspaceID, dataSourceName).Errors++
}

// Snapshot returns a copy of all counters, ordered by workspace then data
// source so output is stable.
func (r *Registry) Snapshot() []Stat {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Stat, 0, len(r.counts))
	for _, s := range r.counts {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WorkspaceID != out[j].WorkspaceID {
			return out[i].WorkspaceID < out[j].WorkspaceID
		}
		return out[i].DataSourceName < out[j].DataSourceName
	})
	return out
}
