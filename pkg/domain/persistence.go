package domain

import "context"

// SeenStore persists the append-only set of already-processed project
// identifiers across process invocations. Load is called once before a run;
// Save flushes the run's complete set at the end as a full rewrite, never an
// incremental patch, so an interrupted run can not leave partial state.
type SeenStore interface {
	Load(ctx context.Context) (map[string]struct{}, error)
	Save(ctx context.Context, ids map[string]struct{}) error
}
