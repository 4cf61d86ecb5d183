package core

import (
	"context"
	"fmt"

	"limscore/pkg/domain"
)

// NameSource proposes display names for newly opened projects. ok=false
// means the project keeps its current name; it is still marked processed so
// the next review does not revisit it.
type NameSource interface {
	ProposeName(ctx context.Context, project domain.ProjectRecord) (name string, ok bool, err error)
}

// NameSourceFunc adapts a function to the NameSource interface.
type NameSourceFunc func(ctx context.Context, project domain.ProjectRecord) (string, bool, error)

// ProposeName calls f.
func (f NameSourceFunc) ProposeName(ctx context.Context, project domain.ProjectRecord) (string, bool, error) {
	return f(ctx, project)
}

// ReviewProjects scans the record system's project listing, skips every
// identifier already in the processed set, and renames the rest using naming.
// Successfully handled identifiers are added to the in-memory set as the scan
// proceeds; the whole set is flushed once at run end, so a crash mid-scan
// leaves the persisted set unchanged and the next run revisits the
// unprocessed remainder. A project whose rename fails is reported and left
// out of the set.
func (s *Service) ReviewProjects(ctx context.Context, naming NameSource) (domain.RunReport, error) {
	start := s.now()
	report := domain.RunReport{}

	seen, err := s.seen.Load(ctx)
	if err != nil {
		s.metrics.IncResult("review_projects", "error")
		return report, fmt.Errorf("load processed set: %w", err)
	}

	projects, err := s.registry.ListProjects(ctx)
	if err != nil {
		s.metrics.IncResult("review_projects", "error")
		return report, fmt.Errorf("list projects: %w", err)
	}

	for _, project := range projects {
		if _, done := seen[project.ID]; done {
			continue
		}
		report.Counts.Processed++

		name, ok, err := naming.ProposeName(ctx, project)
		if err != nil {
			report.Fail(fmt.Sprintf("project %s: propose name: %v", project.ID, err))
			continue
		}
		if ok && name != project.Name {
			if err := s.registry.RenameProject(ctx, project.ID, name); err != nil {
				report.Fail(fmt.Sprintf("project %s: rename: %v", project.ID, err))
				continue
			}
			report.Counts.Matched++
			s.logger.Info("renamed project", "id", project.ID, "from", project.Name, "to", name)
		} else {
			report.Log("name-kept", "project "+project.ID+" keeps name "+project.Name, "")
		}
		seen[project.ID] = struct{}{}
	}

	if err := s.seen.Save(ctx, seen); err != nil {
		s.metrics.IncResult("review_projects", "error")
		return report, fmt.Errorf("save processed set: %w", err)
	}

	report.Success = len(report.Errors) == 0
	s.observe("review_projects", start, report.Success)
	return report, nil
}
