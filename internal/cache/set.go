package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/models"
)

const (
	OrganizationPrefix = "pm_org"
	ProjectPrefix      = "pm_project"
	TaskPrefix         = "pm_task"
	CommentPrefix      = "pm_comment"
)

// Set holds the four entity namespaces over one backend.
type Set struct {
	Organizations *Cache
	Projects      *Cache
	Tasks         *Cache
	Comments      *Cache

	backend Backend
	logger  zerolog.Logger
}

// TTLs are the namespace default expiries. Less volatile entities live longer.
type TTLs struct {
	Organization time.Duration
	Project      time.Duration
	Task         time.Duration
	Comment      time.Duration
}

// TTLsFromConfig reads the namespace expiries from cfg.
func TTLsFromConfig(cfg *config.Config) TTLs {
	return TTLs{
		Organization: cfg.OrganizationCacheTTL,
		Project:      cfg.ProjectCacheTTL,
		Task:         cfg.TaskCacheTTL,
		Comment:      cfg.CommentCacheTTL,
	}
}

// NewSet creates the four namespaces. metrics may be nil.
func NewSet(backend Backend, ttls TTLs, timeout time.Duration, logger zerolog.Logger, metrics *Metrics) *Set {
	namespace := func(prefix string, ttl time.Duration) *Cache {
		return New(backend, Options{Prefix: prefix, TTL: ttl, Timeout: timeout}, logger, metrics)
	}
	return &Set{
		Organizations: namespace(OrganizationPrefix, ttls.Organization),
		Projects:      namespace(ProjectPrefix, ttls.Project),
		Tasks:         namespace(TaskPrefix, ttls.Task),
		Comments:      namespace(CommentPrefix, ttls.Comment),
		backend:       backend,
		logger:        logger.With().Str("component", "cache").Logger(),
	}
}

func (s *Set) all() []*Cache {
	return []*Cache{s.Organizations, s.Projects, s.Tasks, s.Comments}
}

// InvalidateOrganization clears every key tagged with the organization, and
// every superuser key, in all four namespaces.
func (s *Set) InvalidateOrganization(ctx context.Context, id uint64) {
	ctx = context.WithoutCancel(ctx)
	for _, c := range s.all() {
		c.ClearPattern(ctx, tagPattern(OrganizationTag(id)))
		c.ClearPattern(ctx, tagPattern(allTag))
	}
	s.logger.Debug().Uint64("organization_id", id).Msg("Invalidated organization")
}

// InvalidateProject clears keys tagged with the project in the project, task
// and comment namespaces.
func (s *Set) InvalidateProject(ctx context.Context, id uint64) {
	ctx = context.WithoutCancel(ctx)
	for _, c := range []*Cache{s.Projects, s.Tasks, s.Comments} {
		c.ClearPattern(ctx, tagPattern(ProjectTag(id)))
	}
	s.logger.Debug().Uint64("project_id", id).Msg("Invalidated project")
}

// InvalidateTask clears keys tagged with the task in the task and comment
// namespaces.
func (s *Set) InvalidateTask(ctx context.Context, id uint64) {
	ctx = context.WithoutCancel(ctx)
	for _, c := range []*Cache{s.Tasks, s.Comments} {
		c.ClearPattern(ctx, tagPattern(TaskTag(id)))
	}
	s.logger.Debug().Uint64("task_id", id).Msg("Invalidated task")
}

// InvalidateRef invalidates an entity and every ancestor in its chain,
// innermost first.
func (s *Set) InvalidateRef(ctx context.Context, ref models.Ref) {
	if ref.TaskID != 0 {
		s.InvalidateTask(ctx, ref.TaskID)
	}
	if ref.ProjectID != 0 {
		s.InvalidateProject(ctx, ref.ProjectID)
	}
	if ref.OrganizationID != 0 {
		s.InvalidateOrganization(ctx, ref.OrganizationID)
	}
}

// Ping reports whether the backend is reachable.
func (s *Set) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Stats reports per-namespace and total counters.
func (s *Set) Stats() Summary {
	var hits, misses, errors uint64
	namespaces := make([]Stats, 0, 4)
	for _, c := range s.all() {
		st := c.Stats()
		namespaces = append(namespaces, st)
		hits += st.Hits
		misses += st.Misses
		errors += st.Errors
	}
	return Summary{
		Namespaces: namespaces,
		Total:      newStats("", hits, misses, errors),
		Backend:    s.backend.Info(),
	}
}
