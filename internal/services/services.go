package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-management-api/internal/access"
	"github.com/yukikurage/project-management-api/internal/cache"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSearchQueryRequired = errors.New("search query is required")
	ErrSearchQueryTooLong  = fmt.Errorf("search query must be at most %d characters", constants.MaxSearchLength)
	ErrInvalidWindow       = fmt.Errorf("days must be between 0 and %d", constants.MaxWindowDays)
)

// Viewer is who is asking, and optionally the organization the request is
// bound to. A nil Organization means global mode: every organization the
// principal can access.
type Viewer struct {
	Principal    access.Principal
	Organization *models.Organization
}

// tenancy is shared by the query services.
type tenancy struct {
	resolver *access.Resolver
	caches   *cache.Set
	now      func() time.Time
}

func newTenancy(resolver *access.Resolver, caches *cache.Set) tenancy {
	return tenancy{
		resolver: resolver,
		caches:   caches,
		now:      time.Now,
	}
}

// scope resolves the organizations v may read, narrowed to the request's
// organization when there is one.
func (t *tenancy) scope(ctx context.Context, v Viewer) (repository.Scope, error) {
	scope, err := t.resolver.OrganizationsFor(ctx, v.Principal)
	if err != nil {
		return repository.Scope{}, err
	}
	if v.Organization == nil {
		return scope, nil
	}
	if !scopeContains(scope, v.Organization.ID) {
		return repository.Scope{}, nil
	}
	return repository.SingleOrganization(v.Organization.ID), nil
}

// visible reports whether an entity owned by organizationID is readable by v.
func (t *tenancy) visible(ctx context.Context, v Viewer, organizationID uint64, entity models.Entity) (bool, error) {
	if v.Organization != nil && v.Organization.ID != organizationID {
		return false, nil
	}
	return t.resolver.HasAccess(ctx, v.Principal, entity)
}

func (t *tenancy) clock() time.Time {
	return t.now().UTC()
}

// today is the start of the current UTC day.
func (t *tenancy) today() time.Time {
	return truncateDay(t.clock())
}

func truncateDay(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scopeContains(scope repository.Scope, organizationID uint64) bool {
	if scope.All {
		return true
	}
	for _, id := range scope.OrganizationIDs {
		if id == organizationID {
			return true
		}
	}
	return false
}

// listCached answers a scoped listing from c, tagging the key with the scope.
// An empty scope matches nothing and is not cached.
func listCached[T any](ctx context.Context, c *cache.Cache, scope repository.Scope, key cache.Key, load func(context.Context) ([]T, error)) ([]T, error) {
	if scope.Empty() {
		return []T{}, nil
	}
	key.Tags = append(cache.ScopeTags(scope), key.Tags...)

	items, err := cache.Cached(ctx, c, key, load)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// getCached answers a single-entity lookup from c. The key carries the
// scope so a result is only shared between viewers with the same access.
func getCached[T any](ctx context.Context, c *cache.Cache, scope repository.Scope, key cache.Key, load func(context.Context) (T, error)) (T, error) {
	key.Tags = append(cache.ScopeTags(scope), key.Tags...)
	return cache.Cached(ctx, c, key, load)
}

func normalizeQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", ErrSearchQueryRequired
	}
	if len(q) > constants.MaxSearchLength {
		return "", ErrSearchQueryTooLong
	}
	return q, nil
}

func validateDays(days int) error {
	if days < 0 || days > constants.MaxWindowDays {
		return ErrInvalidWindow
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
