package catalog

import (
	"context"
	"log/slog"
	"sync"

	"refcat/internal/logging"
)

// Registry accumulates identifier-to-name mappings observed during
// resolution and persists them for external reporting.
type Registry interface {
	Record(oid, shortName string)
	Save() error
}

// Resolution is the tagged outcome of a single passport lookup. Exactly one
// of Passport and Err is meaningful.
type Resolution struct {
	OID      string
	Passport Passport
	Err      error
}

// Resolver resolves identifiers to their latest-version passports and caches
// successes for its own lifetime. Failed identifiers never occupy a cache
// slot and are re-attempted on every call.
type Resolver struct {
	client   *Client
	registry Registry
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]Passport
}

// NewResolver constructs a resolver with an empty cache.
func NewResolver(client *Client, registry Registry, logger *slog.Logger) *Resolver {
	return &Resolver{
		client:   client,
		registry: registry,
		logger:   logging.NewComponentLogger(logger, "resolver"),
		cache:    make(map[string]Passport),
	}
}

// ResolveOne performs a remote lookup for a single identifier. Transport,
// status, and parse failures are folded into the returned Resolution; the
// method never returns an error to the caller.
func (r *Resolver) ResolveOne(ctx context.Context, oid string) Resolution {
	passport, err := r.client.FetchPassport(ctx, oid)
	if err != nil {
		return Resolution{OID: oid, Err: err}
	}
	if r.registry != nil {
		r.registry.Record(oid, passport.ShortName)
	}
	return Resolution{OID: oid, Passport: passport}
}

// ResolveAll resolves every identifier in oids, consulting the cache first.
// Uncached identifiers are looked up concurrently; each lookup's outcome is
// collected independently, so one failure never affects the others. Successes
// populate the cache and the registry; failures are logged and omitted from
// the returned map, and callers must check membership before use. The
// registry is saved after every call that issued at least one lookup.
func (r *Resolver) ResolveAll(ctx context.Context, oids []string) map[string]Passport {
	r.mu.Lock()
	uncached := make([]string, 0, len(oids))
	seen := make(map[string]struct{}, len(oids))
	for _, oid := range oids {
		if _, dup := seen[oid]; dup {
			continue
		}
		seen[oid] = struct{}{}
		if _, ok := r.cache[oid]; !ok {
			uncached = append(uncached, oid)
		}
	}
	r.mu.Unlock()

	if len(uncached) > 0 {
		results := make(chan Resolution, len(uncached))
		var wg sync.WaitGroup
		for _, oid := range uncached {
			wg.Add(1)
			go func(oid string) {
				defer wg.Done()
				results <- r.ResolveOne(ctx, oid)
			}(oid)
		}
		wg.Wait()
		close(results)

		r.mu.Lock()
		for res := range results {
			if res.Err != nil {
				r.logger.Warn("passport lookup failed",
					logging.String(logging.FieldOID, res.OID),
					logging.Error(res.Err))
				continue
			}
			r.cache[res.OID] = res.Passport
			r.logger.Debug("passport resolved",
				logging.String(logging.FieldOID, res.OID),
				logging.String(logging.FieldVersion, res.Passport.Version))
		}
		r.mu.Unlock()

		if r.registry != nil {
			if err := r.registry.Save(); err != nil {
				r.logger.Warn("persist registry", logging.Error(err))
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	resolved := make(map[string]Passport, len(oids))
	for _, oid := range oids {
		if passport, ok := r.cache[oid]; ok {
			resolved[oid] = passport
		}
	}
	return resolved
}
