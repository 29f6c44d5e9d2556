package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stayonscript/stayonscript/internal/docstore"
)

// probeOrder lists role collections by tier priority. A principal found in
// an earlier collection is never checked against later ones.
var probeOrder = []struct {
	collection string
	tier       Tier
}{
	{CollectionSuperAdmins, TierSuperAdmin},
	{CollectionCompanyAdmins, TierCompanyAdmin},
	{CollectionAdmins, TierAdmin},
	{CollectionUsers, TierUser},
}

// Resolver determines the authoritative role record for a principal by
// probing role collections in tier priority order, consulting the cache
// first and writing hits back to it.
type Resolver struct {
	store  docstore.Store
	cache  *Cache
	logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(store docstore.Store, cache *Cache, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, cache: cache, logger: logger}
}

// Resolve returns the role record for the given principal. The caller must
// have already established that the principal is authenticated. A cache hit
// skips every store probe. Store failures return an error wrapping
// ErrResolution, distinct from the tier-none "no role found" result.
func (r *Resolver) Resolve(ctx context.Context, principalID string) (Record, error) {
	if principalID == "" {
		return Record{}, fmt.Errorf("%w: empty principal id", ErrResolution)
	}

	if record, ok := r.cache.Read(ctx, principalID); ok {
		return record, nil
	}

	for _, probe := range probeOrder {
		doc, err := r.store.Get(ctx, probe.collection, principalID)
		if err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return Record{}, fmt.Errorf("%w: probe %s: %v", ErrResolution, probe.collection, err)
		}
		record := recordFromDocument(principalID, probe.tier, doc)
		r.cache.Write(ctx, record)
		return record, nil
	}

	if r.logger != nil {
		r.logger.Info("principal has no role record", slog.String("principal", principalID))
	}
	return Record{PrincipalID: principalID, Tier: TierNone}, nil
}

func recordFromDocument(principalID string, tier Tier, doc docstore.Document) Record {
	record := Record{
		PrincipalID: principalID,
		Tier:        tier,
		CompanyID:   doc.String("company_id"),
	}
	if perms := doc.Strings("permissions"); len(perms) > 0 {
		record.Permissions = perms
	} else {
		record.Permissions = DefaultPermissions(tier)
	}
	return record
}
