package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultGrantTTL bounds how long an impersonation grant stays usable
// without being explicitly renewed.
const DefaultGrantTTL = time.Hour

// Grant is an explicit, expiring permission for a super-admin to act within
// a lower tier's view. It replaces an ambient on/off flag: who, which tier,
// which company and until when are all recorded and auditable.
type Grant struct {
	ID          string    `json:"id"`
	PrincipalID string    `json:"principal_id"`
	Tier        Tier      `json:"tier"`
	CompanyID   string    `json:"company_id,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the grant's lifetime has passed.
func (g Grant) Expired(now time.Time) bool {
	return !g.ExpiresAt.After(now)
}

// GrantStore keeps impersonation grants in Redis with server-side expiry.
// Anything unreadable counts as no grant: impersonation fails closed.
type GrantStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewGrantStore constructs a GrantStore. A non-positive ttl falls back to
// DefaultGrantTTL.
func NewGrantStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *GrantStore {
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	return &GrantStore{client: client, ttl: ttl, logger: logger, now: time.Now}
}

func (s *GrantStore) key(principalID string) string {
	return "impersonation:" + principalID
}

// Start creates a grant for the principal, replacing any prior one. Only the
// handler layer calls this, after verifying the caller is a super-admin
// holding the impersonate permission.
func (s *GrantStore) Start(ctx context.Context, principalID string, tier Tier, companyID string) (Grant, error) {
	if tier != TierAdmin && tier != TierCompanyAdmin {
		return Grant{}, fmt.Errorf("access: cannot impersonate tier %q", tier)
	}
	grant := Grant{
		ID:          uuid.NewString(),
		PrincipalID: principalID,
		Tier:        tier,
		CompanyID:   companyID,
		ExpiresAt:   s.now().Add(s.ttl),
	}
	data, err := json.Marshal(grant)
	if err != nil {
		return Grant{}, err
	}
	if err := s.client.Set(ctx, s.key(principalID), data, s.ttl).Err(); err != nil {
		return Grant{}, fmt.Errorf("access: store grant: %w", err)
	}
	return grant, nil
}

// Active returns the principal's grant when one exists and has not expired.
// Missing, malformed or errored reads all report no grant.
func (s *GrantStore) Active(ctx context.Context, principalID string) (Grant, bool) {
	if s == nil || s.client == nil || principalID == "" {
		return Grant{}, false
	}
	raw, err := s.client.Get(ctx, s.key(principalID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("grant read", slog.Any("error", err))
		}
		return Grant{}, false
	}
	var grant Grant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return Grant{}, false
	}
	if grant.PrincipalID != principalID || grant.Expired(s.now()) {
		return Grant{}, false
	}
	return grant, true
}

// Stop removes the principal's grant. Idempotent.
func (s *GrantStore) Stop(ctx context.Context, principalID string) error {
	if s == nil || s.client == nil || principalID == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(principalID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("access: drop grant: %w", err)
	}
	return nil
}
