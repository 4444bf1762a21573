package postgres

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/termhub/termhub/internal/auth"
	"github.com/termhub/termhub/internal/catalog"
)

// AuthSource reads memberships, plan usage and client credentials from the
// catalog tables. It backs auth.PlanGate and the multi-export credential
// check.
type AuthSource struct {
	pool *pgxpool.Pool
}

func NewAuthSource(pool *pgxpool.Pool) *AuthSource {
	return &AuthSource{pool: pool}
}

var _ auth.MembershipSource = (*AuthSource)(nil)
var _ auth.UsageSource = (*AuthSource)(nil)
var _ auth.ClientAuthenticator = (*AuthSource)(nil)

// Membership looks the actor up among the project's users, then among its
// API clients. No row in either table means no access at all.
func (s *AuthSource) Membership(ctx context.Context, actorID, projectID string) (auth.Membership, error) {
	var role string
	err := s.pool.QueryRow(ctx,
		`SELECT role FROM project_users WHERE project_id = $1 AND user_id = $2`,
		projectID, actorID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		err = s.pool.QueryRow(ctx,
			`SELECT role FROM project_clients WHERE project_id = $1 AND id = $2`,
			projectID, actorID).Scan(&role)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Membership{}, fmt.Errorf("actor %s on project %s: %w", actorID, projectID, auth.ErrForbidden)
	}
	if err != nil {
		return auth.Membership{}, err
	}
	return auth.Membership{ProjectID: projectID, ActorID: actorID, Role: role}, nil
}

func (s *AuthSource) Usage(ctx context.Context, projectID string) (auth.Usage, error) {
	var u auth.Usage
	err := s.pool.QueryRow(ctx,
		`SELECT plan_id, terms_count, locales_count FROM projects WHERE id = $1`,
		projectID).Scan(&u.PlanID, &u.TermsCount, &u.LocalesCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Usage{}, fmt.Errorf("project %s: %w", projectID, catalog.ErrNotFound)
	}
	if err != nil {
		return auth.Usage{}, err
	}
	return u, nil
}

func (s *AuthSource) Plan(ctx context.Context, planID string) (auth.Plan, error) {
	var p auth.Plan
	err := s.pool.QueryRow(ctx,
		`SELECT id, max_terms, max_locales FROM plans WHERE id = $1`,
		planID).Scan(&p.ID, &p.MaxTerms, &p.MaxLocales)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Plan{}, fmt.Errorf("plan %s: %w", planID, catalog.ErrNotFound)
	}
	if err != nil {
		return auth.Plan{}, err
	}
	return p, nil
}

// AuthenticateClient verifies an API client's credentials. The stored secret
// is compared in constant time; a wrong secret and an unknown client id are
// indistinguishable to the caller.
func (s *AuthSource) AuthenticateClient(ctx context.Context, clientID, clientSecret string) (auth.Actor, error) {
	var secret string
	err := s.pool.QueryRow(ctx,
		`SELECT secret FROM project_clients WHERE id = $1`, clientID).Scan(&secret)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Actor{}, fmt.Errorf("client credentials: %w", auth.ErrForbidden)
	}
	if err != nil {
		return auth.Actor{}, err
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(clientSecret)) != 1 {
		return auth.Actor{}, fmt.Errorf("client credentials: %w", auth.ErrForbidden)
	}
	return auth.Actor{ID: clientID, Kind: auth.ActorClient}, nil
}
