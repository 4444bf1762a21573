package auth

import (
	"context"
	"fmt"
)

// Roles, weakest first.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

var roleRank = map[string]int{RoleViewer: 0, RoleEditor: 1, RoleAdmin: 2}

// minRole is the weakest role allowed to perform each action.
var minRole = map[Action]string{
	ActionViewTranslation:   RoleViewer,
	ActionExportTranslation: RoleViewer,
	ActionImportTranslation: RoleEditor,
	ActionAddTranslation:    RoleEditor,
	ActionDeleteTranslation: RoleEditor,
}

// Plan holds the limits of a project's subscription plan. A non-positive
// limit means unlimited.
type Plan struct {
	ID         string
	MaxTerms   int
	MaxLocales int
}

// Usage is a project's current counter state plus its plan id.
type Usage struct {
	PlanID       string
	TermsCount   int
	LocalesCount int
}

// MembershipSource resolves an actor's role on a project. Implementations
// return ErrForbidden when the actor has no membership at all.
type MembershipSource interface {
	Membership(ctx context.Context, actorID, projectID string) (Membership, error)
}

// UsageSource reads project counters and plan limits.
type UsageSource interface {
	Usage(ctx context.Context, projectID string) (Usage, error)
	Plan(ctx context.Context, planID string) (Plan, error)
}

// PlanGate is a minimal store-backed implementation of the gate contract:
// role check first, then plan-limit arithmetic over the supplied deltas.
type PlanGate struct {
	memberships MembershipSource
	usage       UsageSource
}

func NewPlanGate(memberships MembershipSource, usage UsageSource) *PlanGate {
	return &PlanGate{memberships: memberships, usage: usage}
}

func (g *PlanGate) Authorize(ctx context.Context, actor Actor, projectID string, action Action, termDelta, localeDelta int) (Membership, error) {
	membership, err := g.memberships.Membership(ctx, actor.ID, projectID)
	if err != nil {
		return Membership{}, err
	}

	required, ok := minRole[action]
	if !ok {
		return Membership{}, fmt.Errorf("%s: %w", action, ErrForbidden)
	}
	if roleRank[membership.Role] < roleRank[required] {
		return Membership{}, fmt.Errorf("%s requires role %s: %w", action, required, ErrForbidden)
	}

	if termDelta == 0 && localeDelta == 0 {
		return membership, nil
	}

	usage, err := g.usage.Usage(ctx, projectID)
	if err != nil {
		return Membership{}, err
	}
	plan, err := g.usage.Plan(ctx, usage.PlanID)
	if err != nil {
		return Membership{}, err
	}

	if plan.MaxTerms > 0 && usage.TermsCount+termDelta > plan.MaxTerms {
		return Membership{}, fmt.Errorf("plan allows %d terms: %w", plan.MaxTerms, ErrQuotaExceeded)
	}
	if plan.MaxLocales > 0 && usage.LocalesCount+localeDelta > plan.MaxLocales {
		return Membership{}, fmt.Errorf("plan allows %d locales: %w", plan.MaxLocales, ErrQuotaExceeded)
	}

	return membership, nil
}
