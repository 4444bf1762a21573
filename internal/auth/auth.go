// Package auth defines the authorization and quota gate consumed by the
// import and export paths. The gate is authoritative for plan limits: callers
// supply term/locale deltas and trust the verdict, they never re-derive limit
// arithmetic themselves.
package auth

import (
	"context"
	"errors"
)

// Action names an operation an actor wants to perform on a project.
type Action string

const (
	ActionImportTranslation Action = "ImportTranslation"
	ActionExportTranslation Action = "ExportTranslation"
	ActionViewTranslation   Action = "ViewTranslation"
	ActionAddTranslation    Action = "AddTranslation"
	ActionDeleteTranslation Action = "DeleteTranslation"
)

// ActorKind distinguishes interactive users from API clients.
type ActorKind string

const (
	ActorUser   ActorKind = "user"
	ActorClient ActorKind = "client"
)

// Actor is the authenticated principal of a request.
type Actor struct {
	ID   string
	Kind ActorKind
}

// Membership is the gate's positive verdict: the actor's role on the project.
type Membership struct {
	ProjectID string
	ActorID   string
	Role      string
}

// ErrForbidden reports that the actor lacks the role required for an action.
var ErrForbidden = errors.New("forbidden")

// ErrQuotaExceeded reports that the project's plan limit on total terms or
// total locales would be exceeded by the requested deltas.
var ErrQuotaExceeded = errors.New("quota exceeded")

// Authorizer is the gate contract. termDelta and localeDelta describe how
// many new terms/locales the action would add; both zero asks for bare
// permission.
type Authorizer interface {
	Authorize(ctx context.Context, actor Actor, projectID string, action Action, termDelta, localeDelta int) (Membership, error)
}

// ClientAuthenticator resolves client-credential pairs into actors; used by
// the multi-export endpoint where each entry carries its own credentials.
type ClientAuthenticator interface {
	AuthenticateClient(ctx context.Context, clientID, clientSecret string) (Actor, error)
}
