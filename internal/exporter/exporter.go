// Package exporter composes catalog queries across one or more projects into
// a single pivot document ready for encoding.
package exporter

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/termhub/termhub/internal/auth"
	"github.com/termhub/termhub/internal/catalog"
	"github.com/termhub/termhub/internal/formats"
)

// Query carries the export parameters shared by every sub-export.
type Query struct {
	Locale string
	// OnlyTranslated drops terms whose resolved value is empty (wire
	// parameter filter=1).
	OnlyTranslated bool
}

// ClientProject is one multi-export entry, authorized via its own client
// credentials rather than the request session.
type ClientProject struct {
	ProjectID    string
	ClientID     string
	ClientSecret string
}

// Aggregator runs per-project sub-exports concurrently and concatenates
// their results.
type Aggregator struct {
	store   catalog.Store
	gate    auth.Authorizer
	clients auth.ClientAuthenticator
}

func New(store catalog.Store, gate auth.Authorizer, clients auth.ClientAuthenticator) *Aggregator {
	return &Aggregator{store: store, gate: gate, clients: clients}
}

// Export composes the catalogs of the given projects for one locale. With a
// single project id, a locale the project never activated is a not-found
// error; with several ids, such projects silently contribute nothing. Any
// authorization failure aborts the whole export.
func (a *Aggregator) Export(ctx context.Context, actor auth.Actor, projectIDs []string, q Query) (formats.Document, error) {
	requireLocale := len(projectIDs) == 1

	parts := make([][]formats.Translation, len(projectIDs))
	g, ctx := errgroup.WithContext(ctx)
	for i, projectID := range projectIDs {
		g.Go(func() error {
			translations, err := a.subExport(ctx, actor, projectID, q, requireLocale)
			if err != nil {
				return err
			}
			parts[i] = translations
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return formats.Document{}, err
	}

	return concat(q.Locale, parts), nil
}

// ExportClients is the multi-export variant: every entry resolves its own
// actor from client credentials. A missing project locale never fails the
// aggregate here, regardless of entry count.
func (a *Aggregator) ExportClients(ctx context.Context, entries []ClientProject, q Query) (formats.Document, error) {
	parts := make([][]formats.Translation, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		g.Go(func() error {
			actor, err := a.clients.AuthenticateClient(ctx, entry.ClientID, entry.ClientSecret)
			if err != nil {
				return err
			}
			translations, err := a.subExport(ctx, actor, entry.ProjectID, q, false)
			if err != nil {
				return err
			}
			parts[i] = translations
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return formats.Document{}, err
	}

	return concat(q.Locale, parts), nil
}

// subExport authorizes and reads one project's terms for the locale. The
// exported value of a term is its single joined translation; zero or several
// joined rows resolve to the empty string, preserving the historical
// ambiguity policy callers depend on.
func (a *Aggregator) subExport(ctx context.Context, actor auth.Actor, projectID string, q Query, requireLocale bool) ([]formats.Translation, error) {
	membership, err := a.gate.Authorize(ctx, actor, projectID, auth.ActionExportTranslation, 0, 0)
	if err != nil {
		return nil, err
	}

	projectLocale, err := a.store.ProjectLocales().Find(ctx, membership.ProjectID, q.Locale)
	if err != nil {
		return nil, err
	}
	if projectLocale == nil {
		if requireLocale {
			return nil, fmt.Errorf("unknown locale code: %w", catalog.ErrNotFound)
		}
		return nil, nil
	}

	rows, err := a.store.Terms().ListWithValues(ctx, membership.ProjectID, projectLocale.ID, q.OnlyTranslated)
	if err != nil {
		return nil, err
	}

	translations := make([]formats.Translation, 0, len(rows))
	for _, row := range rows {
		value := ""
		if len(row.Values) == 1 {
			value = row.Values[0]
		}
		translations = append(translations, formats.Translation{Term: row.Term, Value: value})
	}
	return translations, nil
}

// concat joins sub-export results in request order without deduplication.
func concat(locale string, parts [][]formats.Translation) formats.Document {
	doc := formats.Document{Locale: locale}
	for _, part := range parts {
		doc.Translations = append(doc.Translations, part...)
	}
	return doc
}
