// Package importer implements the import reconciliation engine: it diffs an
// incoming pivot document against a project's term catalog and applies the
// minimal, quota-checked set of changes in one transaction.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/termhub/termhub/internal/auth"
	"github.com/termhub/termhub/internal/catalog"
	"github.com/termhub/termhub/internal/formats"
)

// Summary reports what an import changed.
type Summary struct {
	TermsAdded           int
	TermsSkipped         int
	TranslationsUpserted int
}

// DuplicateTermsError rejects a batch containing duplicate or case-conflicting
// terms. Terms lists every offending term name; nothing was persisted.
type DuplicateTermsError struct {
	Terms []string
}

func (e *DuplicateTermsError) Error() string {
	return "duplicate terms: " + strings.Join(e.Terms, ", ")
}

// Engine reconciles imported documents into project catalogs.
type Engine struct {
	store catalog.Store
	gate  auth.Authorizer
}

func New(store catalog.Store, gate auth.Authorizer) *Engine {
	return &Engine{store: store, gate: gate}
}

// Import merges doc into the project's catalog for the given locale code.
//
// The batch is validated before any write: a term appearing twice in the
// batch (case-insensitively), or clashing by case with a catalog term, aborts
// the whole import with a DuplicateTermsError. The gate is consulted once for
// bare permission and again with the real deltas inside the transaction. All
// writes happen in one transaction; any failure discards everything.
func (e *Engine) Import(ctx context.Context, actor auth.Actor, projectID, localeCode string, doc formats.Document) (Summary, error) {
	membership, err := e.gate.Authorize(ctx, actor, projectID, auth.ActionImportTranslation, 0, 0)
	if err != nil {
		return Summary{}, err
	}

	locale, err := e.store.Locales().FindByCode(ctx, localeCode)
	if err != nil {
		return Summary{}, fmt.Errorf("locale %q: %w", localeCode, err)
	}

	var summary Summary
	err = e.store.InTx(ctx, func(tx catalog.Store) error {
		projectLocale, err := tx.ProjectLocales().Find(ctx, membership.ProjectID, locale.Code)
		if err != nil {
			return err
		}

		localeDelta := 0
		if projectLocale == nil {
			localeDelta = 1

			// The locale activation itself consumes plan quota.
			if _, err := e.gate.Authorize(ctx, actor, projectID, auth.ActionImportTranslation, 0, 1); err != nil {
				return err
			}

			created := catalog.ProjectLocale{
				ID:         uuid.New().String(),
				ProjectID:  membership.ProjectID,
				LocaleCode: locale.Code,
				Date:       time.Now().UTC(),
			}
			if err := tx.ProjectLocales().Insert(ctx, created); err != nil {
				return err
			}
			if err := tx.Projects().IncrementLocalesCount(ctx, membership.ProjectID, 1); err != nil {
				return err
			}
			projectLocale = &created
		}

		existing, err := tx.Terms().ListByProject(ctx, membership.ProjectID)
		if err != nil {
			return err
		}

		termsToAdd, err := planTerms(existing, doc.Translations, membership.ProjectID)
		if err != nil {
			return err
		}

		if _, err := e.gate.Authorize(ctx, actor, projectID, auth.ActionImportTranslation, len(termsToAdd), localeDelta); err != nil {
			return err
		}

		if err := tx.Terms().InsertBatch(ctx, termsToAdd); err != nil {
			return err
		}

		translationsToAdd, err := resolveTranslations(append(termsToAdd, existing...), doc.Translations, projectLocale.ID)
		if err != nil {
			slog.Error("import: term resolution failed after duplicate check",
				"project_id", projectID,
				"locale", locale.Code,
				"error", err,
			)
			return err
		}

		if err := tx.Projects().IncrementTermsCount(ctx, membership.ProjectID, len(termsToAdd)); err != nil {
			return err
		}
		if err := tx.Translations().InsertBatch(ctx, translationsToAdd); err != nil {
			return err
		}

		summary = Summary{
			TermsAdded:           len(termsToAdd),
			TermsSkipped:         len(doc.Translations) - len(termsToAdd),
			TranslationsUpserted: len(translationsToAdd),
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// planTerms decides which incoming terms are new. A term whose lowercase form
// was already seen in the batch, or whose lowercase form matches a catalog
// term with different exact casing, is a duplicate; any duplicate aborts the
// whole batch.
func planTerms(existing []catalog.Term, incoming []formats.Translation, projectID string) ([]catalog.Term, error) {
	existingByFold := make(map[string]catalog.Term, len(existing))
	for _, term := range existing {
		existingByFold[strings.ToLower(term.Value)] = term
	}

	var (
		termsToAdd []catalog.Term
		duplicates []string
		seen       = make(map[string]bool, len(incoming))
	)

	for _, item := range incoming {
		fold := strings.ToLower(item.Term)
		if seen[fold] {
			duplicates = append(duplicates, item.Term)
		} else {
			seen[fold] = true
		}

		existingTerm, ok := existingByFold[fold]
		if !ok {
			termsToAdd = append(termsToAdd, catalog.Term{
				ID:        uuid.New().String(),
				ProjectID: projectID,
				Value:     item.Term,
				Date:      time.Now().UTC(),
			})
			continue
		}
		if existingTerm.Value != item.Term {
			duplicates = append(duplicates, existingTerm.Value)
		}
	}

	if len(duplicates) > 0 {
		return nil, &DuplicateTermsError{Terms: duplicates}
	}
	return termsToAdd, nil
}

// resolveTranslations maps every incoming pair to its term by exact value.
// A miss here is an internal invariant violation: planTerms guaranteed every
// incoming term resolves.
func resolveTranslations(allTerms []catalog.Term, incoming []formats.Translation, projectLocaleID string) ([]catalog.Translation, error) {
	byValue := make(map[string]catalog.Term, len(allTerms))
	for _, term := range allTerms {
		byValue[term.Value] = term
	}

	translations := make([]catalog.Translation, 0, len(incoming))
	for _, item := range incoming {
		term, ok := byValue[item.Term]
		if !ok {
			return nil, fmt.Errorf("missing term %q for translation", item.Term)
		}
		translations = append(translations, catalog.Translation{
			ID:              uuid.New().String(),
			TermID:          term.ID,
			ProjectLocaleID: projectLocaleID,
			Value:           item.Value,
			Date:            time.Now().UTC(),
		})
	}
	return translations, nil
}
