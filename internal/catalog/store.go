package catalog

import (
	"context"
	"errors"
)

// ErrNotFound reports a lookup for a record that does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict reports a write rejected by the store's uniqueness guarantees,
// e.g. two concurrent imports both inserting the same term.
var ErrConflict = errors.New("conflict")

// ProjectRepository reads projects and maintains their counters.
type ProjectRepository interface {
	Find(ctx context.Context, id string) (Project, error)
	IncrementTermsCount(ctx context.Context, id string, delta int) error
	IncrementLocalesCount(ctx context.Context, id string, delta int) error
}

// LocaleRepository reads the global locale table.
type LocaleRepository interface {
	FindByCode(ctx context.Context, code string) (Locale, error)
	List(ctx context.Context) ([]Locale, error)
}

// ProjectLocaleRepository manages locale activation records.
// Find returns (nil, nil) when the project has not activated the locale:
// absence is a normal outcome on the import and export paths, not an error.
type ProjectLocaleRepository interface {
	Find(ctx context.Context, projectID, localeCode string) (*ProjectLocale, error)
	ListByProject(ctx context.Context, projectID string) ([]ProjectLocale, error)
	Insert(ctx context.Context, pl ProjectLocale) error
	Delete(ctx context.Context, id string) error
}

// TermRepository manages project terms and the export join.
type TermRepository interface {
	ListByProject(ctx context.Context, projectID string) ([]Term, error)
	InsertBatch(ctx context.Context, terms []Term) error

	// ListWithValues returns every term of the project, each with all
	// translation values joined for the given project locale, ordered by
	// term value ascending. With onlyTranslated set, null and empty
	// translation rows are dropped before aggregation, which also drops
	// terms left with no rows.
	ListWithValues(ctx context.Context, projectID, projectLocaleID string, onlyTranslated bool) ([]TermValues, error)
}

// TranslationRepository manages translation rows. Imports only ever insert;
// see the export ambiguity rules in TermRepository.ListWithValues.
type TranslationRepository interface {
	InsertBatch(ctx context.Context, translations []Translation) error
	ListByProjectLocale(ctx context.Context, projectLocaleID string) ([]Translation, error)
	DeleteByProjectLocale(ctx context.Context, projectLocaleID string) error
}

// Store bundles the repositories with a transaction runner. InTx calls fn
// with a Store whose repositories share one transaction; returning an error
// rolls everything back.
type Store interface {
	Projects() ProjectRepository
	Locales() LocaleRepository
	ProjectLocales() ProjectLocaleRepository
	Terms() TermRepository
	Translations() TranslationRepository

	InTx(ctx context.Context, fn func(Store) error) error
}
