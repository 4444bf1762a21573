// Package catalog defines the project term catalog: plain data structs for
// the persisted entities and the repository contracts the business logic is
// written against. The reconciliation engine and export aggregator depend
// only on these interfaces, so they can run against Postgres in production
// and an in-memory fake in tests.
package catalog

import "time"

// Project is a container for terms and activated locales. TermsCount and
// LocalesCount are denormalized counters maintained by the import and
// locale-lifecycle paths.
type Project struct {
	ID           string
	Name         string
	Description  string
	PlanID       string
	TermsCount   int
	LocalesCount int
	Date         time.Time
}

// Locale is a known language/region record, independent of any project.
type Locale struct {
	Code     string
	Language string
	Region   string
}

// ProjectLocale activates a locale for a project. Its presence is what makes
// a locale importable/exportable for that project.
type ProjectLocale struct {
	ID         string
	ProjectID  string
	LocaleCode string
	Date       time.Time
}

// Term is a project-scoped translatable key. Its value is unique per project
// under case-insensitive comparison; two terms differing only by case are a
// conflict, not two terms.
type Term struct {
	ID        string
	ProjectID string
	Value     string
	Date      time.Time
}

// Translation ties a value to one (term, project locale) pair. The catalog
// may hold zero, one, or several rows per pair; exactly one is the expected
// steady state and any other count is treated as ambiguous by exports.
type Translation struct {
	ID              string
	TermID          string
	ProjectLocaleID string
	Value           string
	Date            time.Time
}

// TermValues is one export row: a term and every translation value joined
// for the requested project locale.
type TermValues struct {
	Term   string
	Values []string
}
