package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/termhub/termhub/internal/catalog"
)

type projectRepo struct{ db DBTX }

func (r *projectRepo) Find(ctx context.Context, id string) (catalog.Project, error) {
	var p catalog.Project
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, plan_id, terms_count, locales_count, date
		FROM projects WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.PlanID, &p.TermsCount, &p.LocalesCount, &p.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Project{}, fmt.Errorf("project %s: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Project{}, err
	}
	return p, nil
}

func (r *projectRepo) IncrementTermsCount(ctx context.Context, id string, delta int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET terms_count = terms_count + $2 WHERE id = $1`, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, catalog.ErrNotFound)
	}
	return nil
}

func (r *projectRepo) IncrementLocalesCount(ctx context.Context, id string, delta int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET locales_count = locales_count + $2 WHERE id = $1`, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, catalog.ErrNotFound)
	}
	return nil
}

type localeRepo struct{ db DBTX }

func (r *localeRepo) FindByCode(ctx context.Context, code string) (catalog.Locale, error) {
	var l catalog.Locale
	err := r.db.QueryRow(ctx,
		`SELECT code, language, region FROM locales WHERE code = $1`, code).
		Scan(&l.Code, &l.Language, &l.Region)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Locale{}, fmt.Errorf("locale %s: %w", code, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Locale{}, err
	}
	return l, nil
}

func (r *localeRepo) List(ctx context.Context) ([]catalog.Locale, error) {
	rows, err := r.db.Query(ctx,
		`SELECT code, language, region FROM locales ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locales []catalog.Locale
	for rows.Next() {
		var l catalog.Locale
		if err := rows.Scan(&l.Code, &l.Language, &l.Region); err != nil {
			return nil, err
		}
		locales = append(locales, l)
	}
	return locales, rows.Err()
}

type projectLocaleRepo struct{ db DBTX }

func (r *projectLocaleRepo) Find(ctx context.Context, projectID, localeCode string) (*catalog.ProjectLocale, error) {
	var pl catalog.ProjectLocale
	err := r.db.QueryRow(ctx, `
		SELECT id, project_id, locale_code, date
		FROM project_locales WHERE project_id = $1 AND locale_code = $2`,
		projectID, localeCode).
		Scan(&pl.ID, &pl.ProjectID, &pl.LocaleCode, &pl.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pl, nil
}

func (r *projectLocaleRepo) ListByProject(ctx context.Context, projectID string) ([]catalog.ProjectLocale, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, locale_code, date
		FROM project_locales WHERE project_id = $1 ORDER BY locale_code`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locales []catalog.ProjectLocale
	for rows.Next() {
		var pl catalog.ProjectLocale
		if err := rows.Scan(&pl.ID, &pl.ProjectID, &pl.LocaleCode, &pl.Date); err != nil {
			return nil, err
		}
		locales = append(locales, pl)
	}
	return locales, rows.Err()
}

func (r *projectLocaleRepo) Insert(ctx context.Context, pl catalog.ProjectLocale) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO project_locales (id, project_id, locale_code, date)
		VALUES ($1, $2, $3, $4)`,
		pl.ID, pl.ProjectID, pl.LocaleCode, pl.Date)
	return mapError(err)
}

func (r *projectLocaleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM project_locales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project locale %s: %w", id, catalog.ErrNotFound)
	}
	return nil
}

type termRepo struct{ db DBTX }

func (r *termRepo) ListByProject(ctx context.Context, projectID string) ([]catalog.Term, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, project_id, value, date FROM terms WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []catalog.Term
	for rows.Next() {
		var t catalog.Term
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Value, &t.Date); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

func (r *termRepo) InsertBatch(ctx context.Context, terms []catalog.Term) error {
	for _, t := range terms {
		_, err := r.db.Exec(ctx,
			`INSERT INTO terms (id, project_id, value, date) VALUES ($1, $2, $3, $4)`,
			t.ID, t.ProjectID, t.Value, t.Date)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *termRepo) ListWithValues(ctx context.Context, projectID, projectLocaleID string, onlyTranslated bool) ([]catalog.TermValues, error) {
	// Left join so untranslated terms still export (as empty). The filter
	// variant drops null/empty rows before aggregation, which also drops
	// terms left with no rows at all.
	query := `
		SELECT t.value, array_remove(array_agg(tr.value), NULL)
		FROM terms t
		LEFT JOIN translations tr
			ON tr.term_id = t.id AND tr.project_locale_id = $2
		WHERE t.project_id = $1
		GROUP BY t.id, t.value
		ORDER BY t.value ASC`
	if onlyTranslated {
		query = `
		SELECT t.value, array_agg(tr.value)
		FROM terms t
		JOIN translations tr
			ON tr.term_id = t.id AND tr.project_locale_id = $2 AND tr.value <> ''
		WHERE t.project_id = $1
		GROUP BY t.id, t.value
		ORDER BY t.value ASC`
	}

	rows, err := r.db.Query(ctx, query, projectID, projectLocaleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.TermValues
	for rows.Next() {
		var tv catalog.TermValues
		if err := rows.Scan(&tv.Term, &tv.Values); err != nil {
			return nil, err
		}
		out = append(out, tv)
	}
	return out, rows.Err()
}

type translationRepo struct{ db DBTX }

func (r *translationRepo) InsertBatch(ctx context.Context, translations []catalog.Translation) error {
	for _, t := range translations {
		_, err := r.db.Exec(ctx, `
			INSERT INTO translations (id, term_id, project_locale_id, value, date)
			VALUES ($1, $2, $3, $4, $5)`,
			t.ID, t.TermID, t.ProjectLocaleID, t.Value, t.Date)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *translationRepo) ListByProjectLocale(ctx context.Context, projectLocaleID string) ([]catalog.Translation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, term_id, project_locale_id, value, date
		FROM translations WHERE project_locale_id = $1`, projectLocaleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var translations []catalog.Translation
	for rows.Next() {
		var t catalog.Translation
		if err := rows.Scan(&t.ID, &t.TermID, &t.ProjectLocaleID, &t.Value, &t.Date); err != nil {
			return nil, err
		}
		translations = append(translations, t)
	}
	return translations, rows.Err()
}

func (r *translationRepo) DeleteByProjectLocale(ctx context.Context, projectLocaleID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM translations WHERE project_locale_id = $1`, projectLocaleID)
	return err
}
