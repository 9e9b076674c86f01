package models

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// Renaming a category rewrites descendant paths with a character offset.
// Postgres substr counts characters while Go len counts bytes, and slugs
// keep multibyte letters, so the two disagree for paths like "déjà-vu".
func TestSaveRewritesDescendantPathsWithMultibyteSlug(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "categories" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "parent_id", "level", "path", "sort_order", "created_at", "updated_at",
		}).AddRow(1, "Déjà Vu", "déjà-vu", nil, 0, "déjà-vu", 0, now, now))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "categories" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// "déjà-vu" is 7 characters (9 bytes); descendants keep everything from
	// character 8 onward.
	mock.ExpectExec(`UPDATE "categories" SET "level"=level \+ \$1,"path"=\$2 \|\| substr\(path, \$3\) WHERE path LIKE \$4`).
		WithArgs(0, "vintage", 8, "déjà-vu/%").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	category := &Category{ID: 1, Name: "Vintage"}
	require.NoError(t, repo.Save(category))
	require.Equal(t, "vintage", category.Path)
	require.NoError(t, mock.ExpectationsWereMet())
}

// An unchanged path skips the descendant rewrite.
func TestSaveWithUnchangedPathSkipsRewrite(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "categories" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "parent_id", "level", "path", "sort_order", "created_at", "updated_at",
		}).AddRow(1, "Apparel", "apparel", nil, 0, "apparel", 0, now, now))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "categories" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	category := &Category{ID: 1, Name: "Apparel", SortOrder: 3}
	require.NoError(t, repo.Save(category))
	require.NoError(t, mock.ExpectationsWereMet())
}
