package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/contextual-news/internal/domain"
	"github.com/jonesrussell/contextual-news/internal/geo"
	"github.com/jonesrussell/contextual-news/internal/logger"
	"github.com/jonesrussell/contextual-news/internal/storage"
)

var articleCols = []string{
	"id", "title", "description", "url", "publication_date",
	"source_name", "category", "relevance_score", "latitude", "longitude",
}

func articleRow(rows *sqlmock.Rows, id string, lat, lon float64) *sqlmock.Rows {
	return rows.AddRow(
		id, "Title "+id, "Description "+id, "https://example.com/"+id,
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		"Example Wire", "{technology}", 0.8, lat, lon,
	)
}

func TestResolveMany_PreservesOrderDropsMissing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	// articleB was deleted from the store; only A and C resolve.
	rows := sqlmock.NewRows(articleCols)
	articleRow(rows, "articleC", 2, 2)
	articleRow(rows, "articleA", 1, 1)
	mock.ExpectQuery("SELECT .+ FROM articles WHERE id = ANY").
		WillReturnRows(rows)

	store := storage.NewArticleStore(db, logger.NewNop())
	resolved, err := store.ResolveMany(context.Background(), []string{"articleA", "articleB", "articleC"})

	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "articleA", resolved[0].ID)
	assert.Equal(t, "articleC", resolved[1].ID)
	assert.Equal(t, []string{"technology"}, resolved[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveMany_EmptyInput(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := storage.NewArticleStore(db, logger.NewNop())
	resolved, err := store.ResolveMany(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, resolved)
	// No query should have been issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchByScore(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(articleCols)
	articleRow(rows, "top", 0, 0)
	mock.ExpectQuery("WHERE relevance_score >= .+ ORDER BY relevance_score DESC").
		WithArgs(0.7, 5).
		WillReturnRows(rows)

	store := storage.NewArticleStore(db, logger.NewNop())
	articles, err := store.FetchByScore(context.Background(), 0.7, 5)

	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "top", articles[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchNearby_FiltersAndSortsByDistance(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(articleCols)
	articleRow(rows, "far", 1.0, 0)     // ~111 km out
	articleRow(rows, "near", 0.01, 0)   // ~1 km out
	articleRow(rows, "nearer", 0.001, 0)
	mock.ExpectQuery("SELECT .+ FROM articles").WillReturnRows(rows)

	store := storage.NewArticleStore(db, logger.NewNop())
	articles, err := store.FetchNearby(context.Background(), geo.Point{}, 10, 5)

	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "nearer", articles[0].ID)
	assert.Equal(t, "near", articles[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_SkipsEmptyIDs(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM articles").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO articles").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := storage.NewArticleStore(db, logger.NewNop())
	inserted, err := store.ReplaceAll(context.Background(), []domain.Article{
		{ID: "", Title: "no id"},
		{ID: "a1", Title: "kept", PublicationDate: time.Now()},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_RollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM articles").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO articles").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	store := storage.NewArticleStore(db, logger.NewNop())
	_, err = store.ReplaceAll(context.Background(), []domain.Article{{ID: "a1"}})

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
