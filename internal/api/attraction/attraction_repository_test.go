package attraction

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

var attractionRowColumns = []string{
	"external_id", "name", "has_coords", "lon", "lat", "address", "categories", "description",
	"wikidata", "wikipedia", "wikipedia_content", "wikimedia", "images", "website",
}

func setupRepositoryTest(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewRepository(pool, testLogger()), pool
}

func TestRepository_FindByExternalIDs(t *testing.T) {
	repo, pool := setupRepositoryTest(t)

	rows := pgxmock.NewRows(attractionRowColumns).
		AddRow(int64(101), "Winter Palace", true, 30.3146, 59.9398, "Palace Square 2", []string{"MUSEUM"},
			"Main residence.", "Q132783", "en:Winter Palace", "", "", []string{"a.jpg"}, "").
		AddRow(int64(102), "Unplaced", false, 0.0, 0.0, "", []string{}, "", "", "", "", "", []string{}, "")
	pool.ExpectQuery(regexp.QuoteMeta("FROM attractions WHERE external_id = ANY($1)")).
		WithArgs([]int64{101, 102, 103}).
		WillReturnRows(rows)

	got, err := repo.FindByExternalIDs(context.Background(), []int64{101, 102, 103})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Winter Palace", got[0].Name)
	require.NotNil(t, got[0].Coordinates)
	assert.Equal(t, types.NewCoordinates(30.3146, 59.9398), *got[0].Coordinates)
	assert.Equal(t, []string{"a.jpg"}, got[0].Images)
	assert.Equal(t, types.ChangeNone, got[0].ChangeKind)
	assert.Nil(t, got[1].Coordinates)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepository_FindByExternalIDs_EmptyMakesNoQuery(t *testing.T) {
	repo, pool := setupRepositoryTest(t)

	got, err := repo.FindByExternalIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepository_FindByExternalID_NotFound(t *testing.T) {
	repo, pool := setupRepositoryTest(t)
	pool.ExpectQuery(regexp.QuoteMeta("FROM attractions WHERE external_id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(attractionRowColumns))

	_, err := repo.FindByExternalID(context.Background(), 7)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepository_FindAll_BuildsFilter(t *testing.T) {
	repo, pool := setupRepositoryTest(t)
	bbox := types.BBox{30.2, 59.9, 30.4, 60.0}

	pool.ExpectQuery(regexp.QuoteMeta(
		"WHERE lon BETWEEN $1 AND $3 AND lat BETWEEN $2 AND $4 AND $5 = ANY(categories) ORDER BY external_id LIMIT $6")).
		WithArgs(30.2, 59.9, 30.4, 60.0, "MUSEUM", 10).
		WillReturnRows(pgxmock.NewRows(attractionRowColumns))

	got, err := repo.FindAll(context.Background(), types.AttractionFilter{BBox: &bbox, Category: "MUSEUM", Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepository_Upsert(t *testing.T) {
	repo, pool := setupRepositoryTest(t)
	a := types.Attraction{
		ExternalID:  101,
		Name:        "Winter Palace",
		Coordinates: coords(30.3146, 59.9398),
		Categories:  []string{"MUSEUM"},
		Description: "Main residence.",
		ChangeKind:  types.ChangeInsert,
	}

	pool.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (external_id) DO UPDATE SET")).
		WithArgs(int64(101), "Winter Palace", pgxmock.AnyArg(), pgxmock.AnyArg(), "", []string{"MUSEUM"},
			"Main residence.", "", "", "", []string{}, "").
		WillReturnRows(pgxmock.NewRows([]string{"inserted"}).AddRow(true))

	inserted, err := repo.Upsert(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepository_Upsert_Error(t *testing.T) {
	repo, pool := setupRepositoryTest(t)
	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO attractions")).
		WithArgs(int64(1), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	inserted, err := repo.Upsert(context.Background(), types.Attraction{ExternalID: 1})
	require.Error(t, err)
	assert.False(t, inserted)
	assert.Contains(t, err.Error(), "failed to upsert attraction 1")
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepository_UpdateWikipediaContent(t *testing.T) {
	repo, pool := setupRepositoryTest(t)
	pool.ExpectExec(regexp.QuoteMeta("UPDATE attractions SET wikipedia_content = $2")).
		WithArgs(int64(101), "Article text").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec(regexp.QuoteMeta("UPDATE attractions SET wikipedia_content = $2")).
		WithArgs(int64(999), "Article text").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.UpdateWikipediaContent(context.Background(), 101, "Article text"))
	assert.True(t, errors.Is(repo.UpdateWikipediaContent(context.Background(), 999, "Article text"), ErrNotFound))
	assert.NoError(t, pool.ExpectationsWereMet())
}
