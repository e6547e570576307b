package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icetimehq/icetime-api/internal/models"
)

func TestRinkRepositoryFindByName(t *testing.T) {
	db, mock, cleanup := newIceTimeRepoMock(t)
	defer cleanup()
	repo := NewRinkRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "location", "website", "latitude", "longitude", "created_at", "updated_at"}).
		AddRow("r1", "Codey Arena", "560 Northfield Ave, West Orange, NJ 07052", nil, 40.7684, -74.2809, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, location, website, latitude, longitude, created_at, updated_at FROM rinks WHERE name = $1")).
		WithArgs("Codey Arena").
		WillReturnRows(rows)

	rink, err := repo.FindByName(context.Background(), "Codey Arena")
	require.NoError(t, err)
	require.NotNil(t, rink)
	assert.Equal(t, "r1", rink.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRinkRepositoryFindByNameMissingReturnsNil(t *testing.T) {
	db, mock, cleanup := newIceTimeRepoMock(t)
	defer cleanup()
	repo := NewRinkRepository(db)

	mock.ExpectQuery("SELECT id, name, location").
		WithArgs("Ghost Rink").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rink, err := repo.FindByName(context.Background(), "Ghost Rink")
	require.NoError(t, err)
	assert.Nil(t, rink)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRinkRepositoryUpsertKeepsExistingRow(t *testing.T) {
	db, mock, cleanup := newIceTimeRepoMock(t)
	defer cleanup()
	repo := NewRinkRepository(db)

	mock.ExpectExec("INSERT INTO rinks").
		WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"id", "name", "location", "website", "latitude", "longitude", "created_at", "updated_at"}).
		AddRow("existing-id", "Union Sports Arena", "2441 US-22, Union, NJ 07083", nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, name, location").
		WithArgs("Union Sports Arena").
		WillReturnRows(rows)

	stored, err := repo.Upsert(context.Background(), &models.Rink{
		Name:     "Union Sports Arena",
		Location: "2441 US-22, Union, NJ 07083",
	})
	require.NoError(t, err)
	assert.Equal(t, "existing-id", stored.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
