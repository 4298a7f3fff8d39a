// internal/catalog/repository_test.go
package catalog

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodyscan-workers/internal/common/logger"
	"bodyscan-workers/internal/models"
)

var archetypeTestColumns = []string{
	"id", "name", "sex_code", "bmi_min", "bmi_max",
	"obesity_category", "muscularity_category", "level", "morphotype_code",
	"morph_values", "limb_masses", "morph_index", "muscle_index",
}

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db, logger.NewTestLogger(t)), mock
}

func archetypeRow(id string, morphJSON, limbJSON string) []driver.Value {
	return []driver.Value{
		id, "Archetype " + id, "masculine", 20.0, 25.0,
		"Normal", "Normal", "Intermediate", "rectangle",
		[]byte(morphJSON), []byte(limbJSON), 0.5, 0.5,
	}
}

func TestArchetypes_DecodesJSONBColumns(t *testing.T) {
	repo, mock := newTestRepository(t)

	rows := sqlmock.NewRows(archetypeTestColumns).
		AddRow(archetypeRow("a1", `{"thin": 0.2, "belly": -0.1}`, `{"arm_mass": 1.05}`)...).
		AddRow(archetypeRow("a2", `{"thin": 0.4}`, `{"leg_mass": 0.95}`)...)

	mock.ExpectQuery(`SELECT(?s).+FROM archetypes(?s).+ORDER BY created_at, id`).
		WillReturnRows(rows)

	got, err := repo.Archetypes(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, models.SexMasculine, got[0].SexCode)
	assert.InDelta(t, 0.2, got[0].MorphValues["thin"], 1e-9)
	assert.InDelta(t, -0.1, got[0].MorphValues["belly"], 1e-9)
	assert.InDelta(t, 1.05, got[0].LimbMasses["arm_mass"], 1e-9)

	assert.Equal(t, "a2", got[1].ID)
	assert.InDelta(t, 0.95, got[1].LimbMasses["leg_mass"], 1e-9)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchetypes_StringEncodedNumbersTolerated(t *testing.T) {
	repo, mock := newTestRepository(t)

	// Legacy rows carry numbers as strings, sometimes the whole map
	// double-encoded as a JSON string.
	rows := sqlmock.NewRows(archetypeTestColumns).
		AddRow(archetypeRow("a1", `{"thin": "0.25"}`, `"{\"arm_mass\": \"1.1\"}"`)...)

	mock.ExpectQuery(`FROM archetypes`).WillReturnRows(rows)

	got, err := repo.Archetypes(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.InDelta(t, 0.25, got[0].MorphValues["thin"], 1e-9)
	assert.InDelta(t, 1.1, got[0].LimbMasses["arm_mass"], 1e-9)
}

func TestArchetypes_MalformedValueDropsKeyOnly(t *testing.T) {
	repo, mock := newTestRepository(t)

	rows := sqlmock.NewRows(archetypeTestColumns).
		AddRow(archetypeRow("a1", `{"thin": 0.2, "belly": "not-a-number", "chest": null}`, `{}`)...)

	mock.ExpectQuery(`FROM archetypes`).WillReturnRows(rows)

	got, err := repo.Archetypes(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.InDelta(t, 0.2, got[0].MorphValues["thin"], 1e-9)
	assert.NotContains(t, got[0].MorphValues, "belly")
	assert.NotContains(t, got[0].MorphValues, "chest")
}

func TestArchetypes_UnparseableMapYieldsEmptyMap(t *testing.T) {
	repo, mock := newTestRepository(t)

	rows := sqlmock.NewRows(archetypeTestColumns).
		AddRow(archetypeRow("a1", `not json at all`, `{}`)...)

	mock.ExpectQuery(`FROM archetypes`).WillReturnRows(rows)

	got, err := repo.Archetypes(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].MorphValues)
}

func TestArchetypesByIDs_UsesArrayParameter(t *testing.T) {
	repo, mock := newTestRepository(t)

	rows := sqlmock.NewRows(archetypeTestColumns).
		AddRow(archetypeRow("a2", `{}`, `{}`)...)

	mock.ExpectQuery(`WHERE id = ANY`).
		WillReturnRows(rows)

	got, err := repo.ArchetypesByIDs(context.Background(), []string{"a2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenderMapping_ScansFullRecord(t *testing.T) {
	repo, mock := newTestRepository(t)

	rows := sqlmock.NewRows([]string{
		"sex_code",
		"bmi_min", "bmi_max", "height_min", "height_max", "weight_min", "weight_max",
		"morph_index_min", "morph_index_max", "muscle_index_min", "muscle_index_max",
		"morph_value_ranges", "limb_mass_ranges",
	}).AddRow(
		"feminine",
		16.0, 42.0, 1.40, 2.00, 40.0, 140.0,
		0.0, 1.0, 0.0, 1.0,
		[]byte(`{"thin": {"min": -1, "max": 1}, "hips": {"min": -1, "max": 1.5}}`),
		[]byte(`{"arm_mass": {"min": 0.6, "max": 1.3}}`),
	)

	mock.ExpectQuery(`FROM gender_mappings`).
		WithArgs("feminine").
		WillReturnRows(rows)

	m, err := repo.GenderMapping(context.Background(), models.SexFeminine)
	require.NoError(t, err)

	assert.Equal(t, models.SexFeminine, m.SexCode)
	assert.Equal(t, models.MappingSourceCatalog, m.Source)
	assert.Equal(t, models.Range{Min: 16.0, Max: 42.0}, m.BMIRange)
	assert.Equal(t, models.Range{Min: -1, Max: 1.5}, m.MorphValueRanges["hips"])
	assert.Equal(t, models.Range{Min: 0.6, Max: 1.3}, m.LimbMassRanges["arm_mass"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenderMapping_MissingRowReturnsError(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`FROM gender_mappings`).
		WithArgs("masculine").
		WillReturnError(assert.AnError)

	_, err := repo.GenderMapping(context.Background(), models.SexMasculine)
	assert.Error(t, err)
}
