// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadShippedRegistry(t *testing.T) *ActivityRegistry {
	t.Helper()
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	return reg
}

func TestLoadRegistry(t *testing.T) {
	reg := loadShippedRegistry(t)

	assert.NotEmpty(t, reg.Version)
	require.Len(t, reg.Activities, 3)

	ids := make([]string, 0, len(reg.Activities))
	for _, a := range reg.Activities {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{
		"bodyscan.scan.validate-scan-data",
		"bodyscan.matching.match-archetypes",
		"bodyscan.matching.build-envelope",
	}, ids)
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestFindByTaskType(t *testing.T) {
	reg := loadShippedRegistry(t)

	activity, ok := reg.FindByTaskType("match-archetypes")
	require.True(t, ok)
	assert.Equal(t, "bodyscan.matching.match-archetypes", activity.ID)
	assert.Contains(t, activity.ErrorCodes, "MAPPING_UNAVAILABLE")

	_, ok = reg.FindByTaskType("does-not-exist")
	assert.False(t, ok)
}

func TestValidateSchemas(t *testing.T) {
	reg := loadShippedRegistry(t)
	assert.NoError(t, reg.ValidateSchemas())
}

func TestValidateSchemas_InvalidSchema(t *testing.T) {
	reg := &ActivityRegistry{
		Activities: []Activity{{
			ID: "broken",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": "should-be-an-array",
			},
		}},
	}
	assert.Error(t, reg.ValidateSchemas())
}

func TestValidateDocument(t *testing.T) {
	reg := loadShippedRegistry(t)
	activity, ok := reg.FindByTaskType("build-envelope")
	require.True(t, ok)

	issues, err := ValidateDocument(activity.InputSchema, map[string]interface{}{
		"sex_code":      "masculine",
		"archetype_ids": []interface{}{"arch-1", "arch-2"},
	})
	require.NoError(t, err)
	assert.Empty(t, issues)

	issues, err = ValidateDocument(activity.InputSchema, map[string]interface{}{
		"sex_code":      "unknown",
		"archetype_ids": []interface{}{},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, issues)
}

func TestValidateDocument_EmptySchema(t *testing.T) {
	issues, err := ValidateDocument(nil, map[string]interface{}{"anything": true})
	require.NoError(t, err)
	assert.Nil(t, issues)
}
