// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// FindByTaskType returns the activity registered for a Zeebe task type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// ValidateSchemas checks that every declared input/output schema is itself
// a loadable JSON Schema.
func (r *ActivityRegistry) ValidateSchemas() error {
	for _, activity := range r.Activities {
		if err := compileSchema(activity.InputSchema); err != nil {
			return fmt.Errorf("activity %s: invalid inputSchema: %w", activity.ID, err)
		}
		if err := compileSchema(activity.OutputSchema); err != nil {
			return fmt.Errorf("activity %s: invalid outputSchema: %w", activity.ID, err)
		}
	}
	return nil
}

// ValidateDocument validates a payload against one activity schema.
func ValidateDocument(schema map[string]interface{}, doc interface{}) ([]string, error) {
	if len(schema) == 0 {
		return nil, nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return issues, nil
}

func compileSchema(schema map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}
	_, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	return err
}
