// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"bodyscan-workers/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name         string                 `json:"name"`
	PackageName  string                 `json:"packageName"`
	DirName      string                 `json:"dirName"`
	TaskType     string                 `json:"taskType"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Description  string                 `json:"description"`
	Category     string                 `json:"category"`
	Timeout      string                 `json:"timeout"`
	Retries      int                    `json:"retries"`
}

// parseSchema extracts properties from a JSON schema object
func parseSchema(schemaObj interface{}) map[string]interface{} {
	if schemaMap, ok := schemaObj.(map[string]interface{}); ok {
		if props, exists := schemaMap["properties"]; exists {
			if properties, ok := props.(map[string]interface{}); ok {
				return properties
			}
		}
	}
	return map[string]interface{}{}
}

// goTypeFromJSONType maps JSON schema types to Go types
func goTypeFromJSONType(jsonType interface{}) string {
	if jt, ok := jsonType.(string); ok {
		switch jt {
		case "string":
			return "string"
		case "number", "integer":
			return "float64"
		case "boolean":
			return "bool"
		case "object":
			return "map[string]interface{}"
		case "array":
			return "[]interface{}"
		default:
			return "interface{}"
		}
	}
	return "interface{}"
}

// generateStructFields generates Go struct field definitions from schema properties
func generateStructFields(properties map[string]interface{}) string {
	var fields []string
	for prop, details := range properties {
		propDetails, ok := details.(map[string]interface{})
		if !ok {
			continue
		}
		goType := goTypeFromJSONType(propDetails["type"])
		fields = append(fields, fmt.Sprintf("\t%s %s `json:%q`", exportedName(prop), goType, prop))
	}
	return strings.Join(fields, "\n")
}

// exportedName converts a snake_case property name into an exported Go identifier.
func exportedName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

const configTemplate = `package {{ .PackageName }}

import "time"

// TaskType is the Zeebe task type this worker subscribes to.
const TaskType = "{{ .TaskType }}"

// Config holds settings for the {{ .TaskType }} worker.
type Config struct {
	Timeout time.Duration
}

// DefaultConfig returns the worker defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
`

const modelsTemplate = `package {{ .PackageName }}

// Input carries the process variables consumed by the {{ .TaskType }} task.
type Input struct {
{{- $inputProps := parseSchema .InputSchema }}
{{- if $inputProps }}
{{ generateStructFields $inputProps }}
{{- end }}
}

// Output carries the variables written back to the process.
type Output struct {
{{- $outputProps := parseSchema .OutputSchema }}
{{- if $outputProps }}
{{ generateStructFields $outputProps }}
{{- end }}
}
`

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"time"

	"bodyscan-workers/internal/common/errors"
	"bodyscan-workers/internal/common/logger"
	"bodyscan-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Handler processes {{ .TaskType }} jobs.
type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

// NewHandler creates the {{ .TaskType }} job handler.
func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

// Handle unmarshals the job variables, runs the task and completes or
// fails the job according to the returned error.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		verr := errors.NewValidationFailedError("invalid job variables: " + err.Error())
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.ErrCodeValidationFailed)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, verr)
		return nil
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		code := errors.ErrCodeMatchingFailed
		if serr, ok := err.(*errors.StandardError); ok {
			code = serr.Code
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return nil
	}

	variables, err := json.Marshal(output)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return nil
	}

	if _, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromString(string(variables)).
		Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"taskType": TaskType,
			"jobKey":   job.Key,
			"error":    err.Error(),
		})
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	return nil
}

// Execute runs the task logic. It has no Zeebe dependency so tests can
// call it directly.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	// Implement the {{ .TaskType }} logic here.
	return &Output{}, nil
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"

	"bodyscan-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotNil(t, out)
}
`

const readmeTemplate = `# {{ .Name }}

{{ .Description }}

Task type: ` + "`{{ .TaskType }}`" + `

## Error codes
{{- if .ErrorCodes }}
{{ range .ErrorCodes }}
- {{ . }}
{{- end }}
{{- else }}
None declared.
{{- end }}

## Configuration

` + "```yaml" + `
workers:
  {{ .TaskType }}:
    enabled: true
    max_jobs_active: 5
    timeout: {{ .Timeout }}
    max_retries: {{ .Retries }}
` + "```" + `

Register the handler in cmd/worker-manager/main.go and add the worker
block above to configs/config.yaml.
`

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., bodyscan.matching.match-archetypes)")
	outputDir := flag.String("output", "./internal/workers/bodyscan", "Output directory for the generated worker")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator --activity <id> [--output <dir>] [--registry <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/worker-generator/main.go --activity bodyscan.matching.match-archetypes")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	var foundActivity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *activity {
			foundActivity = &reg.Activities[i]
			break
		}
	}

	if foundActivity == nil {
		fmt.Printf("Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	data := WorkerData{
		Name:         foundActivity.DisplayName,
		PackageName:  strings.ReplaceAll(foundActivity.TaskType, "-", ""),
		DirName:      foundActivity.TaskType,
		TaskType:     foundActivity.TaskType,
		InputSchema:  foundActivity.InputSchema,
		OutputSchema: foundActivity.OutputSchema,
		ErrorCodes:   foundActivity.ErrorCodes,
		Description:  foundActivity.Description,
		Category:     foundActivity.Category,
		Timeout:      foundActivity.Timeout,
		Retries:      foundActivity.Retries,
	}

	workerDir := filepath.Join(*outputDir, data.DirName)
	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	funcMap := template.FuncMap{
		"parseSchema":          parseSchema,
		"goTypeFromJSONType":   goTypeFromJSONType,
		"generateStructFields": generateStructFields,
		"exportedName":         exportedName,
	}

	templates := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
		"README.md":       readmeTemplate,
	}

	for filename, tmplStr := range templates {
		tmpl, err := template.New(filename).Funcs(funcMap).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			continue
		}

		filePath := filepath.Join(workerDir, filename)
		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}

		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("✓ Generated %s\n", filePath)
	}

	fmt.Printf("\n✅ Worker scaffold generated at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement Execute in handler.go\n")
	fmt.Printf("  2. Extend the tests in handler_test.go\n")
	fmt.Printf("  3. Register the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  4. Add configuration to configs/config.yaml\n")
}
