package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaGuard validates execution payloads against optional per-workflow JSON
// schemas. A workflow without a schema file passes unchecked.
type SchemaGuard struct {
	dir string
}

func NewSchemaGuard(dir string) *SchemaGuard {
	return &SchemaGuard{dir: dir}
}

// Validate checks the payload against <dir>/<workflowID>.json when present.
func (g *SchemaGuard) Validate(workflowID string, payload map[string]any) error {
	path := filepath.Join(g.dir, workflowID+".json")

	schemaData, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read payload schema for workflow %s: %w", workflowID, err)
	}

	if payload == nil {
		payload = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to validate payload for workflow %s: %w", workflowID, err)
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}

	return fmt.Errorf("payload rejected by schema for workflow %s: %s", workflowID, strings.Join(messages, "; "))
}
