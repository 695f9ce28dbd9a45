package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `types:
  - name: Order
    keys: [id]
    fields:
      - {id: int64}
      - {total: int64}
    relations:
      - {name: parts, target: OrderPart, collection: true}
  - name: OrderPart
    keys: [id]
    fields:
      - {id: int64}
      - {sku: string}
`

func TestGenCommand(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(testSchema), 0o644))

	outDir := filepath.Join(dir, "out")

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("schema", schemaPath)
	viper.Set("directives", "")
	viper.Set("package", "serializers")
	viper.Set("out", outDir)
	viper.Set("file", "serializers.go")
	viper.Set("cache", "")

	require.NoError(t, genCmd.RunE(genCmd, nil))

	content, err := os.ReadFile(filepath.Join(outDir, "serializers.go"))
	require.NoError(t, err)

	code := string(content)
	assert.Contains(t, code, "package serializers")
	assert.Contains(t, code, "func SerializeOrderRecordToRecord")
	assert.Contains(t, code, "func SerializeOrderPartRecordToRecord")
}

func TestGenCommandBadSchema(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("schema", filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, genCmd.RunE(genCmd, nil))
}
