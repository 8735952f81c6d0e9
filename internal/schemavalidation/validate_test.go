package schemavalidation

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"numlockd/internal/config"
)

func TestExampleConfigMatchesSchema(t *testing.T) {
	root := repoRoot(t)
	schema := compileSchema(t, filepath.Join(root, "docs", "schema", "config-v1.schema.json"))

	data, err := os.ReadFile(filepath.Join(root, "docs", "examples", "numlockd.json"))
	if err != nil {
		t.Fatalf("read example: %v", err)
	}
	if err := schema.Validate(decode(t, data)); err != nil {
		t.Fatalf("example config does not match schema: %v", err)
	}

	// The example must also pass the loader's own validation.
	cfg := config.DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		t.Fatalf("unmarshal example into config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("example config rejected by validator: %v", err)
	}
}

func TestDefaultConfigMatchesSchema(t *testing.T) {
	schema := compileSchema(t, filepath.Join(repoRoot(t), "docs", "schema", "config-v1.schema.json"))

	var buf bytes.Buffer
	if err := config.Encode(&buf, config.DefaultConfig(), "json"); err != nil {
		t.Fatalf("encode default config: %v", err)
	}
	if err := schema.Validate(decode(t, buf.Bytes())); err != nil {
		t.Fatalf("default config does not match schema: %v", err)
	}
}

func TestSchemaRejectsInvalidConfig(t *testing.T) {
	schema := compileSchema(t, filepath.Join(repoRoot(t), "docs", "schema", "config-v1.schema.json"))

	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown key", func(c *config.Config) { c.Key.Name = "shiftlock" }},
		{"bad state", func(c *config.Config) { c.Key.State = "blinking" }},
		{"nested mutex namespace", func(c *config.Config) { c.Instance.MutexName = `Global\a\b` }},
		{"empty title", func(c *config.Config) { c.Tray.Title = "" }},
		{"non-ico icon", func(c *config.Config) { c.Tray.DarkIcon = `C:\icons\dark.png` }},
		{"zero rotation size", func(c *config.Config) { c.Logging.MaxSizeMB = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tc.mutate(cfg)

			var buf bytes.Buffer
			if err := config.Encode(&buf, cfg, "json"); err != nil {
				t.Fatalf("encode config: %v", err)
			}
			if err := schema.Validate(decode(t, buf.Bytes())); err == nil {
				t.Fatal("expected schema validation error")
			}
		})
	}
}

func compileSchema(t *testing.T, schemaPath string) *jsonschema.Schema {
	t.Helper()
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaPath, bytes.NewReader(schemaData)); err != nil {
		t.Fatalf("add schema resource: %v", err)
	}
	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	return schema
}

func decode(t *testing.T, data []byte) any {
	t.Helper()
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		t.Fatalf("unmarshal instance: %v", err)
	}
	return instance
}

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to resolve caller path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
