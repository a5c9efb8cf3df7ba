package dialog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderLoadAll(t *testing.T) {
	dir := t.TempDir()

	yamlContent := `
name: order
version: "2.0"
cancel_message: "No worries, order dropped."
prompts:
  qty: "How many shares of {{.Stock}}?"
`

	if err := os.WriteFile(filepath.Join(dir, "order.yaml"), []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	loader := NewLoader(dir)
	defs, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("loaded %d definitions, want 1", len(defs))
	}

	def := loader.Definition()
	if def.Version != "2.0" {
		t.Errorf("version = %q, want %q", def.Version, "2.0")
	}
	if def.CancelMessage != "No worries, order dropped." {
		t.Errorf("cancel message = %q", def.CancelMessage)
	}
	if def.Prompts[SlotQty] != "How many shares of {{.Stock}}?" {
		t.Errorf("qty prompt = %q", def.Prompts[SlotQty])
	}

	// Fields the file leaves out come from the defaults.
	defaults := DefaultDefinition()
	if def.Prompts[SlotStock] != defaults.Prompts[SlotStock] {
		t.Errorf("stock prompt = %q, want default", def.Prompts[SlotStock])
	}
	if def.CancelPattern != defaults.CancelPattern {
		t.Errorf("cancel pattern = %q, want default", def.CancelPattern)
	}
	if def.Messages.NotUnderstood != defaults.Messages.NotUnderstood {
		t.Errorf("not understood = %q, want default", def.Messages.NotUnderstood)
	}
}

func TestLoaderUnnamedFileIsOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "texts.yml"), []byte(`retry_suffix: " (or say cancel)"`), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	loader := NewLoader(dir)
	if _, err := loader.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if _, ok := loader.Get(DefaultDialogName); !ok {
		t.Fatal("unnamed definition not registered as order")
	}
	if got := loader.Definition().RetrySuffix; got != " (or say cancel)" {
		t.Errorf("retry suffix = %q", got)
	}
}

func TestLoaderInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("{{invalid"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loader := NewLoader(dir)
	if _, err := loader.LoadAll(); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoaderInvalidDefinition(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "order.yaml"), []byte(`cancel_pattern: "("`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loader := NewLoader(dir)
	if _, err := loader.LoadAll(); err == nil {
		t.Error("expected validation error")
	}
	if got := loader.Definition().CancelPattern; got != DefaultDefinition().CancelPattern {
		t.Errorf("cancel pattern = %q, want default after failed load", got)
	}
}

func TestLoaderEmptyDir(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(dir)
	defs, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("loaded %d definitions from empty dir, want 0", len(defs))
	}
	if loader.Definition().Name != DefaultDialogName {
		t.Errorf("definition name = %q, want %q", loader.Definition().Name, DefaultDialogName)
	}
}

func TestLoaderNoDir(t *testing.T) {
	loader := NewLoader("")
	if _, err := loader.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if loader.Definition().Prompts[SlotStock] == "" {
		t.Error("built-in definition has no stock prompt")
	}
}
