package validate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestValidateFile_JSON_Auto_OK(t *testing.T) {
	path := writeTemp(t, "one.json", productJSON("p-1", "SKU-001", 100))

	var out bytes.Buffer
	summary, err := ValidateFile(context.Background(), NewProductValidator(), path, FormatAuto, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "1 valid / 0 invalid" {
		t.Fatalf("unexpected summary: %s", summary)
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Fatalf("expected non-empty output")
	}
}

func TestValidateFile_JSONArray_Mixed(t *testing.T) {
	content := "[" + productJSON("p-1", "SKU-001", 100) + "," +
		productJSON("p-2", "SKU-002", -1) + "," + // отрицательная цена
		productJSON("p-3", "SKU-003", 300) + "]"
	path := writeTemp(t, "catalog.json", content)

	var out bytes.Buffer
	summary, err := ValidateFile(context.Background(), NewProductValidator(), path, FormatAuto, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "2 valid / 1 invalid" {
		t.Fatalf("unexpected summary: %s", summary)
	}
	if lines := strings.Split(strings.TrimSpace(out.String()), "\n"); len(lines) != 2 {
		t.Fatalf("expected 2 output lines, got %d", len(lines))
	}
}

func TestValidateFile_JSONL_Auto_Mixed(t *testing.T) {
	content := oneLineJSON(productJSON("p-1", "SKU-001", 100)) + "\n" +
		oneLineJSON(productJSON("p-2", "SKU-002", -1)) + "\n" +
		oneLineJSON(productJSON("p-3", "SKU-003", 300)) + "\n"
	path := writeTemp(t, "catalog.jsonl", content)

	var out bytes.Buffer
	summary, err := ValidateFile(context.Background(), NewProductValidator(), path, FormatAuto, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "2 valid / 1 invalid" {
		t.Fatalf("unexpected summary: %s", summary)
	}
}

func TestValidateFile_JSON_Invalid(t *testing.T) {
	raw := `{"unknown":1,` + productJSON("p-x", "SKU-00X", 1)[1:]
	path := writeTemp(t, "bad.json", raw)

	var out bytes.Buffer
	summary, err := ValidateFile(context.Background(), NewProductValidator(), path, FormatJSON, &out)
	if err == nil {
		t.Fatalf("expected error for invalid json")
	}
	if summary != "0 valid / 1 invalid" {
		t.Fatalf("unexpected summary: %s", summary)
	}
	if out.String() != "" {
		t.Fatalf("output must be empty for invalid single JSON")
	}
}

func TestValidateFile_ExplicitFormat_IgnoresExt(t *testing.T) {
	path := writeTemp(t, "data.txt", oneLineJSON(productJSON("p-1", "SKU-001", 100))+"\n")

	var out bytes.Buffer
	summary, err := ValidateFile(context.Background(), NewProductValidator(), path, FormatJSONL, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "1 valid / 0 invalid" {
		t.Fatalf("unexpected summary: %s", summary)
	}
}

func TestValidateFile_OpenError(t *testing.T) {
	var out bytes.Buffer
	if _, err := ValidateFile(context.Background(), NewProductValidator(), "no-such-file.json", FormatAuto, &out); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestValidateFile_UnsupportedFormat(t *testing.T) {
	path := writeTemp(t, "one.json", productJSON("p-1", "SKU-001", 100))

	var out bytes.Buffer
	_, err := ValidateFile(context.Background(), NewProductValidator(), path, InputFormat("yaml"), &out)
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got: %v", err)
	}
}
