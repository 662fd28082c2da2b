package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/checkout_gateway/internal/domain"
	"github.com/Gunvolt24/checkout_gateway/internal/ports"
)

// InputFormat допустимые значения.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"
	FormatJSONL InputFormat = "jsonl"
)

// ValidateFile — валидирует файл каталога и пишет валидные товары в writer (канонический JSON, по строке на товар).
// JSON-файл может содержать один товар или массив товаров; JSONL — по товару на строку.
func ValidateFile(ctx context.Context, validator ports.ProductValidator, filePath string, format InputFormat, ow io.Writer) (string, error) {
	if format == FormatAuto {
		format = detectFormat(filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		raw, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return validateJSONDocument(ctx, validator, raw, ow)

	case FormatJSONL:
		result, err := ValidateJSONLStream(ctx, validator, file, ow)
		if err != nil {
			return "", err
		}
		return summary(result.ValidLinesCount, result.InvalidLinesCount), nil

	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// detectFormat — формат по расширению; по умолчанию JSON.
func detectFormat(filePath string) InputFormat {
	if strings.EqualFold(filepath.Ext(filePath), ".jsonl") {
		return FormatJSONL
	}
	return FormatJSON
}

// validateJSONDocument — один объект валидируется целиком (ошибка возвращается),
// в массиве невалидные элементы только считаются.
func validateJSONDocument(ctx context.Context, validator ports.ProductValidator, raw []byte, ow io.Writer) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		product, err := ValidateProductFromJSON(ctx, validator, trimmed)
		if err != nil {
			return summary(0, 1), err
		}
		if err := writeCanonical(ow, product); err != nil {
			return "", err
		}
		return summary(1, 0), nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return summary(0, 1), fmt.Errorf("invalid json: %w", err)
	}
	valid, invalid := 0, 0
	for _, item := range items {
		product, err := ValidateProductFromJSON(ctx, validator, item)
		if err != nil {
			invalid++
			continue
		}
		if err := writeCanonical(ow, product); err != nil {
			return "", err
		}
		valid++
	}
	return summary(valid, invalid), nil
}

func writeCanonical(ow io.Writer, product *domain.Product) error {
	canonical, _ := json.Marshal(product)
	if _, err := ow.Write(append(canonical, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func summary(valid, invalid int) string {
	return fmt.Sprintf("%d valid / %d invalid", valid, invalid)
}
