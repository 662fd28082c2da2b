package validate

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/Gunvolt24/checkout_gateway/internal/ports"
)

// JSONLResult — статистика валидации потока JSONL.
type JSONLResult struct {
	ValidLinesCount   int
	InvalidLinesCount int
}

// ValidateJSONLStream — читает JSONL из reader’а, валидирует каждую строку, валидные товары пишет в writer
// каноническим JSON одной строкой. Пустые строки пропускаются, невалидные только считаются.
func ValidateJSONLStream(ctx context.Context, validator ports.ProductValidator, ir io.Reader, ow io.Writer) (JSONLResult, error) {
	var res JSONLResult

	scanner := bufio.NewScanner(ir)
	// запас на большие описания
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		product, err := ValidateProductFromJSON(ctx, validator, line)
		if err != nil {
			res.InvalidLinesCount++
			continue
		}
		if err := writeCanonical(ow, product); err != nil {
			return res, fmt.Errorf("write valid line: %w", err)
		}
		res.ValidLinesCount++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}
