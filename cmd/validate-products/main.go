package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Gunvolt24/checkout_gateway/pkg/validate"
)

// CLI-приложение для проверки файлов каталога перед импортом.
func main() {
	inputPath := flag.String("in", "", "path to catalog (.json or .jsonl). If empty, reads JSONL from stdin.")
	formatStr := flag.String("format", "auto", "input format: auto|json|jsonl")
	flag.Parse()

	format := validate.InputFormat(*formatStr)
	path := *inputPath
	if path == "" {
		path = "/dev/stdin"
		if format == validate.FormatAuto {
			format = validate.FormatJSONL
		}
	}

	summary, err := validate.ValidateFile(context.Background(), validate.NewProductValidator(), path, format, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v (%s)\n", err, summary)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "validation ok (%s)\n", summary)
}
