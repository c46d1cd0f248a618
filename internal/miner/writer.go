package miner

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Output file names under the output directory.
const (
	FunctionsFile = "functions.jsonl"
	ClassesFile   = "classes.jsonl"
	LinesFile     = "lines.jsonl"
)

// JSONLWriter writes JSON Lines files atomically using a temp → rename pattern.
type JSONLWriter struct {
	outputDir string
	tempDir   string
}

// NewJSONLWriter creates the output directory and a clean temp directory inside it.
func NewJSONLWriter(outputDir string) (*JSONLWriter, error) {
	tempDir := filepath.Join(outputDir, ".tmp")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Clean up stale temp files
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}

	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &JSONLWriter{
		outputDir: outputDir,
		tempDir:   tempDir,
	}, nil
}

// Path returns the final location of filename.
func (w *JSONLWriter) Path(filename string) string {
	return filepath.Join(w.outputDir, filename)
}

// WriteLines writes one pre-encoded JSON object per line.
func (w *JSONLWriter) WriteLines(filename string, lines [][]byte) error {
	tempPath := filepath.Join(w.tempDir, filename)
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	buf := bufio.NewWriter(f)
	for _, line := range lines {
		buf.Write(bytes.TrimRight(line, "\n"))
		buf.WriteByte('\n')
	}
	if err := buf.Flush(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Rename to final location (atomic operation)
	if err := os.Rename(tempPath, w.Path(filename)); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// WriteRecords encodes each value with MarshalRecord and writes them as lines.
func WriteRecords[T any](w *JSONLWriter, filename string, records []T) error {
	lines := make([][]byte, 0, len(records))
	for i := range records {
		data, err := MarshalRecord(records[i])
		if err != nil {
			return err
		}
		lines = append(lines, data)
	}
	return w.WriteLines(filename, lines)
}

// ReadLines reads a JSONL file back into raw lines. A missing file yields none.
func ReadLines(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var lines [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// MarshalRecord encodes v as single-line JSON without HTML escaping, so code
// such as "a < b && c" stays readable in the output.
func MarshalRecord(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
