// Package ingest normalizes uploaded CSV/JSON/text content and distills
// it into a short textual digest for prompt inclusion.
package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/perzonai/persona-engine/internal/errs"
	"github.com/perzonai/persona-engine/internal/models"
)

// DefaultMaxFileSize is the upload ceiling applied when the caller does
// not supply one.
const DefaultMaxFileSize = 10 << 20 // 10 MiB

const (
	sampleRows  = 3
	sampleItems = 3
	sampleLines = 5
)

var typeByMIME = map[string]string{
	"text/csv":         "csv",
	"application/json": "json",
	"text/plain":       "txt",
}

// Allowed reports whether the MIME type is one of the three accepted
// categories.
func Allowed(mimeType string) bool {
	_, ok := typeByMIME[normalizeMIME(mimeType)]
	return ok
}

func normalizeMIME(mimeType string) string {
	// Strip parameters such as "; charset=utf-8".
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(strings.ToLower(mimeType))
}

// Process parses content according to its MIME type and returns the
// normalized summary. Malformed JSON is a hard error; the other formats
// are tolerant of messy input. A maxSize of zero or less falls back to
// DefaultMaxFileSize.
func Process(filename, mimeType string, content []byte, maxSize int64) (models.UploadedFile, error) {
	kind, ok := typeByMIME[normalizeMIME(mimeType)]
	if !ok {
		return models.UploadedFile{}, fmt.Errorf("%w: unsupported file type %q", errs.ErrInvalidInput, mimeType)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if int64(len(content)) > maxSize {
		return models.UploadedFile{}, fmt.Errorf("%w: file too large", errs.ErrInvalidInput)
	}

	text := string(content)
	var (
		data models.ProcessedData
		err  error
	)
	switch kind {
	case "csv":
		data = processCSV(text)
	case "json":
		data, err = processJSON(content)
	case "txt":
		data = processText(text)
	}
	if err != nil {
		return models.UploadedFile{}, err
	}

	return models.UploadedFile{
		Filename:      filename,
		Content:       text,
		Type:          kind,
		ProcessedData: data,
	}, nil
}

// processCSV zips each non-blank line against the header row. Kept as a
// plain line split rather than a strict CSV reader: uploaded exports
// are frequently ragged and a hard parse error helps nobody here.
func processCSV(content string) models.ProcessedData {
	lines := splitNonBlank(content)
	data := models.ProcessedData{Type: "csv"}
	if len(lines) == 0 {
		return data
	}

	headers := splitFields(lines[0])
	data.Headers = headers
	data.Columns = len(headers)

	for _, line := range lines[1:] {
		values := splitFields(line)
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(values) {
				row[h] = values[i]
			}
		}
		data.TotalRows++
		if len(data.SampleRows) < sampleRows {
			data.SampleRows = append(data.SampleRows, row)
		}
	}
	return data
}

func processJSON(content []byte) (models.ProcessedData, error) {
	var value any
	if err := json.Unmarshal(content, &value); err != nil {
		return models.ProcessedData{}, fmt.Errorf("%w: invalid JSON format", errs.ErrInvalidInput)
	}

	data := models.ProcessedData{Type: "json"}
	switch v := value.(type) {
	case []any:
		data.DataType = "array"
		data.ItemCount = len(v)
		if len(v) > sampleItems {
			v = v[:sampleItems]
		}
		data.SampleItems = v
	case map[string]any:
		data.DataType = "object"
		data.ItemCount = 1
		for k := range v {
			data.Keys = append(data.Keys, k)
		}
	default:
		data.DataType = "scalar"
		data.ItemCount = 1
	}
	return data, nil
}

func processText(content string) models.ProcessedData {
	lines := splitNonBlank(content)
	data := models.ProcessedData{
		Type:        "text",
		LineCount:   len(lines),
		WordCount:   len(strings.Fields(content)),
		CharCount:   len(content),
		ContentKind: classifyText(content),
	}
	if len(lines) > sampleLines {
		lines = lines[:sampleLines]
	}
	data.SampleLines = lines
	return data
}

// classifyText is a best-effort keyword guess at what the text contains.
func classifyText(content string) string {
	lower := strings.ToLower(content)
	switch {
	case strings.Contains(lower, "review") || strings.Contains(lower, "rating") || strings.Contains(lower, "feedback"):
		return "Customer reviews/feedback"
	case strings.Contains(lower, "survey") || strings.Contains(lower, "response") || strings.Contains(lower, "question"):
		return "Survey responses"
	case strings.Contains(lower, "comment") || strings.Contains(lower, "opinion"):
		return "Comments/opinions"
	default:
		return "General text content"
	}
}

// Insights renders a compact digest of the processed files, appended to
// the generation prompt's survey text.
func Insights(files []models.UploadedFile) string {
	var b strings.Builder
	for _, f := range files {
		d := f.ProcessedData
		switch f.Type {
		case "csv":
			fmt.Fprintf(&b, "\nCSV File Analysis (%s):\n", f.Filename)
			fmt.Fprintf(&b, "- %d rows with %d columns\n", d.TotalRows, d.Columns)
			fmt.Fprintf(&b, "- Column headers: %s\n", strings.Join(d.Headers, ", "))
		case "json":
			fmt.Fprintf(&b, "\nJSON File Analysis (%s):\n", f.Filename)
			fmt.Fprintf(&b, "- Data type: %s\n", d.DataType)
			if len(d.Keys) > 0 {
				fmt.Fprintf(&b, "- Keys: %s\n", strings.Join(d.Keys, ", "))
			}
			fmt.Fprintf(&b, "- Items: %d\n", d.ItemCount)
		case "txt":
			fmt.Fprintf(&b, "\nText File Analysis (%s):\n", f.Filename)
			fmt.Fprintf(&b, "- %d lines, %d words\n", d.LineCount, d.WordCount)
			fmt.Fprintf(&b, "- Content appears to be: %s\n", d.ContentKind)
		}
	}
	return b.String()
}

func splitNonBlank(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, strings.TrimRight(line, "\r"))
		}
	}
	return out
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
