// Package docx fills placeholders in Word (.docx) templates.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// textRun matches one <w:t> element. Placeholders are replaced only when
// they are fully contained in a single run.
var textRun = regexp.MustCompile(`(<w:t(?:\s[^>]*)?>)([^<]*)(</w:t>)`)

var unescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&#39;", "'", "&#34;", `"`, "&amp;", "&")

// Fill reads the template, replaces every placeholder occurrence in the
// main document, headers and footers and writes the result to output. It
// returns the written document.
func Fill(template, output string, replacements map[string]string) ([]byte, error) {
	tpl, err := os.ReadFile(template)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	out, err := FillBytes(tpl, replacements)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}

	return out, nil
}

// FillBytes is Fill over in-memory documents.
func FillBytes(template []byte, replacements map[string]string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	keys := make([]string, 0, len(replacements))
	for k := range replacements {
		if k != "" {
			keys = append(keys, k)
		}
	}
	// Longer placeholders first so a key that prefixes another cannot
	// consume part of it.
	slices.SortFunc(keys, func(a, b string) int {
		if d := len(b) - len(a); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range zr.File {
		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}

		if isTextPart(f.Name) {
			data = replaceRuns(data, keys, replacements)
		}

		hdr := f.FileHeader
		w, err := zw.CreateHeader(&hdr)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize docx: %w", err)
	}

	return buf.Bytes(), nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}

	return data, nil
}

// isTextPart reports whether the entry carries document text: the body,
// headers or footers.
func isTextPart(name string) bool {
	if path.Dir(name) != "word" || path.Ext(name) != ".xml" {
		return false
	}

	base := path.Base(name)

	return base == "document.xml" || strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}

func replaceRuns(data []byte, keys []string, replacements map[string]string) []byte {
	return textRun.ReplaceAllFunc(data, func(run []byte) []byte {
		m := textRun.FindSubmatch(run)
		text := unescaper.Replace(string(m[2]))

		changed := false
		for _, k := range keys {
			if strings.Contains(text, k) {
				text = strings.ReplaceAll(text, k, replacements[k])
				changed = true
			}
		}
		if !changed {
			return run
		}

		open := string(m[1])
		if strings.TrimSpace(text) != text && !strings.Contains(open, "xml:space") {
			open = `<w:t xml:space="preserve">`
		}

		var esc bytes.Buffer
		_ = xml.EscapeText(&esc, []byte(text))

		return []byte(open + esc.String() + string(m[3]))
	})
}
