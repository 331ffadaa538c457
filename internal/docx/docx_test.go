package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<w:document><w:body>` +
	`<w:p><w:r><w:t>{{TIEU_DE}}</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t xml:space="preserve">Ngày {{ngay}} tháng {{thang}} năm {{nam}}</w:t></w:r></w:p>` +
	`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>{{tong_kinh_phi}} {{don_vi_tien_te}}</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
	`<w:p><w:r><w:t>{{de_xuat_khac}}</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>{{untouched}}</w:t></w:r></w:p>` +
	`</w:body></w:document>`

func buildTemplate(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   documentXML,
		"word/header1.xml":    `<w:hdr><w:p><w:r><w:t>{{don_vi}}</w:t></w:r></w:p></w:hdr>`,
		"word/footer1.xml":    `<w:ftr><w:p><w:r><w:t>{{NGUOI_DE_XUAT}}</w:t></w:r></w:p></w:ftr>`,
		"word/styles.xml":     `<w:styles><w:t>{{don_vi}}</w:t></w:styles>`,
	}
	for _, name := range []string{"[Content_Types].xml", "word/document.xml", "word/header1.xml", "word/footer1.xml", "word/styles.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func readPart(t *testing.T, doc []byte, name string) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(data)
		}
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestFillBytes(t *testing.T) {
	out, err := FillBytes(buildTemplate(t), map[string]string{
		"{{TIEU_DE}}":        "TỜ TRÌNH MUA MÁY IN",
		"{{ngay}}":           "05",
		"{{thang}}":          "03",
		"{{nam}}":            "2025",
		"{{tong_kinh_phi}}":  "1.000.000",
		"{{don_vi_tien_te}}": "VND",
		"{{de_xuat_khac}}":   "Giao <trước> ngày 10 & lắp đặt",
		"{{don_vi}}":         "Phòng IT",
		"{{NGUOI_DE_XUAT}}":  "NGUYỄN VĂN A",
	})
	require.NoError(t, err)

	doc := readPart(t, out, "word/document.xml")
	assert.Contains(t, doc, "<w:t>TỜ TRÌNH MUA MÁY IN</w:t>")
	assert.Contains(t, doc, `<w:t xml:space="preserve">Ngày 05 tháng 03 năm 2025</w:t>`)
	assert.Contains(t, doc, "<w:t>1.000.000 VND</w:t>")
	assert.Contains(t, doc, "Giao &lt;trước&gt; ngày 10 &amp; lắp đặt")
	assert.Contains(t, doc, "<w:t>{{untouched}}</w:t>")

	assert.Contains(t, readPart(t, out, "word/header1.xml"), "<w:t>Phòng IT</w:t>")
	assert.Contains(t, readPart(t, out, "word/footer1.xml"), "<w:t>NGUYỄN VĂN A</w:t>")
	assert.Contains(t, readPart(t, out, "word/styles.xml"), "{{don_vi}}", "non text parts are copied verbatim")
	assert.Equal(t, "<Types/>", readPart(t, out, "[Content_Types].xml"))
}

func TestFill_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "tpl.docx")
	require.NoError(t, os.WriteFile(tpl, buildTemplate(t), 0o600))

	outPath := filepath.Join(dir, "out", "doc.docx")
	data, err := Fill(tpl, outPath, map[string]string{"{{TIEU_DE}}": "X"})
	require.NoError(t, err)

	onDisk, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)
	assert.Contains(t, readPart(t, onDisk, "word/document.xml"), "<w:t>X</w:t>")
}

func TestFill_Errors(t *testing.T) {
	_, err := Fill(filepath.Join(t.TempDir(), "missing.docx"), "out.docx", nil)
	require.Error(t, err)

	_, err = FillBytes([]byte("not a zip"), nil)
	require.Error(t, err)
}
