package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/signintech/gopdf"
)

// displayDateLayout is the textual date format printed on certificates.
const displayDateLayout = "January 2, 2006"

// acceptedDateLayouts are the input formats the generator will reformat.
var acceptedDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	time.RFC3339,
}

// CertificateFields is the field map rendered onto a template. Dates are
// expected in display format; use FormatCertificateDate first.
type CertificateFields struct {
	Name       string
	Course     string
	IssueDate  string
	ExpiryDate string
}

// FieldPosition places one field on the template page.
type FieldPosition struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Font string  `json:"font"`
	Size float64 `json:"size"`
}

// FieldLayout maps field names (name, course, issue_date, expiry_date) to
// positions. Stored as a JSON column on the certificate template.
type FieldLayout map[string]FieldPosition

// defaultLayout is used when a template row carries no layout of its own.
// Coordinates assume an A4 landscape page.
var defaultLayout = FieldLayout{
	"name":        {X: 230, Y: 260, Font: "serif-bold", Size: 34},
	"course":      {X: 230, Y: 330, Font: "serif", Size: 24},
	"issue_date":  {X: 230, Y: 400, Font: "serif", Size: 16},
	"expiry_date": {X: 480, Y: 400, Font: "serif", Size: 16},
}

// DocumentRenderer turns a template asset plus field values into PDF bytes.
type DocumentRenderer interface {
	Render(templateAsset []byte, fields CertificateFields, layout FieldLayout) ([]byte, error)
}

// Renderer is the global document renderer. Tests swap in a stub.
var Renderer DocumentRenderer

// FormatCertificateDate converts a date string to display format. Values
// already in display format pass through unchanged; other common layouts
// are parsed and reformatted.
func FormatCertificateDate(value string) (string, error) {
	v := strings.TrimSpace(value)
	if _, err := time.Parse(displayDateLayout, v); err == nil {
		return v, nil
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(displayDateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid date format: %q", value)
}

// ParseCertificateDate parses any accepted date input into a time.Time.
func ParseCertificateDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if t, err := time.Parse(displayDateLayout, v); err == nil {
		return t, nil
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %q", value)
}

// PDFRenderer renders certificates by importing the template PDF as a page
// background and drawing text fields over it.
type PDFRenderer struct {
	Fonts map[string][]byte // font cache, keyed by layout font name
}

// LoadFontCache reads every .ttf in dir into a font cache keyed by the file
// name without extension.
func LoadFontCache(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read font dir: %w", err)
	}
	fonts := make(map[string][]byte)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".ttf") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".ttf")
		fonts[name] = data
	}
	if len(fonts) == 0 {
		return nil, fmt.Errorf("no .ttf fonts found in %s", dir)
	}
	log.Printf("Loaded %d fonts from %s", len(fonts), dir)
	return fonts, nil
}

// pdfMagic is the header every usable template asset must start with.
var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data looks like a PDF file.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// Render produces the certificate PDF. Pure rendering; no persistence.
// The template import panics inside gopdf on malformed input, so a corrupt
// asset is turned into an error here instead of escaping to the caller.
func (r *PDFRenderer) Render(templateAsset []byte, fields CertificateFields, layout FieldLayout) (out []byte, err error) {
	if !IsPDF(templateAsset) {
		return nil, fmt.Errorf("template asset is not a PDF")
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("import template page: %v", rec)
		}
	}()

	if len(layout) == 0 {
		layout = defaultLayout
	}

	pageSize := gopdf.Rect{W: 841.89, H: 595.28} // A4 landscape
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: pageSize})

	var rs io.ReadSeeker = bytes.NewReader(templateAsset)
	tpl := pdf.ImportPageStream(&rs, 1, "/MediaBox")
	pdf.AddPage()
	pdf.UseImportedTemplate(tpl, 0, 0, pageSize.W, pageSize.H)

	for name, data := range r.Fonts {
		if err := pdf.AddTTFFontData(name, data); err != nil {
			return nil, fmt.Errorf("load font %s: %w", name, err)
		}
	}

	values := map[string]string{
		"name":        fields.Name,
		"course":      fields.Course,
		"issue_date":  fields.IssueDate,
		"expiry_date": fields.ExpiryDate,
	}
	for field, pos := range layout {
		text, ok := values[field]
		if !ok || text == "" {
			continue
		}
		if err := pdf.SetFont(pos.Font, "", pos.Size); err != nil {
			return nil, fmt.Errorf("font %s not in cache: %w", pos.Font, err)
		}
		pdf.SetXY(pos.X, pos.Y)
		if err := pdf.Cell(nil, text); err != nil {
			return nil, fmt.Errorf("draw field %s: %w", field, err)
		}
	}

	return pdf.GetBytesPdf(), nil
}

// ParseFieldLayout decodes a template row's layout JSON. Empty input yields
// an empty layout (the renderer falls back to the default).
func ParseFieldLayout(raw []byte) (FieldLayout, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var layout FieldLayout
	if err := json.Unmarshal(raw, &layout); err != nil {
		return nil, fmt.Errorf("parse field layout: %w", err)
	}
	return layout, nil
}
