// Package parser converts uploaded files into either row records (tabular
// formats) or raw text. An unrecognized format is not an error: the bytes
// are treated as plain text so ingestion degrades instead of failing.
package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/models"
)

// Table is one tabular unit (a CSV file or a workbook sheet).
type Table struct {
	Name string // sheet name, empty for CSV
	Rows []models.Row
}

// Parsed is the outcome of parsing one file: tabular formats fill Tables,
// everything else fills Text. Both may be empty for an empty file.
type Parsed struct {
	Text   string
	Tables []Table
}

func Parse(filename string, data []byte) (*Parsed, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return parseCSV(data)
	case ".xlsx":
		return parseXLSX(data)
	case ".ods", ".xlsm":
		return parseWorkbook(data)
	case ".pdf":
		return parsePDF(data)
	case ".docx":
		return parseDOCX(data)
	case ".md", ".markdown":
		return parseMarkdown(data)
	case ".txt", "":
		return &Parsed{Text: string(data)}, nil
	default:
		log.Warn().Str("ext", ext).Str("file", filename).Msg("unsupported format, ingesting as plain text")
		return &Parsed{Text: string(data)}, nil
	}
}

func parseCSV(data []byte) (*Parsed, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return &Parsed{}, nil
	}
	header := records[0]
	rows := recordsToRows(header, records[1:])
	return &Parsed{Tables: []Table{{Rows: rows}}}, nil
}

func parseXLSX(data []byte) (*Parsed, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}

	var tables []Table
	for _, sheet := range f.Sheets {
		var records [][]string
		for _, row := range sheet.Rows {
			var record []string
			for _, cell := range row.Cells {
				record = append(record, cell.String())
			}
			records = append(records, record)
		}
		if len(records) == 0 {
			continue
		}
		tables = append(tables, Table{
			Name: sheet.Name,
			Rows: recordsToRows(records[0], records[1:]),
		})
	}
	return &Parsed{Tables: tables}, nil
}

func parseWorkbook(data []byte) (*Parsed, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var tables []Table
	for _, sheetName := range f.GetSheetList() {
		records, err := f.GetRows(sheetName)
		if err != nil {
			log.Warn().Err(err).Str("sheet", sheetName).Msg("skipping unreadable sheet")
			continue
		}
		if len(records) == 0 {
			continue
		}
		tables = append(tables, Table{
			Name: sheetName,
			Rows: recordsToRows(records[0], records[1:]),
		})
	}
	return &Parsed{Tables: tables}, nil
}

func parsePDF(data []byte) (*Parsed, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("pdf page %d: %w", i, err)
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}
	return &Parsed{Text: text.String()}, nil
}

func parseDOCX(data []byte) (*Parsed, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()

	return &Parsed{Text: r.Editable().GetContent()}, nil
}

// parseMarkdown walks the goldmark AST and keeps only text content, so
// markup characters do not pollute embeddings or lexical matching.
func parseMarkdown(data []byte) (*Parsed, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(gmtext.NewReader(data))

	var text strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			text.Write(t.Segment.Value(data))
			if t.SoftLineBreak() || t.HardLineBreak() {
				text.WriteByte('\n')
			}
		}
		if !entering && n.Type() == ast.TypeBlock {
			text.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown: %w", err)
	}
	return &Parsed{Text: strings.TrimSpace(text.String())}, nil
}

// recordsToRows maps data records onto the header's field names. Short
// records leave trailing fields at the missing-value sentinel; extra cells
// beyond the header are ignored.
func recordsToRows(header []string, records [][]string) []models.Row {
	var rows []models.Row
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		row := models.NewRow()
		for i, field := range header {
			if field == "" {
				continue
			}
			if i < len(record) {
				row.Set(field, record[i])
			} else {
				row.Set(field, models.MissingValue)
			}
		}
		if row.Len() > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
