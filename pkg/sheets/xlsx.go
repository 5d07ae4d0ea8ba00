package sheets

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

const sheetName = "Leads"

// XLSXSink appends leads to a local XLSX workbook, creating it with a
// header row on first use. Safe for concurrent use within one process;
// the workbook must not be edited concurrently by other processes.
type XLSXSink struct {
	path string

	mu  sync.Mutex
	now func() time.Time
}

// NewXLSXSink creates a sink writing to the workbook at path.
func NewXLSXSink(path string) *XLSXSink {
	return &XLSXSink{path: path, now: time.Now}
}

// Append adds one row per lead, stamping data_captura with the current
// time, and saves the workbook.
func (s *XLSXSink) Append(ctx context.Context, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, sheet, err := s.openOrCreate()
	if err != nil {
		return err
	}

	captured := s.now().UTC().Format(time.RFC3339)
	for _, lead := range leads {
		row := sheet.AddRow()
		for _, v := range leadCells(lead) {
			row.AddCell().SetString(v)
		}
		row.AddCell().SetString(captured)
	}

	if err := file.Save(s.path); err != nil {
		return eris.Wrap(err, "sheets: save workbook")
	}
	return nil
}

// FindByCNPJ scans the workbook for the first row matching the CNPJ.
func (s *XLSXSink) FindByCNPJ(ctx context.Context, cnpj string) (*model.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil
	}

	file, err := xlsx.OpenFile(s.path)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: open workbook")
	}
	sheet, ok := file.Sheet[sheetName]
	if !ok {
		return nil, nil
	}

	for i, row := range sheet.Rows {
		if i == 0 {
			continue // header
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if len(cells) > 0 && cells[0] == cnpj {
			lead := leadFromCells(cells)
			return &lead, nil
		}
	}
	return nil, nil
}

// openOrCreate loads the workbook, creating it with a header row when it
// does not exist yet.
func (s *XLSXSink) openOrCreate() (*xlsx.File, *xlsx.Sheet, error) {
	if _, err := os.Stat(s.path); err == nil {
		file, err := xlsx.OpenFile(s.path)
		if err != nil {
			return nil, nil, eris.Wrap(err, "sheets: open workbook")
		}
		if sheet, ok := file.Sheet[sheetName]; ok {
			return file, sheet, nil
		}
		sheet, err := file.AddSheet(sheetName)
		if err != nil {
			return nil, nil, eris.Wrap(err, "sheets: add sheet")
		}
		return file, sheet, nil
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sheets: add sheet")
	}
	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().SetString(col)
	}
	return file, sheet, nil
}
