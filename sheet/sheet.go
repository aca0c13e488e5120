package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"

	"github.com/ByLCY/cardpress/layout"
)

// ErrUnsupportedFormat 表示数据文件扩展名不受支持。
var ErrUnsupportedFormat = errors.New("不支持的数据文件格式")

// Table 是表格数据：第一行作为表头，其余每行转换为 DataRow。
type Table struct {
	Headers []string
	Rows    []layout.DataRow
}

// Fields 为每一列创建一个未框选的字段。
func (t *Table) Fields() []layout.Field { return layout.NewFields(t.Headers) }

// ReadFile 按扩展名读取 .xlsx 或 .csv 文件。
func ReadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ReadXLSX(bytes.NewReader(data), int64(len(data)))
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("%w：%s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadXLSX 读取工作簿的第一个工作表。
func ReadXLSX(r io.ReaderAt, size int64) (*Table, error) {
	wb, err := spreadsheet.Read(r, size)
	if err != nil {
		return nil, fmt.Errorf("解析 Excel 文件失败: %w", err)
	}
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return &Table{}, nil
	}

	var records [][]string
	for _, row := range sheets[0].Rows() {
		var record []string
		for _, cell := range row.Cells() {
			colName, err := cell.Column()
			if err != nil {
				continue
			}
			idx := int(reference.ColumnToIndex(colName))
			for len(record) <= idx {
				record = append(record, "")
			}
			record[idx] = cell.GetFormattedValue()
		}
		records = append(records, record)
	}
	return fromRecords(records), nil
}

// ReadCSV 读取逗号分隔的文本，允许各行列数不同。
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析 CSV 文件失败: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return fromRecords(records), nil
}

// fromRecords 把原始行转换为表格：空表头命名为 "Column N"，重名表头追加序号，
// 全空的数据行被跳过，缺失的单元格取空串。
func fromRecords(records [][]string) *Table {
	t := &Table{}
	start := -1
	for i, rec := range records {
		if !blank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return t
	}

	seen := map[string]int{}
	for idx, h := range records[start] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Column " + strconv.Itoa(idx+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = h + " " + strconv.Itoa(n)
		}
		t.Headers = append(t.Headers, h)
	}

	for _, rec := range records[start+1:] {
		if blank(rec) {
			continue
		}
		row := make(layout.DataRow, len(t.Headers))
		for idx, h := range t.Headers {
			if idx < len(rec) {
				row[h] = strings.TrimSpace(rec[idx])
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
