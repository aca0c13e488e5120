package sheet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/ByLCY/cardpress/layout"
)

func TestReadCSV(t *testing.T) {
	src := "\ufeffName, City,,Name\n" +
		"Ravi, \"Vijayawada, AP\",x\n" +
		"\n" +
		",,,\n" +
		"సీత,Pune\n"
	tbl, err := ReadCSV(strings.NewReader(src))
	if err != nil {
		t.Fatalf("读取 CSV 失败: %v", err)
	}
	wantHeaders := []string{"Name", "City", "Column 3", "Name 2"}
	if !reflect.DeepEqual(tbl.Headers, wantHeaders) {
		t.Fatalf("表头错误: %q", tbl.Headers)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("应跳过空行，剩余 2 行，实际 %d", len(tbl.Rows))
	}
	want0 := layout.DataRow{"Name": "Ravi", "City": "Vijayawada, AP", "Column 3": "x", "Name 2": ""}
	if !reflect.DeepEqual(tbl.Rows[0], want0) {
		t.Fatalf("第一行错误: %v", tbl.Rows[0])
	}
	if tbl.Rows[1]["Name"] != "సీత" || tbl.Rows[1]["Column 3"] != "" {
		t.Fatalf("第二行错误: %v", tbl.Rows[1])
	}

	fields := tbl.Fields()
	if len(fields) != 4 || fields[0].Column != "Name" || fields[0].Placed() {
		t.Fatalf("字段应与表头一一对应且未框选: %+v", fields)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("\n\n"))
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(tbl.Headers) != 0 || len(tbl.Rows) != 0 {
		t.Fatalf("空文件应得到空表: %+v", tbl)
	}
}

func writeWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	wb := spreadsheet.New()
	sh := wb.AddSheet()
	for _, rec := range rows {
		row := sh.AddRow()
		for _, v := range rec {
			row.AddCell().SetString(v)
		}
	}
	var buf bytes.Buffer
	if err := wb.Save(&buf); err != nil {
		t.Fatalf("保存工作簿失败: %v", err)
	}
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	data := writeWorkbook(t, [][]string{
		{"Name", "", "Amount"},
		{"Ravi", "ignored?", "42"},
		{"Anu"},
	})
	tbl, err := ReadXLSX(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("读取 xlsx 失败: %v", err)
	}
	if !reflect.DeepEqual(tbl.Headers, []string{"Name", "Column 2", "Amount"}) {
		t.Fatalf("表头错误: %q", tbl.Headers)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("应有 2 行，实际 %d", len(tbl.Rows))
	}
	if tbl.Rows[0]["Amount"] != "42" || tbl.Rows[0]["Column 2"] != "ignored?" {
		t.Fatalf("第一行错误: %v", tbl.Rows[0])
	}
	if tbl.Rows[1]["Name"] != "Anu" || tbl.Rows[1]["Amount"] != "" {
		t.Fatalf("第二行错误: %v", tbl.Rows[1])
	}
}

func TestReadFileByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "rows.csv")
	if err := os.WriteFile(csvPath, []byte("A,B\n1,2\n"), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	tbl, err := ReadFile(csvPath)
	if err != nil || len(tbl.Rows) != 1 || tbl.Rows[0]["B"] != "2" {
		t.Fatalf("读取 csv 失败: %+v %v", tbl, err)
	}

	xlsxPath := filepath.Join(dir, "rows.xlsx")
	if err := os.WriteFile(xlsxPath, writeWorkbook(t, [][]string{{"A"}, {"x"}}), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	tbl, err = ReadFile(xlsxPath)
	if err != nil || len(tbl.Rows) != 1 || tbl.Rows[0]["A"] != "x" {
		t.Fatalf("读取 xlsx 失败: %+v %v", tbl, err)
	}

	if _, err := ReadFile(filepath.Join(dir, "rows.ods")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("未知格式应返回 ErrUnsupportedFormat，实际 %v", err)
	}
}
