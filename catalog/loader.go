package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/shoprec/core"
)

// 目录快照 CSV 的列名。
const (
	ColumnID       = "product_id"
	ColumnName     = "product_name"
	ColumnCategory = "category"
	ColumnBrand    = "brand"
	ColumnFeatures = "features"
	ColumnPrice    = "price"
)

// LoadCSVFile 读取目录快照文件并构建 Index。
func LoadCSVFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// LoadCSV 从 CSV 读取目录快照。第一行必须是表头，必须包含 product_id 列；
// 其他文本列缺失或为空时按空串处理，price 为空时为 0。
func LoadCSV(r io.Reader) (*Index, error) {
	products, err := ReadProducts(r)
	if err != nil {
		return nil, err
	}
	return New(products)
}

// ReadProducts 解析 CSV 行为物品记录，不做去重校验。
func ReadProducts(r io.Reader) ([]core.Product, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, core.ErrEmptyCatalog
		}
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	cols := columnIndex(header)
	if _, ok := cols[ColumnID]; !ok {
		return nil, fmt.Errorf("catalog header missing %q column", ColumnID)
	}

	var products []core.Product
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog line %d: %w", line, err)
		}
		p := core.Product{
			ID:       field(rec, cols, ColumnID),
			Name:     field(rec, cols, ColumnName),
			Category: field(rec, cols, ColumnCategory),
			Brand:    field(rec, cols, ColumnBrand),
			Features: field(rec, cols, ColumnFeatures),
		}
		if raw := field(rec, cols, ColumnPrice); raw != "" {
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("catalog line %d: parse price %q: %w", line, raw, err)
			}
			p.Price = price
		}
		products = append(products, p)
	}
	return products, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[HeaderKey(h)] = i
	}
	return cols
}

// HeaderKey 规范化 CSV 表头单元格。Excel 导出的文件首列常带 UTF-8 BOM，需要先去掉。
func HeaderKey(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
