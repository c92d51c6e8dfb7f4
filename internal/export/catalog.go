// Package export renders catalog spreadsheets for the admin area.
package export

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/tealeg/xlsx"

	"github.com/xenking/storefront/internal/domain/product"
)

// ContentType is the MIME type of the workbook written by Catalog.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var catalogHeader = []string{"ID", "Name", "Description", "Qty", "Price", "PriceOff", "Image"}

// Catalog writes products as a single-sheet XLSX workbook.
func Catalog(w io.Writer, products []product.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return errors.Wrap(err, "add sheet")
	}

	header := sheet.AddRow()
	for _, h := range catalogHeader {
		header.AddCell().SetString(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt64(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetInt(p.Qty)
		row.AddCell().SetFloat(p.Price.InexactFloat64())
		row.AddCell().SetFloat(p.PriceOff.InexactFloat64())
		row.AddCell().SetString(p.Img)
	}

	if err := file.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}
