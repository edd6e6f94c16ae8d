package stock

import (
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"servicecenter/internal/core/entity"
)

const exportSheet = "Stock"

var exportHeader = []any{
	"Spare Code", "Division", "Spare Description", "CNF Qty", "GRC Qty", "Own Qty", "Sale Price",
}

func exportItems(items []Item) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			it.SpareCode,
			entity.Deref(it.Division),
			entity.Deref(it.SpareDescription),
			entity.Deref(it.CnfQty),
			entity.Deref(it.GrcQty),
			entity.Deref(it.OwnQty),
			price(it.SalePrice),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func price(d *decimal.Decimal) float64 {
	if d == nil {
		return 0
	}
	return d.InexactFloat64()
}
