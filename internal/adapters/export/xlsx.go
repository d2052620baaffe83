// Package export renders purchases for the admin in spreadsheet form.
package export

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/newmobile/internal/domain"
)

const sheetName = "Ventas"

var header = []any{
	"purchase_id", "purchase_date", "customer", "mobile", "payment_method",
	"product_id", "product", "brand", "quantity", "cost_price", "selling_price",
	"item_cost", "item_revenue", "item_profit",
	"purchase_revenue", "purchase_cost", "purchase_profit",
}

// PurchasesXLSX writes one row per purchase item, purchase totals repeated on each row.
func PurchasesXLSX(w io.Writer, purchases []domain.Purchase) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "write header")
	}
	row := 2
	for _, p := range purchases {
		for _, it := range p.PurchaseItems {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []any{
				p.ID.String(), p.PurchaseDate.Format("2006-01-02 15:04:05"), p.CustomerName, p.CustomerMobile, string(p.PaymentMethod),
				it.ProductID.String(), it.ProductName, it.Brand, it.Quantity,
				it.CostPrice.InexactFloat64(), it.SellingPrice.InexactFloat64(),
				it.TotalCost.InexactFloat64(), it.TotalRevenue.InexactFloat64(), it.Profit.InexactFloat64(),
				p.TotalRevenue.InexactFloat64(), p.TotalCost.InexactFloat64(), p.Profit.InexactFloat64(),
			}
			if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
				return errors.Wrapf(err, "write row %d", row)
			}
			row++
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return errors.Wrap(err, "freeze header")
	}
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write xlsx")
	}
	return nil
}
