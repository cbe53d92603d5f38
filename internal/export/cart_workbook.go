package export

import (
	"bytes"
	"fmt"

	"github.com/verdantia/storefront-backend/internal/cart"
	"github.com/xuri/excelize/v2"
)

const CartSheet = "Carrito"

var cartHeaders = []interface{}{"Producto", "Presentación", "Precio unitario", "Cantidad", "Peso (kg)", "Importe"}

// CartWorkbook renders the cart lines and totals as an xlsx document.
func CartWorkbook(state cart.State, shipping float64) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CartSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetRow(CartSheet, "A1", &cartHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(CartSheet, "A1", "F1", bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	for _, l := range state.Lines {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{
			l.Name,
			l.Variant,
			l.UnitPrice,
			l.Quantity,
			l.Weight,
			cart.LineTotal(l),
		}
		if err := f.SetSheetRow(CartSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write line %s: %w", l.ProductID, err)
		}
		row++
	}

	row++
	summary := [][]interface{}{
		{"Subtotal", state.Subtotal},
		{"Descuento", state.Discount},
		{"Total", state.Total},
		{"Envío estimado", shipping},
	}
	if state.Coupon != nil {
		summary = append(summary, []interface{}{"Cupón", state.Coupon.Code})
	}
	for _, s := range summary {
		label, _ := excelize.CoordinatesToCellName(5, row)
		value, _ := excelize.CoordinatesToCellName(6, row)
		if err := f.SetCellValue(CartSheet, label, s[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(CartSheet, value, s[1]); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(CartSheet, label, label, bold); err != nil {
			return nil, err
		}
		row++
	}

	if err := f.SetColWidth(CartSheet, "A", "B", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(CartSheet, "C", "F", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}
