package cart

import (
	"bytes"
	"encoding/json"
)

// lineRecord is the persisted shape of a Line. Older clients read the
// quantity from "cantidad", so both fields are written with the same value.
type lineRecord struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Cantidad  int     `json:"cantidad"`
	Stock     int     `json:"stock"`
	Weight    float64 `json:"weight"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	Variant   string  `json:"variant,omitempty"`
	Category  string  `json:"category,omitempty"`
}

type snapshotRecord struct {
	Lines     []lineRecord `json:"lines"`
	Coupon    *Coupon      `json:"coupon"`
	Discount  float64      `json:"discount"`
	Subtotal  float64      `json:"subtotal"`
	Total     float64      `json:"total"`
	ItemCount int          `json:"itemCount"`
}

// Encode serializes the full state, derived totals included.
func Encode(s State) ([]byte, error) {
	rec := snapshotRecord{
		Lines:     make([]lineRecord, 0, len(s.Lines)),
		Coupon:    s.Coupon,
		Discount:  s.Discount,
		Subtotal:  s.Subtotal,
		Total:     s.Total,
		ItemCount: s.ItemCount,
	}
	for _, l := range s.Lines {
		rec.Lines = append(rec.Lines, lineRecord{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Cantidad:  l.Quantity,
			Stock:     l.Stock,
			Weight:    l.Weight,
			ImageURL:  l.ImageURL,
			Variant:   l.Variant,
			Category:  l.Category,
		})
	}
	return json.Marshal(rec)
}

// Decode parses a persisted blob into untyped JSON values for Repair.
// Empty or unparseable input yields nil.
func Decode(data []byte) any {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}
