package cart

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/verdantia/storefront-backend/pkg/logger"
)

// Field names accepted on read, canonical first. Earlier storefront builds
// persisted Spanish keys and snake_case ids.
var (
	idKeys       = []string{"productId", "product_id", "id"}
	nameKeys     = []string{"name", "nombre", "displayName", "title"}
	priceKeys    = []string{"unitPrice", "price", "precio"}
	quantityKeys = []string{"quantity", "cantidad"}
	stockKeys    = []string{"stock", "availableStock", "stock_quantity", "stockQuantity"}
	weightKeys   = []string{"weight", "peso"}
	imageKeys    = []string{"imageUrl", "image_url", "image", "imagen"}
	variantKeys  = []string{"variant", "presentation", "presentacion"}
	categoryKeys = []string{"category", "categoria"}
)

// RepairStats counts what happened to the stored lines.
type RepairStats struct {
	Kept    int `json:"kept"`
	Merged  int `json:"merged"`
	Dropped int `json:"dropped"`
}

// Repair turns an untrusted decoded blob into a consistent State.
//
// A blob that is not an object, or whose lines are not an array, yields an
// empty cart. Otherwise each line is kept only if it has an id, a name, a
// non-negative price and a positive integer quantity; anything else is
// dropped without error. The coupon is never carried over since it cannot
// be revalidated offline.
func Repair(blob any) State {
	s, _ := RepairWithStats(blob)
	return s
}

// RepairWithStats is Repair plus counts of kept, merged and dropped lines.
func RepairWithStats(blob any) (State, RepairStats) {
	var stats RepairStats
	obj, ok := blob.(map[string]any)
	if !ok {
		return Empty(), stats
	}
	raw, present := obj["lines"]
	if !present {
		raw = obj["items"]
	}
	entries, ok := raw.([]any)
	if !ok {
		return Empty(), stats
	}

	s := Empty()
	for _, entry := range entries {
		line, ok := repairLine(entry)
		if !ok {
			stats.Dropped++
			continue
		}
		if idx := s.Find(line.ProductID); idx >= 0 {
			existing := &s.Lines[idx]
			existing.Quantity += line.Quantity
			existing.Stock = max(existing.Stock, line.Stock, existing.Quantity)
			stats.Merged++
			continue
		}
		s.Lines = append(s.Lines, line)
	}
	stats.Kept = len(s.Lines)

	if stats.Dropped > 0 || stats.Merged > 0 {
		logger.Debug("Repaired stored cart lines", map[string]interface{}{
			"dropped": stats.Dropped,
			"merged":  stats.Merged,
			"kept":    stats.Kept,
		})
	}
	return Recalculate(s), stats
}

func repairLine(v any) (Line, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Line{}, false
	}

	id, ok := idField(m)
	if !ok {
		return Line{}, false
	}
	name, ok := stringField(m, nameKeys)
	if !ok {
		return Line{}, false
	}
	price, ok := numberField(m, priceKeys)
	if !ok || price < 0 {
		return Line{}, false
	}
	qty, ok := intField(m, quantityKeys)
	if !ok || qty < 1 {
		return Line{}, false
	}

	// A missing or stale stock ceiling falls back to the current quantity:
	// stock cannot be reconfirmed offline.
	stock := qty
	if st, ok := intField(m, stockKeys); ok && st > qty {
		stock = st
	}
	weight, ok := numberField(m, weightKeys)
	if !ok || weight < 0 {
		weight = 0
	}
	image, _ := stringField(m, imageKeys)
	variant, _ := stringField(m, variantKeys)
	category, _ := stringField(m, categoryKeys)

	return Line{
		ProductID: id,
		Name:      name,
		UnitPrice: price,
		Quantity:  qty,
		Stock:     stock,
		Weight:    weight,
		ImageURL:  image,
		Variant:   variant,
		Category:  category,
	}, true
}

// lookup returns the value of the first key present with a non-null value.
func lookup(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func idField(m map[string]any) (string, bool) {
	v, ok := lookup(m, idKeys)
	if !ok {
		return "", false
	}
	var id string
	switch t := v.(type) {
	case string:
		id = strings.TrimSpace(t)
	case json.Number:
		id = t.String()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		id = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return "", false
	}
	return id, id != ""
}

func stringField(m map[string]any, keys []string) (string, bool) {
	v, ok := lookup(m, keys)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func numberField(m map[string]any, keys []string) (float64, bool) {
	v, ok := lookup(m, keys)
	if !ok {
		return 0, false
	}
	var f float64
	var err error
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// intField parses a number and truncates it toward zero.
func intField(m map[string]any, keys []string) (int, bool) {
	f, ok := numberField(m, keys)
	if !ok || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(math.Trunc(f)), true
}
