package coupon

import (
	"bytes"
	"encoding/json"
)

// ValidateRequest is the body sent to the validation endpoint
type ValidateRequest struct {
	Code string `json:"code"`
}

// Descriptor describes a redeemable coupon. Older validators send only
// the code as a bare string, which decodes into Code.
type Descriptor struct {
	Code               string   `json:"code"`
	Description        string   `json:"description,omitempty"`
	DiscountPercentage float64  `json:"discountPercentage,omitempty"`
	MaxDiscount        *float64 `json:"maxDiscount,omitempty"`
}

func (d *Descriptor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*d = Descriptor{}
		return json.Unmarshal(data, &d.Code)
	}
	type plain Descriptor
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Descriptor(p)
	return nil
}

// ValidateResponse is the service's verdict. The discount terms may come
// at the top level, inside the descriptor, or both; top-level wins.
type ValidateResponse struct {
	Valid              bool        `json:"valid"`
	Coupon             *Descriptor `json:"coupon,omitempty"`
	Description        string      `json:"description,omitempty"`
	DiscountPercentage float64     `json:"discountPercentage"`
	MaxDiscount        *float64    `json:"maxDiscount,omitempty"`
	Message            string      `json:"message,omitempty"`
}

// Terms merges the top-level fields over the descriptor.
func (r *ValidateResponse) Terms() Descriptor {
	var d Descriptor
	if r.Coupon != nil {
		d = *r.Coupon
	}
	if r.Description != "" {
		d.Description = r.Description
	}
	if r.DiscountPercentage != 0 {
		d.DiscountPercentage = r.DiscountPercentage
	}
	if r.MaxDiscount != nil {
		d.MaxDiscount = r.MaxDiscount
	}
	if d.MaxDiscount != nil {
		v := *d.MaxDiscount
		d.MaxDiscount = &v
	}
	return d
}
