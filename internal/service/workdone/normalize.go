package workdone

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"tender-backend/internal/constants"
	"tender-backend/internal/storage"
)

// RawItem is a line item exactly as the client sent it. Numbers may be JSON numbers or
// strings, dimensions may be nested under "dimensions" or flattened onto the item.
type RawItem map[string]any

// Normalize turns a raw line item into the stored shape. Missing or unparsable numbers
// become 0 and the quantity is rounded to storage.QuantityScale places; empty unit and
// contractor fall back to their defaults. A nested dimension
// wins over its flattened twin.
func Normalize(raw RawItem) storage.LineItem {
	item := storage.LineItem{
		ItemDescription:   toString(raw["item_description"]),
		Quantity:          storage.RoundQuantity(toNumber(raw["quantity"])),
		Unit:              toString(raw["unit"]),
		Remarks:           toString(raw["remarks"]),
		ContractorDetails: toString(raw["contractor_details"]),
	}

	nested, _ := raw["dimensions"].(map[string]any)
	dim := func(key string) float64 {
		if v, ok := nested[key]; ok && v != nil {
			return toNumber(v)
		}
		return toNumber(raw[key])
	}
	item.Dimensions = storage.Dimensions{
		Length:  dim("length"),
		Breadth: dim("breadth"),
		Height:  dim("height"),
	}

	if item.Unit == "" {
		item.Unit = constants.DefaultUnit
	}
	if item.ContractorDetails == "" {
		item.ContractorDetails = constants.DefaultContractorDetails
	}

	return item
}

func toNumber(v any) float64 {
	var f float64

	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	return f
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
