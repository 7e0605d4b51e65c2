package acceptance

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rmawad/partsync/internal/domain/model"
)

// CityOther is the fallback row used for cities without their own rates.
const CityOther = "other"

// ShippingTable maps city → part size category → shipping cost. Lookups are
// pure: live total display and submission must price identically.
type ShippingTable map[string]map[model.PartSize]decimal.Decimal

// Cost returns the shipping cost for a city and part size. An unknown city
// falls back to the "other" row; if neither has a rate the cost is zero.
func (t ShippingTable) Cost(city string, size model.PartSize) decimal.Decimal {
	key := strings.ToLower(strings.TrimSpace(city))
	if rates, ok := t[key]; ok {
		if cost, ok := rates[size]; ok {
			return cost
		}
	}
	if rates, ok := t[CityOther]; ok {
		if cost, ok := rates[size]; ok {
			return cost
		}
	}
	return decimal.Zero
}

// DefaultShippingTable returns the built-in rate card.
func DefaultShippingTable() ShippingTable {
	return ShippingTable{
		"riyadh": {
			model.PartSizeSmall:  decimal.NewFromInt(25),
			model.PartSizeMedium: decimal.NewFromInt(40),
			model.PartSizeLarge:  decimal.NewFromInt(70),
		},
		"jeddah": {
			model.PartSizeSmall:  decimal.NewFromInt(30),
			model.PartSizeMedium: decimal.NewFromInt(45),
			model.PartSizeLarge:  decimal.NewFromInt(80),
		},
		"dammam": {
			model.PartSizeSmall:  decimal.NewFromInt(30),
			model.PartSizeMedium: decimal.NewFromInt(45),
			model.PartSizeLarge:  decimal.NewFromInt(80),
		},
		CityOther: {
			model.PartSizeSmall:  decimal.NewFromInt(35),
			model.PartSizeMedium: decimal.NewFromInt(55),
			model.PartSizeLarge:  decimal.NewFromInt(95),
		},
	}
}

// LoadShippingTable reads a rate card from a JSON file shaped as
// {"city": {"small": "25", ...}, ...}. City keys are lowercased.
func LoadShippingTable(path string) (ShippingTable, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shipping table: %w", err)
	}

	var raw map[string]map[string]string
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse shipping table: %w", err)
	}

	table := make(ShippingTable, len(raw))
	for city, rates := range raw {
		row := make(map[model.PartSize]decimal.Decimal, len(rates))
		for size, value := range rates {
			cost, err := decimal.NewFromString(value)
			if err != nil {
				return nil, fmt.Errorf("shipping rate %s/%s: %w", city, size, err)
			}
			row[model.PartSize(strings.ToLower(size))] = cost
		}
		table[strings.ToLower(city)] = row
	}
	return table, nil
}
