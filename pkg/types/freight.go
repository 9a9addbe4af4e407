package types

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Level is the administrative level of a state-or-province entry.
type Level int

// Administrative levels, shallowest first.
const (
	LevelProvince Level = iota
	LevelCity
	LevelDistrict
	LevelStreet
)

var levelNames = [...]string{"province", "city", "district", "street"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l]
}

// Option is one entry of a lookup list (countries, provinces). Provinces may
// nest cities and districts under Children.
type Option struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Level    *Level   `json:"level,omitempty"`
	Children []Option `json:"children,omitempty"`
}

// Key returns the option identifier as a selection key.
func (o Option) Key() string {
	return strconv.FormatInt(o.ID, 10)
}

// Price destination field names used for sorting.
const (
	DestinationFieldID                  = "id"
	DestinationFieldCountryName         = "countryName"
	DestinationFieldStateOrProvinceName = "stateOrProvinceName"
	DestinationFieldMinOrderSubtotal    = "minOrderSubtotal"
	DestinationFieldShippingPrice       = "shippingPrice"
	DestinationFieldIsEnabled           = "isEnabled"
	DestinationFieldNote                = "note"
)

// DestinationKeywordFilter is the filter key of the destination keyword
// search; it matches country and region names.
const DestinationKeywordFilter = "name"

// FreightTemplateScopeKey is the top-level request key binding destination
// queries and mutations to one freight template.
const FreightTemplateScopeKey = "freightTemplateId"

// PriceDestination is one destination pricing row of a freight template.
type PriceDestination struct {
	ID                   int64           `json:"id"`
	FreightTemplateID    int64           `json:"freightTemplateId"`
	CountryID            int64           `json:"countryId"`
	CountryName          string          `json:"countryName"`
	StateOrProvinceID    *int64          `json:"stateOrProvinceId,omitempty"`
	StateOrProvinceName  string          `json:"stateOrProvinceName,omitempty"`
	StateOrProvinceLevel *Level          `json:"stateOrProvinceLevel,omitempty"`
	MinOrderSubtotal     decimal.Decimal `json:"minOrderSubtotal"`
	ShippingPrice        decimal.Decimal `json:"shippingPrice"`
	IsEnabled            bool            `json:"isEnabled"`
	Note                 string          `json:"note"`
}

// Key returns the record identifier used for mutations.
func (p PriceDestination) Key() string {
	return strconv.FormatInt(p.ID, 10)
}

// Form returns the editable values of the row.
func (p PriceDestination) Form() PriceDestinationForm {
	return PriceDestinationForm{
		CountryID:         p.CountryID,
		StateOrProvinceID: p.StateOrProvinceID,
		MinOrderSubtotal:  p.MinOrderSubtotal,
		ShippingPrice:     p.ShippingPrice,
		Note:              p.Note,
		IsEnabled:         p.IsEnabled,
	}
}

// PriceDestinationForm holds the modal form values for a price destination.
// Prices are validated as numbers through a decimal type func registered on
// the validator.
type PriceDestinationForm struct {
	CountryID         int64           `json:"countryId" validate:"required,gt=0"`
	StateOrProvinceID *int64          `json:"stateOrProvinceId,omitempty"`
	MinOrderSubtotal  decimal.Decimal `json:"minOrderSubtotal" validate:"gte=0"`
	ShippingPrice     decimal.Decimal `json:"shippingPrice" validate:"gte=0"`
	Note              string          `json:"note" validate:"max=450"`
	IsEnabled         bool            `json:"isEnabled"`
}

// ParentKey returns the selected country as a cascade key, empty when none.
func (f PriceDestinationForm) ParentKey() string {
	if f.CountryID <= 0 {
		return ""
	}
	return strconv.FormatInt(f.CountryID, 10)
}
