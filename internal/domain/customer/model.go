// Package customer keeps the dealer and customer master used by complaints and billing.
package customer

import (
	"github.com/shopspring/decimal"

	"servicecenter/internal/core/entity"
)

// Table is the customers table name.
const Table = "customers"

// NameConstraint is the unique constraint on customer names.
const NameConstraint = "customers_name_key"

// Customer is one billing party.
type Customer struct {
	Code string `db:"code" json:"code"`
	Details
	entity.Audit
}

// Details are the editable customer fields.
type Details struct {
	Type              string  `db:"type" json:"type" validate:"required,min=3,max=10"`
	Name              string  `db:"name" json:"name" validate:"required,min=3,max=40"`
	ContactPerson     *string `db:"contact_person" json:"contact_person" validate:"omitempty,max=30"`
	Address1          string  `db:"address1" json:"address1" validate:"required,max=40"`
	Address2          *string `db:"address2" json:"address2" validate:"omitempty,max=40"`
	City              string  `db:"city" json:"city" validate:"required,max=30"`
	Pin               string  `db:"pin" json:"pin" validate:"required,len=6,number"`
	Contact1          string  `db:"contact1" json:"contact1" validate:"required,len=10,number"`
	Contact2          *string `db:"contact2" json:"contact2" validate:"omitempty,len=10,number"`
	GST               *string `db:"gst" json:"gst" validate:"omitempty,len=15,alphanum,uppercase"`
	ConsigneeAddress1 string  `db:"consignee_address1" json:"consignee_address1" validate:"required,max=40"`
	ConsigneeAddress2 *string `db:"consignee_address2" json:"consignee_address2" validate:"omitempty,max=40"`
	ConsigneeCity     string  `db:"consignee_city" json:"consignee_city" validate:"required,max=30"`
	ConsigneePin      string  `db:"consignee_pin" json:"consignee_pin" validate:"required,len=6,number"`

	// Discount percentages per product division.
	DiscountFan    *decimal.Decimal `db:"discount_fan" json:"discount_fan"`
	DiscountCGFan  *decimal.Decimal `db:"discount_cgfan" json:"discount_cgfan"`
	DiscountSDA    *decimal.Decimal `db:"discount_sda" json:"discount_sda"`
	DiscountCGSDA  *decimal.Decimal `db:"discount_cgsda" json:"discount_cgsda"`
	DiscountLT     *decimal.Decimal `db:"discount_lt" json:"discount_lt"`
	DiscountFHP    *decimal.Decimal `db:"discount_fhp" json:"discount_fhp"`
	DiscountPump   *decimal.Decimal `db:"discount_pump" json:"discount_pump"`
	DiscountCGPump *decimal.Decimal `db:"discount_cgpump" json:"discount_cgpump"`
	DiscountLight  *decimal.Decimal `db:"discount_light" json:"discount_light"`
	DiscountWHC    *decimal.Decimal `db:"discount_whc" json:"discount_whc"`
	DiscountCGWHC  *decimal.Decimal `db:"discount_cgwhc" json:"discount_cgwhc"`
}

// Contact is the address block copied onto a complaint.
type Contact struct {
	Address1 string  `json:"address1"`
	Address2 *string `json:"address2"`
	City     string  `json:"city"`
	Pin      string  `json:"pin"`
	Contact1 string  `json:"contact1"`
	Contact2 *string `json:"contact2"`
}

// ContactOf projects c onto a complaint address block.
func ContactOf(c *Customer) Contact {
	return Contact{
		Address1: c.Address1,
		Address2: c.Address2,
		City:     c.City,
		Pin:      c.Pin,
		Contact1: c.Contact1,
		Contact2: c.Contact2,
	}
}
