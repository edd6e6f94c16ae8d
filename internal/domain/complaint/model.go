// Package complaint manages service complaints from CRM feeds and manual entry.
package complaint

import (
	"time"

	"servicecenter/internal/core/entity"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
)

// Table is the complaints table name.
const Table = "complaints"

// Lifecycle values.
const (
	StatusFresh     = "FRESH"
	StatusNew       = "NEW"
	StatusClosed    = "CLOSED"
	StatusCancelled = "CANCELLED"

	PriorityEscalation   = "ESCALATION"
	PriorityHOEscalation = "HO-ESCALATION"
	PriorityMDEscalation = "MD-ESCALATION"

	ActionMailToHO  = "MAIL TO BE SENT TO HO"
	ActionMailSent  = "MAIL SENT TO HO"
	ActionRFRRaised = "RFR RAISED"
)

// Entry types accepted by Create.
const (
	// EntryNew numbers the complaint from the N family.
	EntryNew = "NEW"
	// EntryCRM keeps the number issued by the manufacturer's CRM.
	EntryCRM = "CRM"
)

// Complaint is one customer complaint.
type Complaint struct {
	ComplaintNumber     string     `db:"complaint_number" json:"complaint_number" validate:"required,max=15"`
	ComplaintHead       string     `db:"complaint_head" json:"complaint_head" validate:"required,max=10"`
	ComplaintDate       time.Time  `db:"complaint_date" json:"complaint_date" validate:"required"`
	ComplaintTime       *string    `db:"complaint_time" json:"complaint_time,omitempty" validate:"omitempty,max=8"`
	ComplaintType       string     `db:"complaint_type" json:"complaint_type" validate:"required,max=10"`
	ComplaintStatus     string     `db:"complaint_status" json:"complaint_status" validate:"required,max=15"`
	ComplaintPriority   string     `db:"complaint_priority" json:"complaint_priority" validate:"required,max=15"`
	ActionHead          string     `db:"action_head" json:"action_head" validate:"required,max=40"`
	ActionBy            string     `db:"action_by" json:"action_by" validate:"required,max=30"`
	Technician          string     `db:"technician" json:"technician" validate:"required,max=30"`
	CustomerType        string     `db:"customer_type" json:"customer_type" validate:"required,max=20"`
	CustomerName        *string    `db:"customer_name" json:"customer_name,omitempty" validate:"omitempty,max=40"`
	CustomerAddress1    *string    `db:"customer_address1" json:"customer_address1,omitempty" validate:"omitempty,max=40"`
	CustomerAddress2    *string    `db:"customer_address2" json:"customer_address2,omitempty" validate:"omitempty,max=40"`
	CustomerCity        *string    `db:"customer_city" json:"customer_city,omitempty" validate:"omitempty,max=30"`
	CustomerPincode     *string    `db:"customer_pincode" json:"customer_pincode,omitempty" validate:"omitempty,len=6,number"`
	CustomerContact1    string     `db:"customer_contact1" json:"customer_contact1" validate:"required,len=10,number"`
	CustomerContact2    *string    `db:"customer_contact2" json:"customer_contact2,omitempty" validate:"omitempty,len=10,number"`
	ProductDivision     string     `db:"product_division" json:"product_division" validate:"required,max=20"`
	ProductModel        *string    `db:"product_model" json:"product_model,omitempty" validate:"omitempty,max=40"`
	ProductSerialNumber *string    `db:"product_serial_number" json:"product_serial_number,omitempty" validate:"omitempty,max=30"`
	PurchaseDate        *time.Time `db:"purchase_date" json:"purchase_date,omitempty"`
	CurrentStatus       string     `db:"current_status" json:"current_status" validate:"required,max=50"`
	SparePending        string     `db:"spare_pending" json:"spare_pending" validate:"required,oneof=Y N"`
	Status              string     `db:"status" json:"status" validate:"omitempty,max=15"`
	FinalStatus         string     `db:"final_status" json:"final_status" validate:"required,oneof=Y N"`
	Remark              *string    `db:"remark" json:"remark,omitempty" validate:"omitempty,max=255"`
	RFRNumber           *string    `db:"rfr_number" json:"rfr_number,omitempty"`
	RFRDate             *time.Time `db:"rfr_date" json:"rfr_date,omitempty"`
	RFRType             *string    `db:"rfr_type" json:"rfr_type,omitempty"`
	ProductType         *string    `db:"product_type" json:"product_type,omitempty"`
	entity.Audit
}

// IsClosed reports whether the complaint reached its final state.
func (c *Complaint) IsClosed() bool {
	return c.FinalStatus == entity.Yes
}

// CreateInput is a manually entered complaint.
type CreateInput struct {
	// ComplaintNumber is required for CRM entries and ignored otherwise.
	ComplaintNumber     string     `json:"complaint_number" validate:"omitempty,max=15"`
	ComplaintHead       string     `json:"complaint_head" validate:"required,max=10"`
	ComplaintType       string     `json:"complaint_type" validate:"required,max=10"`
	ComplaintPriority   string     `json:"complaint_priority" validate:"required,max=15"`
	ActionHead          string     `json:"action_head" validate:"required,max=40"`
	ActionBy            string     `json:"action_by" validate:"required,max=30"`
	Technician          string     `json:"technician" validate:"required,max=30"`
	CustomerType        string     `json:"customer_type" validate:"required,max=20"`
	CustomerName        *string    `json:"customer_name" validate:"omitempty,max=40"`
	CustomerAddress1    *string    `json:"customer_address1" validate:"omitempty,max=40"`
	CustomerAddress2    *string    `json:"customer_address2" validate:"omitempty,max=40"`
	CustomerCity        *string    `json:"customer_city" validate:"omitempty,max=30"`
	CustomerPincode     *string    `json:"customer_pincode" validate:"omitempty,len=6,number"`
	CustomerContact1    string     `json:"customer_contact1" validate:"required,len=10,number"`
	CustomerContact2    *string    `json:"customer_contact2" validate:"omitempty,len=10,number"`
	ProductDivision     string     `json:"product_division" validate:"required,max=20"`
	ProductModel        *string    `json:"product_model" validate:"omitempty,max=40"`
	ProductSerialNumber *string    `json:"product_serial_number" validate:"omitempty,max=30"`
	PurchaseDate        *time.Time `json:"purchase_date"`
	CurrentStatus       string     `json:"current_status" validate:"required,max=50"`
	Remark              *string    `json:"remark" validate:"omitempty,max=255"`
}

// Patch lists the editable fields. Nil fields are left untouched.
type Patch struct {
	ComplaintStatus     *string    `db:"complaint_status" json:"complaint_status" validate:"omitempty,max=15"`
	ComplaintPriority   *string    `db:"complaint_priority" json:"complaint_priority" validate:"omitempty,max=15"`
	ActionHead          *string    `db:"action_head" json:"action_head" validate:"omitempty,max=40"`
	ActionBy            *string    `db:"action_by" json:"action_by" validate:"omitempty,max=30"`
	Technician          *string    `db:"technician" json:"technician" validate:"omitempty,max=30"`
	CustomerName        *string    `db:"customer_name" json:"customer_name" validate:"omitempty,max=40"`
	CustomerAddress1    *string    `db:"customer_address1" json:"customer_address1" validate:"omitempty,max=40"`
	CustomerAddress2    *string    `db:"customer_address2" json:"customer_address2" validate:"omitempty,max=40"`
	CustomerCity        *string    `db:"customer_city" json:"customer_city" validate:"omitempty,max=30"`
	CustomerPincode     *string    `db:"customer_pincode" json:"customer_pincode" validate:"omitempty,len=6,number"`
	CustomerContact1    *string    `db:"customer_contact1" json:"customer_contact1" validate:"omitempty,len=10,number"`
	CustomerContact2    *string    `db:"customer_contact2" json:"customer_contact2" validate:"omitempty,len=10,number"`
	ProductModel        *string    `db:"product_model" json:"product_model" validate:"omitempty,max=40"`
	ProductSerialNumber *string    `db:"product_serial_number" json:"product_serial_number" validate:"omitempty,max=30"`
	PurchaseDate        *time.Time `db:"purchase_date" json:"purchase_date"`
	CurrentStatus       *string    `db:"current_status" json:"current_status" validate:"omitempty,max=50"`
	SparePending        *string    `db:"spare_pending" json:"spare_pending" validate:"omitempty,oneof=Y N"`
	FinalStatus         *string    `db:"final_status" json:"final_status" validate:"omitempty,oneof=Y N"`
	Remark              *string    `db:"remark" json:"remark" validate:"omitempty,max=255"`
}

// Set returns the columns carried by the patch.
func (p *Patch) Set() map[string]any {
	return entity.AssignedColumns(p)
}

// RFRInput raises a replacement request on a complaint.
type RFRInput struct {
	RFRType     string  `json:"rfr_type" validate:"required,max=20"`
	ProductType string  `json:"product_type" validate:"required,max=30"`
	Remark      *string `json:"remark" validate:"omitempty,max=255"`
}

// Query is the complaint enquiry.
type Query struct {
	ProductDivision     string `form:"product_division"`
	ComplaintType       string `form:"complaint_type"`
	ComplaintPriority   string `form:"complaint_priority"`
	ActionHead          string `form:"action_head"`
	SparePending        string `form:"spare_pending"`
	FinalStatus         string `form:"final_status"`
	ActionBy            string `form:"action_by"`
	ComplaintNumber     string `form:"complaint_number"`
	CustomerContact     string `form:"customer_contact"`
	CustomerName        string `form:"customer_name"`
	ComplaintHead       string `form:"complaint_head"`
	ComplaintStatus     string `form:"complaint_status"`
	ProductSerialNumber string `form:"product_serial_number"`

	AllComplaints          string `form:"all_complaints"`
	SparePendingComplaints string `form:"spare_pending_complaints"`
	CRMOpenComplaints      string `form:"crm_open_complaints"`
	EscalationComplaints   string `form:"escalation_complaints"`
	MailToBeSentComplaints string `form:"mail_to_be_sent_complaints"`

	domain.Page
}

func open() filter.Item {
	return filter.Item{Field: "final_status", Operator: filter.Equal, Value: entity.No}
}

// Filters compiles the enquiry into predicates.
func (q Query) Filters() *filter.Set {
	set := new(filter.Set).
		Eq("product_division", q.ProductDivision).
		Eq("complaint_type", q.ComplaintType).
		Eq("complaint_priority", q.ComplaintPriority).
		Eq("action_head", q.ActionHead).
		Eq("spare_pending", q.SparePending).
		Eq("final_status", q.FinalStatus).
		Eq("action_by", q.ActionBy).
		Contains("complaint_number", q.ComplaintNumber).
		Any(
			filter.Item{Field: "customer_contact1", Operator: filter.Contains, Value: q.CustomerContact},
			filter.Item{Field: "customer_contact2", Operator: filter.Contains, Value: q.CustomerContact},
		).
		Contains("customer_name", q.CustomerName).
		Eq("complaint_head", q.ComplaintHead).
		Eq("complaint_status", q.ComplaintStatus).
		Contains("product_serial_number", q.ProductSerialNumber)

	set.Flag(q.AllComplaints == entity.No, open())
	set.Flag(q.SparePendingComplaints == entity.Yes,
		filter.Item{Field: "spare_pending", Operator: filter.Equal, Value: entity.Yes},
		open(),
	)
	set.Flag(q.CRMOpenComplaints == entity.Yes,
		open(),
		filter.Item{Field: "complaint_number", Operator: filter.NotHasPrefix, Value: "N"},
		filter.Item{Field: "complaint_status", Operator: filter.NotInList, Value: []string{StatusClosed, StatusNew, StatusCancelled}},
	)
	set.Flag(q.EscalationComplaints == entity.Yes,
		open(),
		filter.Item{Field: "complaint_priority", Operator: filter.InList, Value: []string{PriorityEscalation, PriorityHOEscalation, PriorityMDEscalation}},
	)
	set.Flag(q.MailToBeSentComplaints == entity.Yes,
		open(),
		filter.Item{Field: "action_head", Operator: filter.Equal, Value: ActionMailToHO},
	)
	return set
}
