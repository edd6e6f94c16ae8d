package complaint

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"servicecenter/internal/core/apperror"
	appctx "servicecenter/internal/core/context"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/core/numerator"
	"servicecenter/internal/core/tx"
	"servicecenter/internal/core/validate"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/filter"
	"servicecenter/internal/domain/mail"
	"servicecenter/internal/domain/reconcile"
	"servicecenter/pkg/logger"
)

// UploadSchema is the complaint feed: new CRM complaints are inserted, known ones left alone,
// and open CRM complaints missing from the feed are closed.
func UploadSchema() reconcile.Schema {
	return reconcile.Schema{
		Entity:     "Complaints",
		KeyColumns: []string{"complaint_number"},
		Upper: []string{
			"complaint_number", "complaint_head", "complaint_type", "complaint_status",
			"complaint_priority", "action_head", "action_by", "technician",
			"customer_type", "product_division",
		},
		Defaults: map[string]string{
			"spare_pending": entity.No,
			"status":        StatusFresh,
			"final_status":  entity.No,
		},
		ProtectedPrefix: numerator.Complaint.Prefix,
		Policy: reconcile.Policy{
			OnExisting:   reconcile.Ignore,
			CloseMissing: true,
		},
	}
}

// Config holds service settings.
type Config struct {
	// DefaultUploader stamps uploads made without an authenticated user.
	DefaultUploader string
}

// Service implements complaint use cases.
type Service struct {
	txm    tx.Manager
	repo   Repository
	gen    numerator.Generator
	engine *reconcile.Engine[Complaint]
	sender mail.Sender
	cfg    Config
	now    func() time.Time
}

// NewService creates the complaint service.
func NewService(
	txm tx.Manager,
	repo Repository,
	gen numerator.Generator,
	feed reconcile.Store[Complaint],
	sender mail.Sender,
	cfg Config,
) *Service {
	return &Service{
		txm:    txm,
		repo:   repo,
		gen:    gen,
		engine: reconcile.NewEngine(txm, UploadSchema(), feed),
		sender: sender,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *Service) username(ctx context.Context) string {
	if u := appctx.GetUsername(ctx); u != "" {
		return u
	}
	return s.cfg.DefaultUploader
}

// Upload reconciles a complaint feed.
func (s *Service) Upload(ctx context.Context, data []byte, filename string) (reconcile.Result, error) {
	return s.engine.Run(ctx, reconcile.Input{
		Data:     data,
		Filename: filename,
		Defaults: map[string]string{"created_by": s.username(ctx)},
	})
}

// Enquiry lists complaints matching q. Store failures surface as errors.
func (s *Service) Enquiry(ctx context.Context, q Query) (domain.ListResult[Complaint], error) {
	return s.repo.List(ctx, q.Filters(), q.Page.Normalize(domain.DefaultLimit))
}

// Create registers a complaint. EntryNew draws the number from the complaint family,
// EntryCRM keeps the supplied one.
func (s *Service) Create(ctx context.Context, in CreateInput, entryType string) (*Complaint, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	now := s.now()
	c := &Complaint{
		ComplaintHead:       strings.ToUpper(in.ComplaintHead),
		ComplaintDate:       entity.DateOf(now),
		ComplaintTime:       entity.Ptr(now.Format(time.TimeOnly)),
		ComplaintType:       strings.ToUpper(in.ComplaintType),
		ComplaintStatus:     StatusNew,
		ComplaintPriority:   strings.ToUpper(in.ComplaintPriority),
		ActionHead:          strings.ToUpper(in.ActionHead),
		ActionBy:            strings.ToUpper(in.ActionBy),
		Technician:          strings.ToUpper(in.Technician),
		CustomerType:        strings.ToUpper(in.CustomerType),
		CustomerName:        in.CustomerName,
		CustomerAddress1:    in.CustomerAddress1,
		CustomerAddress2:    in.CustomerAddress2,
		CustomerCity:        in.CustomerCity,
		CustomerPincode:     in.CustomerPincode,
		CustomerContact1:    in.CustomerContact1,
		CustomerContact2:    in.CustomerContact2,
		ProductDivision:     strings.ToUpper(in.ProductDivision),
		ProductModel:        in.ProductModel,
		ProductSerialNumber: in.ProductSerialNumber,
		PurchaseDate:        in.PurchaseDate,
		CurrentStatus:       in.CurrentStatus,
		SparePending:        entity.No,
		Status:              StatusFresh,
		FinalStatus:         entity.No,
		Remark:              in.Remark,
	}
	c.StampCreate(s.username(ctx), now)

	log := logger.FromContext(ctx).WithComponent("complaint")

	switch entryType {
	case EntryNew:
		number, err := numerator.CreateWithRetry(ctx, s.txm, s.gen, numerator.Complaint,
			func(ctx context.Context, code string) error {
				c.ComplaintNumber = code
				return s.repo.Create(ctx, c)
			})
		if err != nil {
			return nil, err
		}
		log.Infow("complaint created", "complaint_number", number, "entry_type", entryType)
		return c, nil

	case EntryCRM:
		number := strings.ToUpper(strings.TrimSpace(in.ComplaintNumber))
		if number == "" {
			return nil, apperror.NewValidation("complaint_number is required for CRM entries")
		}
		if numerator.Complaint.Matches(number) {
			return nil, apperror.NewValidation("CRM complaint numbers must not use the internal prefix").
				WithDetail("complaint_number", number)
		}
		c.ComplaintNumber = number
		if err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.repo.Create(ctx, c)
		}); err != nil {
			return nil, err
		}
		log.Infow("complaint created", "complaint_number", number, "entry_type", entryType)
		return c, nil
	}
	return nil, apperror.NewValidation(fmt.Sprintf("unknown entry type %q", entryType)).
		WithDetail("allowed", []string{EntryNew, EntryCRM})
}

// Get returns one complaint.
func (s *Service) Get(ctx context.Context, number string) (*Complaint, error) {
	return s.repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

// Update applies a patch. Fields absent from the patch keep their values.
func (s *Service) Update(ctx context.Context, number string, patch Patch) (*Complaint, error) {
	if err := validate.Struct(&patch); err != nil {
		return nil, err
	}
	set := patch.Set()
	if len(set) == 0 {
		return nil, apperror.NewValidation("nothing to update")
	}
	set["updated_by"] = s.username(ctx)
	set["updated_at"] = s.now()

	number = strings.ToUpper(strings.TrimSpace(number))
	var out *Complaint
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByNumber(ctx, number); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, number, set); err != nil {
			return err
		}
		var err error
		out, err = s.repo.GetByNumber(ctx, number)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).WithComponent("complaint").Infow("complaint updated",
		"complaint_number", number, "fields", len(set)-2)
	return out, nil
}

// GetForRFR returns an open complaint; closed ones fail with COMPLAINT_CLOSED.
func (s *Service) GetForRFR(ctx context.Context, number string) (*Complaint, error) {
	c, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if c.IsClosed() {
		return nil, apperror.NewBusinessRule(apperror.CodeComplaintClosed, "Complaint Closed").
			WithDetail("complaint_number", c.ComplaintNumber)
	}
	return c, nil
}

// CreateRFR raises a replacement request and returns its number.
func (s *Service) CreateRFR(ctx context.Context, number string, in RFRInput) (string, error) {
	if err := validate.Struct(&in); err != nil {
		return "", err
	}
	number = strings.ToUpper(strings.TrimSpace(number))

	var rfr string
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.GetForRFR(ctx, number); err != nil {
			return err
		}
		next, err := s.gen.Next(ctx, numerator.RFR)
		if err != nil {
			return fmt.Errorf("next rfr number: %w", err)
		}
		rfr = next

		now := s.now()
		set := map[string]any{
			"rfr_number":   rfr,
			"rfr_date":     entity.DateOf(now),
			"rfr_type":     strings.ToUpper(in.RFRType),
			"product_type": strings.ToUpper(in.ProductType),
			"updated_by":   s.username(ctx),
			"updated_at":   now,
		}
		if in.Remark != nil {
			set["remark"] = *in.Remark
		}
		return s.repo.Update(ctx, number, set)
	})
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).WithComponent("complaint").Infow("rfr created",
		"complaint_number", number, "rfr_number", rfr)
	return rfr, nil
}

// Reallocate moves open complaints between technicians.
func (s *Service) Reallocate(ctx context.Context, from, to string, numbers []string) (int64, error) {
	from, to = strings.ToUpper(strings.TrimSpace(from)), strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return 0, apperror.NewValidation("both technicians are required")
	}
	if from == to {
		return 0, apperror.NewValidation("complaints are already allocated to " + to)
	}

	var moved int64
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		moved, err = s.repo.Reallocate(ctx, from, to, numbers, s.username(ctx))
		return err
	})
	if err != nil {
		return 0, err
	}
	logger.FromContext(ctx).WithComponent("complaint").Infow("complaints reallocated",
		"from", from, "to", to, "count", moved)
	return moved, nil
}

// MarkMailSent moves complaints waiting for the head-office mail to the sent action head.
func (s *Service) MarkMailSent(ctx context.Context, numbers []string) (int64, error) {
	if len(numbers) == 0 {
		return 0, apperror.NewValidation("no complaints selected")
	}
	var changed int64
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		changed, err = s.repo.SetActionHead(ctx, numbers, ActionMailToHO, ActionMailSent, s.username(ctx))
		return err
	})
	return changed, err
}

// PendingMail assembles the pending-complaint mail for one technician.
// It returns nil when nothing is pending.
func (s *Service) PendingMail(ctx context.Context, to mail.Recipient) (*mail.Message, error) {
	set := new(filter.Set).
		Eq("technician", strings.ToUpper(to.Name)).
		Eq("final_status", entity.No)
	page := domain.Page{Limit: domain.MaxLimit}

	list, err := s.repo.List(ctx, set, page)
	if err != nil {
		return nil, err
	}
	if len(list.Items) == 0 {
		return nil, nil
	}

	var body bytes.Buffer
	if err := pendingTemplate.Execute(&body, pendingView{Name: to.Name, Complaints: list.Items}); err != nil {
		return nil, fmt.Errorf("render pending mail: %w", err)
	}
	return &mail.Message{
		Subject: fmt.Sprintf("Pending complaints: %d", len(list.Items)),
		To:      []mail.Recipient{to},
		HTML:    body.String(),
	}, nil
}

// SendPendingMail mails every recipient their pending complaints and returns how many mails went out.
func (s *Service) SendPendingMail(ctx context.Context, recipients []mail.Recipient) (int, error) {
	log := logger.FromContext(ctx).WithComponent("complaint")
	sent := 0
	for _, r := range recipients {
		msg, err := s.PendingMail(ctx, r)
		if err != nil {
			return sent, err
		}
		if msg == nil {
			continue
		}
		if err := s.sender.Send(ctx, *msg); err != nil {
			return sent, err
		}
		sent++
	}
	log.Infow("pending complaint mails sent", "recipients", len(recipients), "sent", sent)
	return sent, nil
}

type pendingView struct {
	Name       string
	Complaints []Complaint
}

var pendingTemplate = template.Must(template.New("pending").Funcs(template.FuncMap{
	"date":  func(t time.Time) string { return t.Format("02-01-2006") },
	"deref": entity.Deref[string],
}).Parse(`<p>Dear {{.Name}},</p>
<p>The following complaints are pending with you:</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Complaint</th><th>Date</th><th>Customer</th><th>Contact</th><th>Division</th><th>Status</th></tr>
{{range .Complaints}}<tr><td>{{.ComplaintNumber}}</td><td>{{date .ComplaintDate}}</td><td>{{deref .CustomerName}}</td><td>{{.CustomerContact1}}</td><td>{{.ProductDivision}}</td><td>{{.CurrentStatus}}</td></tr>
{{end}}</table>`))
