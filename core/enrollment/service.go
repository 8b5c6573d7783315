package enrollment

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/batch"
	"github.com/trezcool/academia/core/emi"
)

var (
	// errors
	ErrNotFound      = errors.New("enrollment not found")
	ErrDraftNotFound = errors.New("draft not found")
	ErrEMIDisabled   = errors.New("EMI plan is not enabled")
)

type (
	Repository interface {
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id string) (Enrollment, error)
		// QueryEnrollments applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of StudentName, StudentEmail or StudentPhone.
		QueryEnrollments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Enrollment, error)
		DeleteEnrollmentsByID(ctx context.Context, ids ...string) error
	}

	// DraftStore keeps drafts for a limited time; every save extends it.
	DraftStore interface {
		SaveDraft(ctx context.Context, d Draft) error
		// GetDraft returns ErrDraftNotFound for unknown or expired drafts.
		GetDraft(ctx context.Context, id string) (Draft, error)
		DeleteDraft(ctx context.Context, id string) error
	}

	Service interface {
		GetByID(ctx context.Context, id string) (Enrollment, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Enrollment, error)
		Delete(ctx context.Context, ids ...string) error

		CreateDraft(ctx context.Context, in DraftInput) (DraftState, error)
		GetDraft(ctx context.Context, id string) (DraftState, error)
		UpdateDraft(ctx context.Context, id string, in DraftInput) (DraftState, error)
		DeleteDraft(ctx context.Context, id string) error
		EnableEMI(ctx context.Context, id string, count int) (DraftState, error)
		DisableEMI(ctx context.Context, id string) (DraftState, error)
		EditInstallmentAmount(ctx context.Context, id string, index int, amount decimal.Decimal) (DraftState, error)
		EditInstallmentDate(ctx context.Context, id string, index int, date core.Date, custom bool) (DraftState, error)
		ResetInstallmentAmount(ctx context.Context, id string, index int) (DraftState, error)
		ResetInstallmentDate(ctx context.Context, id string, index int) (DraftState, error)
		RemoveInstallment(ctx context.Context, id string, index int) (DraftState, error)
		Submit(ctx context.Context, id string) (Enrollment, error)
	}

	service struct {
		repo         Repository
		drafts       DraftStore
		batchSvc     batch.Service
		mailSvc      core.EmailService
		validate     *validator.Validate
		logger       core.Logger
		installments int
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(
	conf *core.Config,
	repo Repository,
	drafts DraftStore,
	batchSvc batch.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) Service {
	return newService(conf, repo, drafts, batchSvc, mailSvc, validate, logger)
}

func newService(
	conf *core.Config,
	repo Repository,
	drafts DraftStore,
	batchSvc batch.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) *service {
	return &service{
		repo:         repo,
		drafts:       drafts,
		batchSvc:     batchSvc,
		mailSvc:      mailSvc,
		validate:     validate,
		logger:       logger,
		installments: conf.Schedule.DefaultInstallments,
	}
}

func (svc *service) GetByID(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollmentByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Enrollment, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryEnrollments(ctx, filter, ordering)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteEnrollmentsByID(ctx, ids...)
}

// Drafts

func (svc *service) save(ctx context.Context, d Draft) (DraftState, error) {
	d.UpdatedAt = time.Now().UTC()
	if err := svc.drafts.SaveDraft(ctx, d); err != nil {
		return DraftState{}, errors.Wrap(err, "saving draft")
	}
	return newDraftState(d), nil
}

// edit loads a draft, applies fn to it and saves it back.
func (svc *service) edit(ctx context.Context, id string, fn func(d *Draft) error) (DraftState, error) {
	d, err := svc.drafts.GetDraft(ctx, id)
	if err != nil {
		return DraftState{}, err
	}
	if err = fn(&d); err != nil {
		return DraftState{}, err
	}
	return svc.save(ctx, d)
}

// editPlan is edit for operations on an enabled EMI plan.
func (svc *service) editPlan(ctx context.Context, id string, fn func(p *emi.Plan) error) (DraftState, error) {
	return svc.edit(ctx, id, func(d *Draft) error {
		if !d.EMIEnabled {
			return core.NewValidationError(ErrEMIDisabled, core.FieldError{Field: "emiEnabled", Error: ErrEMIDisabled.Error()})
		}
		return fn(&d.EMIPlan)
	})
}

func (svc *service) CreateDraft(ctx context.Context, in DraftInput) (DraftState, error) {
	in.Clean()
	now := time.Now().UTC()
	d := Draft{
		ID:        uuid.New().String(),
		CreatedAt: now,
	}
	d.apply(in)
	return svc.save(ctx, d)
}

func (svc *service) GetDraft(ctx context.Context, id string) (DraftState, error) {
	d, err := svc.drafts.GetDraft(ctx, id)
	if err != nil {
		return DraftState{}, err
	}
	return newDraftState(d), nil
}

func (svc *service) UpdateDraft(ctx context.Context, id string, in DraftInput) (DraftState, error) {
	in.Clean()
	return svc.edit(ctx, id, func(d *Draft) error {
		d.apply(in)
		return nil
	})
}

func (svc *service) DeleteDraft(ctx context.Context, id string) error {
	return svc.drafts.DeleteDraft(ctx, id)
}

// EnableEMI switches the EMI plan on and generates it from the balance and EMI start date.
// A count < 1 falls back to the configured number of installments.
func (svc *service) EnableEMI(ctx context.Context, id string, count int) (DraftState, error) {
	if count < 1 {
		count = svc.installments
	}
	return svc.edit(ctx, id, func(d *Draft) error {
		plan, err := emi.Generate(d.BalanceAmount, d.EMIPlan.StartDate, count)
		if err != nil {
			return err
		}
		d.EMIEnabled = true
		d.EMIPlan = plan
		return nil
	})
}

func (svc *service) DisableEMI(ctx context.Context, id string) (DraftState, error) {
	return svc.edit(ctx, id, func(d *Draft) error {
		d.EMIEnabled = false
		d.EMIPlan.Clear()
		return nil
	})
}

func (svc *service) EditInstallmentAmount(ctx context.Context, id string, index int, amount decimal.Decimal) (DraftState, error) {
	return svc.editPlan(ctx, id, func(p *emi.Plan) error {
		return p.EditAmount(index, amount)
	})
}

func (svc *service) EditInstallmentDate(ctx context.Context, id string, index int, date core.Date, custom bool) (DraftState, error) {
	return svc.editPlan(ctx, id, func(p *emi.Plan) error {
		return p.EditDate(index, date, custom)
	})
}

func (svc *service) ResetInstallmentAmount(ctx context.Context, id string, index int) (DraftState, error) {
	return svc.editPlan(ctx, id, func(p *emi.Plan) error {
		return p.ResetAmount(index)
	})
}

func (svc *service) ResetInstallmentDate(ctx context.Context, id string, index int) (DraftState, error) {
	return svc.editPlan(ctx, id, func(p *emi.Plan) error {
		return p.ResetDate(index)
	})
}

func (svc *service) RemoveInstallment(ctx context.Context, id string, index int) (DraftState, error) {
	return svc.editPlan(ctx, id, func(p *emi.Plan) error {
		return p.Remove(index)
	})
}

// Submit validates a draft for good, saves it as an Enrollment and drops the draft.
func (svc *service) Submit(ctx context.Context, id string) (Enrollment, error) {
	enr, b, err := svc.submit(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	go svc.sendConfirmationMail(enr, b)
	return enr, nil
}

func (svc *service) submit(ctx context.Context, id string) (Enrollment, batch.Batch, error) {
	d, err := svc.drafts.GetDraft(ctx, id)
	if err != nil {
		return Enrollment{}, batch.Batch{}, err
	}

	ne := d.newEnrollment()
	if err = svc.validate.Struct(ne); err != nil {
		return Enrollment{}, batch.Batch{}, err
	}
	if flds := d.Problems(); len(flds) > 0 {
		return Enrollment{}, batch.Batch{}, core.NewValidationError(nil, flds...)
	}

	b, err := svc.batchSvc.GetByID(ctx, ne.BatchID)
	if err != nil {
		if errors.Cause(err) == batch.ErrNotFound {
			return Enrollment{}, batch.Batch{}, core.NewValidationError(err, core.FieldError{Field: "batchId", Error: err.Error()})
		}
		return Enrollment{}, batch.Batch{}, errors.Wrap(err, "getting batch")
	}

	enr, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		ID:              uuid.New().String(),
		BatchID:         ne.BatchID,
		StudentName:     ne.StudentName,
		StudentEmail:    ne.StudentEmail,
		StudentPhone:    ne.StudentPhone,
		TotalFees:       ne.TotalFees,
		AmountPaid:      ne.AmountPaid,
		BalanceAmount:   ne.BalanceAmount,
		EMIEnabled:      ne.EMIEnabled,
		EMIStartDate:    ne.EMIStartDate,
		EMIInstallments: ne.EMIInstallments,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return Enrollment{}, batch.Batch{}, errors.Wrap(err, "creating enrollment")
	}

	if err = svc.drafts.DeleteDraft(ctx, id); err != nil {
		svc.logger.Warn("enrollment: deleting submitted draft", err, map[string]interface{}{"draft": id})
	}
	return enr, b, nil
}

type confirmationData struct {
	Enrollment   Enrollment
	Batch        batch.Batch
	Installments []confirmationInstallment
}

type confirmationInstallment struct {
	Month   int
	Amount  string
	DueDate string
}

func (svc *service) sendConfirmationMail(enr Enrollment, b batch.Batch) {
	if enr.StudentEmail == "" {
		return
	}

	insts := make([]confirmationInstallment, 0, len(enr.EMIInstallments))
	for _, inst := range enr.EMIInstallments {
		insts = append(insts, confirmationInstallment{
			Month:   inst.Month,
			Amount:  inst.Amount.StringFixed(2),
			DueDate: inst.DueDate.Display(),
		})
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: enr.StudentName, Address: enr.StudentEmail}},
		Subject:      fmt.Sprintf("Enrollment confirmed: %s", b.Name),
		TemplateName: "enrollment_confirmation",
		TemplateData: confirmationData{
			Enrollment:   enr,
			Batch:        b,
			Installments: insts,
		},
	}
	svc.mailSvc.SendMessages(msg)
}
