package enrollment

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/emi"
)

// OrderingColumns maps the API ordering fields to their columns.
var OrderingColumns = map[string]string{
	"studentName":   "student_name",
	"totalFees":     "total_fees",
	"balanceAmount": "balance_amount",
	"createdAt":     "created_at",
}

type Enrollment struct {
	ID              string          `json:"id" db:"id"`
	BatchID         string          `json:"batchId" db:"batch_id"`
	StudentName     string          `json:"studentName" db:"student_name"`
	StudentEmail    string          `json:"studentEmail" db:"student_email"`
	StudentPhone    string          `json:"studentPhone" db:"student_phone"`
	TotalFees       decimal.Decimal `json:"totalFees" db:"total_fees"`
	AmountPaid      decimal.Decimal `json:"amountPaid" db:"amount_paid"`
	BalanceAmount   decimal.Decimal `json:"balanceAmount" db:"balance_amount"`
	EMIEnabled      bool            `json:"emiEnabled" db:"emi_enabled"`
	EMIStartDate    core.Date       `json:"emiStartDate" db:"emi_start_date"`
	EMIInstallments Installments    `json:"emiInstallments" db:"emi_installments"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"` // UTC
}

// Installments is the persisted form of an EMI plan (a JSON array).
type Installments []emi.Installment

func (insts Installments) Value() (driver.Value, error) {
	if insts == nil {
		insts = Installments{}
	}
	b, err := json.Marshal([]emi.Installment(insts))
	if err != nil {
		return nil, errors.Wrap(err, "encoding installments")
	}
	return string(b), nil
}

func (insts *Installments) Scan(v interface{}) error {
	var b []byte
	switch val := v.(type) {
	case nil:
		*insts = Installments{}
		return nil
	case []byte:
		b = val
	case string:
		b = []byte(val)
	default:
		return errors.Errorf("cannot scan %T into Installments", v)
	}
	var list []emi.Installment
	if err := json.Unmarshal(b, &list); err != nil {
		return errors.Wrap(err, "decoding installments")
	}
	*insts = list
	return nil
}

// Draft is an enrollment form being filled. It lives in a DraftStore until it is submitted.
type Draft struct {
	ID            string          `json:"id"`
	BatchID       string          `json:"batchId"`
	StudentName   string          `json:"studentName"`
	StudentEmail  string          `json:"studentEmail"`
	StudentPhone  string          `json:"studentPhone"`
	TotalFees     decimal.Decimal `json:"totalFees"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	BalanceAmount decimal.Decimal `json:"balanceAmount"`
	EMIEnabled    bool            `json:"emiEnabled"`
	EMIPlan       emi.Plan        `json:"emiPlan"`
	CreatedAt     time.Time       `json:"createdAt"` // UTC
	UpdatedAt     time.Time       `json:"updatedAt"` // UTC
}

// DraftInput holds the editable fields of a Draft. Every field is replaced on update.
type DraftInput struct {
	BatchID      string          `json:"batchId"`
	StudentName  string          `json:"studentName"`
	StudentEmail string          `json:"studentEmail"`
	StudentPhone string          `json:"studentPhone"`
	TotalFees    decimal.Decimal `json:"totalFees"`
	AmountPaid   decimal.Decimal `json:"amountPaid"`
	EMIStartDate core.Date       `json:"emiStartDate"`
}

func (in *DraftInput) Clean() {
	in.BatchID = core.CleanString(in.BatchID)
	in.StudentName = core.CleanString(in.StudentName)
	in.StudentEmail = core.CleanString(in.StudentEmail, true /* lower */)
	in.StudentPhone = core.CleanString(in.StudentPhone)
}

func (d *Draft) apply(in DraftInput) {
	d.BatchID = in.BatchID
	d.StudentName = in.StudentName
	d.StudentEmail = in.StudentEmail
	d.StudentPhone = in.StudentPhone
	d.TotalFees = in.TotalFees
	d.AmountPaid = in.AmountPaid
	d.BalanceAmount = in.TotalFees.Sub(in.AmountPaid)

	if !d.EMIPlan.Balance.Equal(d.BalanceAmount) {
		d.EMIPlan.SetBalance(d.BalanceAmount)
	}
	if !d.EMIPlan.StartDate.Equal(in.EMIStartDate) {
		d.EMIPlan.SetStartDate(in.EMIStartDate)
	}
}

// Problems lists what is wrong with the draft so far. They never stop the draft from being edited.
func (d *Draft) Problems() []core.FieldError {
	var flds []core.FieldError
	if d.TotalFees.IsNegative() {
		flds = append(flds, core.FieldError{Field: "totalFees", Error: "total fees cannot be negative"})
	}
	if d.AmountPaid.IsNegative() {
		flds = append(flds, core.FieldError{Field: "amountPaid", Error: "amount paid cannot be negative"})
	}
	if d.BalanceAmount.IsNegative() {
		flds = append(flds, core.FieldError{Field: "amountPaid", Error: "amount paid cannot exceed total fees"})
	}
	if d.EMIEnabled {
		if d.EMIPlan.StartDate.IsZero() {
			flds = append(flds, core.FieldError{Field: "emiStartDate", Error: emi.ErrStartDateRequired.Error()})
		}
		if d.EMIPlan.IsEmpty() {
			flds = append(flds, core.FieldError{Field: emi.Field, Error: "EMI plan has no installment"})
		}
		flds = append(flds, d.EMIPlan.Validate()...)
	}
	return flds
}

// DraftState is a Draft along with its current problems, keyed by field.
type DraftState struct {
	Draft  Draft             `json:"draft"`
	Errors map[string]string `json:"errors"`
}

func newDraftState(d Draft) DraftState {
	return DraftState{Draft: d, Errors: core.FieldErrorMap(d.Problems())}
}

// NewEnrollment contains information needed to create a new Enrollment; it is built from a submitted Draft.
type NewEnrollment struct {
	BatchID         string            `json:"batchId" validate:"required,uuid"`
	StudentName     string            `json:"studentName" validate:"notblank,max=100"`
	StudentEmail    string            `json:"studentEmail" validate:"omitempty,email"`
	StudentPhone    string            `json:"studentPhone" validate:"max=30"`
	TotalFees       decimal.Decimal   `json:"totalFees"`
	AmountPaid      decimal.Decimal   `json:"amountPaid"`
	BalanceAmount   decimal.Decimal   `json:"balanceAmount"`
	EMIEnabled      bool              `json:"emiEnabled"`
	EMIStartDate    core.Date         `json:"emiStartDate"`
	EMIInstallments []emi.Installment `json:"emiInstallments"`
}

func (d *Draft) newEnrollment() NewEnrollment {
	ne := NewEnrollment{
		BatchID:       d.BatchID,
		StudentName:   d.StudentName,
		StudentEmail:  d.StudentEmail,
		StudentPhone:  d.StudentPhone,
		TotalFees:     d.TotalFees,
		AmountPaid:    d.AmountPaid,
		BalanceAmount: d.BalanceAmount,
		EMIEnabled:    d.EMIEnabled,
	}
	if d.EMIEnabled {
		ne.EMIStartDate = d.EMIPlan.StartDate
		ne.EMIInstallments = append([]emi.Installment(nil), d.EMIPlan.Installments...)
	}
	return ne
}

type QueryFilter struct {
	BatchID string `query:"batch_id"`
	Search  string `query:"search"`
	EMIOnly bool   `query:"emi_only"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.BatchID == "" && qf.Search == "" && !qf.EMIOnly
}

func (qf *QueryFilter) Clean() {
	qf.BatchID = core.CleanString(qf.BatchID)
	qf.Search = core.CleanString(qf.Search)
}
