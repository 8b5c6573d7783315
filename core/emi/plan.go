package emi

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/academia/core"
)

const (
	// DefaultCount is the number of installments generated when none is requested.
	DefaultCount = 10
	// MaxCount is the largest plan that can be generated (10 years of monthly payments).
	MaxCount = 120
)

// Field is the name under which installment errors are reported.
const Field = "emiInstallments"

var (
	ErrBalanceRequired   = errors.New("balance amount must be greater than 0 to calculate EMIs")
	ErrStartDateRequired = errors.New("EMI start date is required to calculate EMIs")
	ErrNotFound          = errors.New("installment not found")
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrDueDateRequired   = errors.New("due date is required")
	ErrTotalExceeds      = errors.New("Total EMI exceeds Balance")
	ErrTooManyEMIs       = errors.Errorf("cannot split the balance in more than %d installments", MaxCount)
)

func init() {
	// amounts travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Installment is one scheduled payment against the balance.
type Installment struct {
	Month   int             `json:"month"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate core.Date       `json:"dueDate"`
}

// Plan is an EMI schedule along with its editing state.
// CustomAmounts & CustomDates hold the indices whose amount or due date was set by hand;
// those are left alone when the rest of the plan is recalculated.
type Plan struct {
	Balance       decimal.Decimal `json:"balance"`
	StartDate     core.Date       `json:"startDate"`
	Installments  []Installment   `json:"installments"`
	CustomAmounts IndexSet        `json:"customAmounts"`
	CustomDates   IndexSet        `json:"customDates"`
}

// Generate builds a plan of `count` installments (DefaultCount when count < 1, at most MaxCount)
// splitting balance equally, due monthly from start.
func Generate(balance decimal.Decimal, start core.Date, count int) (Plan, error) {
	var flds []core.FieldError
	if !balance.IsPositive() {
		flds = append(flds, core.FieldError{Field: "balanceAmount", Error: ErrBalanceRequired.Error()})
	}
	if start.IsZero() {
		flds = append(flds, core.FieldError{Field: "emiStartDate", Error: ErrStartDateRequired.Error()})
	}
	if count > MaxCount {
		flds = append(flds, core.FieldError{Field: "count", Error: ErrTooManyEMIs.Error()})
	}
	if len(flds) > 0 {
		return Plan{}, core.NewValidationError(nil, flds...)
	}
	if count < 1 {
		count = DefaultCount
	}

	plan := Plan{
		Balance:      balance,
		StartDate:    start,
		Installments: make([]Installment, count),
	}
	for i, amount := range Redistribute(balance, count) {
		plan.Installments[i] = Installment{
			Month:   i + 1,
			Amount:  amount,
			DueDate: start.AddMonths(i),
		}
	}
	return plan, nil
}

func (p *Plan) checkIndex(i int) error {
	if i < 0 || i >= len(p.Installments) {
		return ErrNotFound
	}
	return nil
}

// Total sums all installment amounts.
func (p *Plan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range p.Installments {
		total = total.Add(inst.Amount)
	}
	return total
}

// IsEmpty reports whether the plan has no installment.
func (p *Plan) IsEmpty() bool {
	return len(p.Installments) == 0
}

// Clear drops every installment and customization.
func (p *Plan) Clear() {
	*p = Plan{Balance: p.Balance, StartDate: p.StartDate}
}

// EditAmount sets the amount of installment i by hand, then spreads what is left of the balance
// over the installments that were not set by hand.
// Nothing is spread when the hand-set amounts already exceed the balance; Validate reports it.
func (p *Plan) EditAmount(i int, amount decimal.Decimal) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}
	if amount.IsNegative() {
		return core.NewValidationError(ErrNegativeAmount, core.FieldError{Field: amountField(i), Error: ErrNegativeAmount.Error()})
	}
	p.Installments[i].Amount = amount.Round(2)
	p.CustomAmounts.Add(i)
	p.rebalance()
	return nil
}

// ResetAmount hands installment i back to automatic redistribution.
func (p *Plan) ResetAmount(i int) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}
	p.CustomAmounts.Remove(i)
	p.rebalance()
	return nil
}

func (p *Plan) rebalance() {
	customized := decimal.Zero
	free := make([]int, 0, len(p.Installments))
	for i, inst := range p.Installments {
		if p.CustomAmounts.Has(i) {
			customized = customized.Add(inst.Amount)
		} else {
			free = append(free, i)
		}
	}

	remaining := p.Balance.Sub(customized)
	if remaining.IsNegative() || len(free) == 0 {
		return
	}
	for k, amount := range Redistribute(remaining, len(free)) {
		p.Installments[free[k]].Amount = amount
	}
}

// EditDate sets the due date of installment i.
// With custom, only installment i changes and its date is pinned.
// Otherwise the following installments whose date is not pinned move along, one month apart.
func (p *Plan) EditDate(i int, date core.Date, custom bool) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}
	if date.IsZero() {
		return core.NewValidationError(ErrDueDateRequired, core.FieldError{Field: dueDateField(i), Error: ErrDueDateRequired.Error()})
	}

	p.Installments[i].DueDate = date
	if custom {
		p.CustomDates.Add(i)
		return nil
	}
	for j := i + 1; j < len(p.Installments); j++ {
		if p.CustomDates.Has(j) {
			continue
		}
		p.Installments[j].DueDate = date.AddMonths(j - i)
	}
	return nil
}

// ResetDate unpins the due date of installment i, deriving it from the start date again.
func (p *Plan) ResetDate(i int) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}
	p.CustomDates.Remove(i)
	if !p.StartDate.IsZero() {
		p.Installments[i].DueDate = p.StartDate.AddMonths(i)
	}
	return nil
}

// Remove deletes installment i, renumbers the months and splits the balance equally over
// the remaining installments. Due dates are derived from the start date again when it is set.
func (p *Plan) Remove(i int) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}

	p.Installments = append(p.Installments[:i:i], p.Installments[i+1:]...)
	p.CustomAmounts = p.CustomAmounts.ShiftDown(i)
	p.CustomDates = p.CustomDates.ShiftDown(i)

	for k, amount := range Redistribute(p.Balance, len(p.Installments)) {
		inst := &p.Installments[k]
		inst.Month = k + 1
		inst.Amount = amount
		if !p.StartDate.IsZero() {
			inst.DueDate = p.StartDate.AddMonths(k)
		}
	}
	return nil
}

// SetBalance changes the balance and spreads it over the installments not set by hand.
func (p *Plan) SetBalance(balance decimal.Decimal) {
	p.Balance = balance
	p.rebalance()
}

// SetStartDate changes the start date and derives again every due date that is not pinned.
func (p *Plan) SetStartDate(start core.Date) {
	p.StartDate = start
	if start.IsZero() {
		return
	}
	for i := range p.Installments {
		if !p.CustomDates.Has(i) {
			p.Installments[i].DueDate = start.AddMonths(i)
		}
	}
}

// Validate reports what keeps the plan from being submitted.
// Editing may go on while errors are present.
func (p *Plan) Validate() []core.FieldError {
	var flds []core.FieldError
	for i, inst := range p.Installments {
		if inst.Amount.IsNegative() {
			flds = append(flds, core.FieldError{Field: amountField(i), Error: ErrNegativeAmount.Error()})
		}
		if inst.DueDate.IsZero() {
			flds = append(flds, core.FieldError{Field: dueDateField(i), Error: ErrDueDateRequired.Error()})
		}
	}
	if p.Total().GreaterThan(p.Balance) {
		flds = append(flds, core.FieldError{Field: Field, Error: ErrTotalExceeds.Error()})
	}
	return flds
}

func amountField(i int) string  { return fmt.Sprintf("%s.%d.amount", Field, i) }
func dueDateField(i int) string { return fmt.Sprintf("%s.%d.dueDate", Field, i) }

// IndexSet is a set of installment indices.
type IndexSet map[int]struct{}

func (s *IndexSet) Add(i int) {
	if *s == nil {
		*s = make(IndexSet)
	}
	(*s)[i] = struct{}{}
}

func (s IndexSet) Remove(i int) {
	delete(s, i)
}

func (s IndexSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the indices in ascending order.
func (s IndexSet) Sorted() []int {
	indices := make([]int, 0, len(s))
	for i := range s {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

func (s IndexSet) Clone() IndexSet {
	if s == nil {
		return nil
	}
	c := make(IndexSet, len(s))
	for i := range s {
		c[i] = struct{}{}
	}
	return c
}

// ShiftDown returns the set after removal of index `removed`: it is dropped
// and every higher index moves down by one.
func (s IndexSet) ShiftDown(removed int) IndexSet {
	if len(s) == 0 {
		return nil
	}
	shifted := make(IndexSet, len(s))
	for i := range s {
		switch {
		case i < removed:
			shifted[i] = struct{}{}
		case i > removed:
			shifted[i-1] = struct{}{}
		}
	}
	return shifted
}

func (s IndexSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *IndexSet) UnmarshalJSON(b []byte) error {
	var indices []int
	if err := json.Unmarshal(b, &indices); err != nil {
		return errors.Wrap(err, "index set must be a list of integers")
	}
	*s = nil
	for _, i := range indices {
		s.Add(i)
	}
	return nil
}
