package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/emi"
	"github.com/trezcool/academia/core/enrollment"
)

type (
	EnableEMIRequest struct {
		Count int `json:"count"` // 0: default number of installments
	}

	InstallmentAmountRequest struct {
		Amount *decimal.Decimal `json:"amount"`
	}

	InstallmentDateRequest struct {
		DueDate core.Date `json:"dueDate"`
		Custom  bool      `json:"custom"` // only move this installment
	}
)

type enrollmentApi struct {
	svc enrollment.Service
}

func registerEnrollmentAPI(g *echo.Group, svc enrollment.Service) {
	api := enrollmentApi{svc: svc}

	eg := g.Group("/enrollments")
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)
	eg.DELETE("/:id", api.destroy)

	dg := eg.Group("/drafts")
	dg.POST("", api.createDraft)
	dg.GET("/:id", api.retrieveDraft)
	dg.PUT("/:id", api.updateDraft)
	dg.DELETE("/:id", api.destroyDraft)
	dg.POST("/:id/submit", api.submit)

	// EMI plan
	dg.POST("/:id/emi", api.enableEMI)
	dg.DELETE("/:id/emi", api.disableEMI)
	dg.PUT("/:id/emi/:index/amount", api.editAmount)
	dg.PUT("/:id/emi/:index/date", api.editDate)
	dg.DELETE("/:id/emi/:index/custom-amount", api.resetAmount)
	dg.DELETE("/:id/emi/:index/custom-date", api.resetDate)
	dg.DELETE("/:id/emi/:index", api.removeInstallment)
}

// Enrollments

func (api *enrollmentApi) query(ctx echo.Context) error {
	filter := new(enrollment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []enrollment.Enrollment{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	enrollments, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrollments == nil {
		enrollments = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *enrollmentApi) retrieve(ctx echo.Context) error {
	enr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) destroy(ctx echo.Context) error {
	enr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting enrollment")
	}
	if err = api.svc.Delete(ctx.Request().Context(), enr.ID); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Drafts

func (api *enrollmentApi) createDraft(ctx echo.Context) error {
	var data enrollment.DraftInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DraftInput")
	}
	state, err := api.svc.CreateDraft(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating draft")
	}
	return ctx.JSON(http.StatusCreated, state)
}

func (api *enrollmentApi) retrieveDraft(ctx echo.Context) error {
	state, err := api.svc.GetDraft(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting draft")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *enrollmentApi) updateDraft(ctx echo.Context) error {
	var data enrollment.DraftInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DraftInput")
	}
	state, err := api.svc.UpdateDraft(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating draft")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *enrollmentApi) destroyDraft(ctx echo.Context) error {
	if err := api.svc.DeleteDraft(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting draft")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *enrollmentApi) submit(ctx echo.Context) error {
	enr, err := api.svc.Submit(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "submitting draft")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

// EMI plan

func (api *enrollmentApi) enableEMI(ctx echo.Context) error {
	var data EnableEMIRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnableEMIRequest")
	}
	if data.Count < 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "count", Error: "count cannot be negative"})
	}
	if data.Count > emi.MaxCount {
		return core.NewValidationError(nil, core.FieldError{Field: "count", Error: emi.ErrTooManyEMIs.Error()})
	}
	state, err := api.svc.EnableEMI(ctx.Request().Context(), ctx.Param("id"), data.Count)
	if err != nil {
		return errors.Wrap(err, "enabling EMI")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *enrollmentApi) disableEMI(ctx echo.Context) error {
	state, err := api.svc.DisableEMI(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "disabling EMI")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *enrollmentApi) editAmount(ctx echo.Context) error {
	index, err := indexParam(ctx)
	if err != nil {
		return err
	}
	var data InstallmentAmountRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to InstallmentAmountRequest")
	}
	if data.Amount == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "this field is required"})
	}

	state, err := api.svc.EditInstallmentAmount(ctx.Request().Context(), ctx.Param("id"), index, *data.Amount)
	if err != nil {
		return errors.Wrap(err, "editing installment amount")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *enrollmentApi) editDate(ctx echo.Context) error {
	index, err := indexParam(ctx)
	if err != nil {
		return err
	}
	var data InstallmentDateRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to InstallmentDateRequest")
	}

	state, err := api.svc.EditInstallmentDate(ctx.Request().Context(), ctx.Param("id"), index, data.DueDate, data.Custom)
	if err != nil {
		return errors.Wrap(err, "editing installment date")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *enrollmentApi) resetAmount(ctx echo.Context) error {
	index, err := indexParam(ctx)
	if err != nil {
		return err
	}
	state, err := api.svc.ResetInstallmentAmount(ctx.Request().Context(), ctx.Param("id"), index)
	if err != nil {
		return errors.Wrap(err, "resetting installment amount")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *enrollmentApi) resetDate(ctx echo.Context) error {
	index, err := indexParam(ctx)
	if err != nil {
		return err
	}
	state, err := api.svc.ResetInstallmentDate(ctx.Request().Context(), ctx.Param("id"), index)
	if err != nil {
		return errors.Wrap(err, "resetting installment date")
	}
	return ctx.JSON(http.StatusOK, state)
}

func (api *enrollmentApi) removeInstallment(ctx echo.Context) error {
	index, err := indexParam(ctx)
	if err != nil {
		return err
	}
	state, err := api.svc.RemoveInstallment(ctx.Request().Context(), ctx.Param("id"), index)
	if err != nil {
		return errors.Wrap(err, "removing installment")
	}
	return ctx.JSON(http.StatusOK, state)
}
