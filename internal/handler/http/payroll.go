package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PayrollHandler interface {
	CreateStructure(w http.ResponseWriter, r *http.Request)
	AssignSalary(w http.ResponseWriter, r *http.Request)
	PreviewPayslip(w http.ResponseWriter, r *http.Request)

	CreateRun(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	ProcessRun(w http.ResponseWriter, r *http.Request)
	ApproveRun(w http.ResponseWriter, r *http.Request)
	MarkAsPaid(w http.ResponseWriter, r *http.Request)
	DeleteRun(w http.ResponseWriter, r *http.Request)
	ListPayslips(w http.ResponseWriter, r *http.Request)
	ExportRun(w http.ResponseWriter, r *http.Request)

	GetMyPayslips(w http.ResponseWriter, r *http.Request)
	GetMyPayslip(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
	}
}

func (h *payrollHandlerImpl) CreateStructure(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req payroll.CreateStructureRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CompanyID = actor.CompanyID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	structure, err := h.payrollService.CreateStructure(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary structure created", structure)
}

func (h *payrollHandlerImpl) AssignSalary(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req payroll.AssignSalaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CompanyID = actor.CompanyID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	salary, err := h.payrollService.AssignSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary assigned", salary)
}

// PreviewPayslip computes one employee's payslip without persisting it.
func (h *payrollHandlerImpl) PreviewPayslip(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	now := time.Now()
	month := getIntQueryParam(r, "month", int(now.Month()))
	year := getIntQueryParam(r, "year", now.Year())

	payslip, err := h.payrollService.ComputePayslip(r.Context(), actor.CompanyID, chi.URLParam(r, "employeeID"), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if payslip == nil {
		response.NotFound(w, "Employee has no salary for this period")
		return
	}

	response.Success(w, payroll.ToPayslipResponse(payslip))
}

func (h *payrollHandlerImpl) CreateRun(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req payroll.CreateRunRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CompanyID = actor.CompanyID
	req.CreatedBy = &actor.UserID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	run, err := h.payrollService.CreateRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll run created", run)
}

func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	run, err := h.payrollService.GetRun(r.Context(), actor.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, run)
}

func (h *payrollHandlerImpl) ProcessRun(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	run, err := h.payrollService.ProcessRun(r.Context(), actor.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run computed", run)
}

func (h *payrollHandlerImpl) ApproveRun(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	run, err := h.payrollService.ApproveRun(r.Context(), actor.CompanyID, chi.URLParam(r, "id"), actor.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run approved", run)
}

func (h *payrollHandlerImpl) MarkAsPaid(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	run, err := h.payrollService.MarkAsPaid(r.Context(), actor.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run marked as paid", run)
}

func (h *payrollHandlerImpl) DeleteRun(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.payrollService.DeleteRun(r.Context(), actor.CompanyID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run deleted", nil)
}

func (h *payrollHandlerImpl) ListPayslips(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	payslips, err := h.payrollService.ListPayslips(r.Context(), actor.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payslips)
}

func (h *payrollHandlerImpl) ExportRun(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	runID := chi.URLParam(r, "id")
	body, err := h.payrollService.ExportRun(r.Context(), actor.CompanyID, runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, fmt.Sprintf("payroll-register-%s.xlsx", runID), xlsxContentType, body)
}

func (h *payrollHandlerImpl) GetMyPayslips(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	payslips, err := h.payrollService.GetMyPayslips(r.Context(), actor.CompanyID, actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payslips)
}

func (h *payrollHandlerImpl) GetMyPayslip(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	payslip, err := h.payrollService.GetMyPayslip(r.Context(), actor.CompanyID, actor.EmployeeID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payslip)
}
