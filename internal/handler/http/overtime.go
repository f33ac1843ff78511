package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/handler/http/response"
)

type OvertimeHandler interface {
	CreateRule(w http.ResponseWriter, r *http.Request)
	ListRules(w http.ResponseWriter, r *http.Request)
}

type overtimeHandlerImpl struct {
	overtimeService overtime.OvertimeService
}

func NewOvertimeHandler(overtimeService overtime.OvertimeService) OvertimeHandler {
	return &overtimeHandlerImpl{overtimeService: overtimeService}
}

func (h *overtimeHandlerImpl) CreateRule(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req overtime.CreateRuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CompanyID = actor.CompanyID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	rule, err := h.overtimeService.CreateRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Overtime rule created", rule)
}

func (h *overtimeHandlerImpl) ListRules(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	rules, err := h.overtimeService.ListRules(r.Context(), actor.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, rules)
}
