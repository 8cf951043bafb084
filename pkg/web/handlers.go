// Package web provides the HTTP surface for rule lifecycle management and
// the execution audit trail.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/taskory/taskory/pkg/conditions"
	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence"
	"github.com/taskory/taskory/pkg/registry"
)

type APIHandlers struct {
	store     persistence.Persistence
	registry  *registry.Registry
	validator *validator.Validate
}

func NewAPIHandlers(
	store persistence.Persistence,
	registry *registry.Registry,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		store:     store,
		registry:  registry,
		validator: validator,
	}
}

func (h *APIHandlers) GetRules(c fiber.Ctx) error {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		return badRequest(c, "workspace_id query parameter is required")
	}

	rules, err := h.store.RuleRepository().Rules(c.Context(), workspaceID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"rules": rules,
		"count": len(rules),
	})
}

func (h *APIHandlers) GetRule(c fiber.Ctx) error {
	rule, err := h.store.RuleRepository().RuleByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleRuleError(c, err)
	}

	return c.JSON(rule)
}

// CreateRuleRequest carries the writable fields of a rule.
type CreateRuleRequest struct {
	WorkspaceID  string            `json:"workspace_id"  validate:"required"`
	Name         string            `json:"name"          validate:"required,min=3"`
	TriggerType  models.TriggerType `json:"trigger_type" validate:"required"`
	Conditions   map[string]any    `json:"conditions"`
	ActionKind   models.ActionKind `json:"action_kind"   validate:"required"`
	ActionConfig map[string]any    `json:"action_config"`
	Owner        string            `json:"owner"         validate:"required"`
}

func (h *APIHandlers) CreateRule(c fiber.Ctx) error {
	var req CreateRuleRequest

	err := c.Bind().JSON(&req)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	err = h.validator.Struct(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	rawConditions, err := conditions.Marshal(req.Conditions)
	if err != nil {
		return badRequest(c, "Invalid conditions: "+err.Error())
	}

	// Reject misconfigured actions at authoring time, not at dispatch time.
	_, err = h.registry.CreateAction(req.ActionKind, req.ActionConfig)
	if err != nil {
		return badRequest(c, err.Error())
	}

	now := time.Now().UTC()
	rule := &models.Rule{
		ID:           uuid.New().String(),
		WorkspaceID:  req.WorkspaceID,
		Name:         req.Name,
		Status:       models.RuleStatusActive,
		TriggerType:  req.TriggerType,
		Conditions:   rawConditions,
		ActionKind:   req.ActionKind,
		ActionConfig: req.ActionConfig,
		Owner:        req.Owner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = h.store.RuleRepository().SaveRule(c.Context(), rule)
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *APIHandlers) EnableRule(c fiber.Ctx) error {
	return h.setStatus(c, models.RuleStatusActive)
}

func (h *APIHandlers) DisableRule(c fiber.Ctx) error {
	return h.setStatus(c, models.RuleStatusInactive)
}

func (h *APIHandlers) setStatus(c fiber.Ctx, status models.RuleStatus) error {
	id := c.Params("id")

	err := h.store.RuleRepository().SetRuleStatus(c.Context(), id, status)
	if err != nil {
		return handleRuleError(c, err)
	}

	return c.JSON(fiber.Map{"id": id, "status": status})
}

func (h *APIHandlers) DeleteRule(c fiber.Ctx) error {
	err := h.store.RuleRepository().DeleteRule(c.Context(), c.Params("id"))
	if err != nil {
		return handleRuleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetRuleExecutions returns the audit trail of a rule, newest first, so rule
// authors can see skipped and failed executions.
func (h *APIHandlers) GetRuleExecutions(c fiber.Ctx) error {
	id := c.Params("id")

	_, err := h.store.RuleRepository().RuleByID(c.Context(), id)
	if err != nil {
		return handleRuleError(c, err)
	}

	limit := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit parameter")
		}
	}

	records, err := h.store.ExecutionRepository().ExecutionsByRule(c.Context(), id, limit)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions": records,
		"count":      len(records),
	})
}

// GetActions lists the registered action kinds and their config schemas for
// rule-authoring clients.
func (h *APIHandlers) GetActions(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"actions": h.registry.DescribeActions(),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.store.HealthCheck(c.Context())

	status := "healthy"
	httpStatus := http.StatusOK

	if err != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}
