package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/movement"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// MovementHandler handles stock movement endpoints.
type MovementHandler struct {
	*BaseHandler
	validator *movement.Validator
	engine    *movement.Engine
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(validator *movement.Validator, engine *movement.Engine) *MovementHandler {
	return &MovementHandler{
		BaseHandler: NewBaseHandler(),
		validator:   validator,
		engine:      engine,
	}
}

// Validate checks a movement without posting anything.
// POST /api/v1/movements/validate
func (h *MovementHandler) Validate(c *gin.Context) {
	var req dto.MovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := req.ToMovement()
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.validator.Validate(ctx, m); err != nil {
		// A rule failure is the expected answer here, not an error response.
		appErr, ok := apperror.AsAppError(err)
		if !ok {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.ValidateMovementResponse{
			Valid: false,
			Error: &dto.ErrorResponse{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			},
		})
		return
	}

	h.OK(c, dto.ValidateMovementResponse{
		Valid:       true,
		PostingDate: m.PostingDate.Format(dto.PostingDateLayout),
	})
}

// Post validates and posts a movement, producing ledger entries.
// POST /api/v1/movements
func (h *MovementHandler) Post(c *gin.Context) {
	var req dto.MovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := req.ToMovement()
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.validator.Validate(ctx, m); err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.engine.Post(ctx, m)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.PostMovementResponse{
		VoucherNo: m.VoucherNo,
		Entries:   dto.FromLedgerEntries(entries),
	})
}
