package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles ledger query endpoints.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// History returns ledger entries for an item.
// GET /api/v1/ledger/items/:itemId/entries
func (h *LedgerHandler) History(c *gin.Context) {
	itemID, ok := h.pathID(c, "itemId")
	if !ok {
		return
	}

	var req dto.HistoryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := ledger.EntryFilter{
		VoucherNo: req.VoucherNo,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}

	if req.WarehouseID != "" {
		warehouseID, err := id.Parse(req.WarehouseID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid warehouseId").WithDetail("value", req.WarehouseID))
			return
		}
		filter.WarehouseID = &warehouseID
	}

	var ok2 bool
	if filter.FromDate, ok2 = h.optionalDate(c, req.FromDate, "fromDate"); !ok2 {
		return
	}
	if filter.ToDate, ok2 = h.optionalDate(c, req.ToDate, "toDate"); !ok2 {
		return
	}

	entries, err := h.service.History(c.Request.Context(), itemID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromLedgerEntries(entries))
}

// Voucher returns all entries produced by one movement.
// GET /api/v1/ledger/vouchers/:voucherNo
func (h *LedgerHandler) Voucher(c *gin.Context) {
	voucherNo := c.Param("voucherNo")

	entries, err := h.service.GetVoucher(c.Request.Context(), voucherNo)
	if err != nil {
		h.Error(c, err)
		return
	}
	if len(entries) == 0 {
		h.Error(c, apperror.NewNotFound("voucher", voucherNo))
		return
	}

	h.OK(c, dto.FromLedgerEntries(entries))
}

// Availability returns the on-hand quantity for an (item, warehouse) pair.
// GET /api/v1/ledger/availability?itemId=&warehouseId=&atDate=
func (h *LedgerHandler) Availability(c *gin.Context) {
	itemID, warehouseID, ok := h.pairParams(c)
	if !ok {
		return
	}

	resp := dto.AvailabilityResponse{
		ItemID:      itemID.String(),
		WarehouseID: warehouseID.String(),
	}

	ctx := c.Request.Context()
	if atDate := c.Query("atDate"); atDate != "" {
		date, err := time.Parse(dto.PostingDateLayout, atDate)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid atDate, expected YYYY-MM-DD").WithDetail("value", atDate))
			return
		}
		qty, err := h.service.QuantityAtDate(ctx, itemID, warehouseID, date)
		if err != nil {
			h.Error(c, err)
			return
		}
		resp.Quantity = qty
		resp.AtDate = date.Format(dto.PostingDateLayout)
		h.OK(c, resp)
		return
	}

	qty, err := h.service.AvailableQuantity(ctx, itemID, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	resp.Quantity = qty
	h.OK(c, resp)
}

// Valuation returns the moving-average rate for an (item, warehouse) pair.
// GET /api/v1/ledger/valuation?itemId=&warehouseId=
func (h *LedgerHandler) Valuation(c *gin.Context) {
	itemID, warehouseID, ok := h.pairParams(c)
	if !ok {
		return
	}

	rate, err := h.service.CurrentValuation(c.Request.Context(), itemID, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ValuationResponse{
		ItemID:      itemID.String(),
		WarehouseID: warehouseID.String(),
		Rate:        rate,
	})
}

// --- helpers ---

func (h *LedgerHandler) pathID(c *gin.Context, name string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+name).WithDetail("value", c.Param(name)))
		return id.Nil(), false
	}
	return parsed, true
}

func (h *LedgerHandler) pairParams(c *gin.Context) (id.ID, id.ID, bool) {
	itemID, err := id.Parse(c.Query("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId").WithDetail("value", c.Query("itemId")))
		return id.Nil(), id.Nil(), false
	}
	warehouseID, err := id.Parse(c.Query("warehouseId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId").WithDetail("value", c.Query("warehouseId")))
		return id.Nil(), id.Nil(), false
	}
	return itemID, warehouseID, true
}

func (h *LedgerHandler) optionalDate(c *gin.Context, value, name string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	date, err := time.Parse(dto.PostingDateLayout, value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+name+", expected YYYY-MM-DD").WithDetail("value", value))
		return nil, false
	}
	return &date, true
}
