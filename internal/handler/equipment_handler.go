package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"assetdesk/internal/errors"
	"assetdesk/internal/service"
)

// EquipmentHandler handles equipment endpoints.
type EquipmentHandler struct {
	equipmentService service.EquipmentService
}

// NewEquipmentHandler creates a new equipment handler.
func NewEquipmentHandler(equipmentService service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentService: equipmentService}
}

// CreateEquipmentRequest represents an equipment creation request. Date
// fields are free-form strings; an unparseable date is stored as absent.
type CreateEquipmentRequest struct {
	AssetID           string          `json:"assetId"`
	Category          string          `json:"category"`
	Status            string          `json:"status"`
	Model             string          `json:"model"`
	SerialNumber      string          `json:"serialNumber"`
	Location          string          `json:"location"`
	Comment           string          `json:"comment"`
	WarrantyExpiry    string          `json:"warrantyExpiry"`
	PurchaseDate      string          `json:"purchaseDate"`
	PurchasePrice     decimal.Decimal `json:"purchasePrice"`
	AssigneeName      string          `json:"assigneeName"`
	Position          string          `json:"position"`
	EmployeeEmail     string          `json:"employeeEmail"`
	PhoneNumber       string          `json:"phoneNumber"`
	Department        string          `json:"department"`
	DamageDescription string          `json:"damageDescription"`
}

// UpdateEquipmentRequest represents a partial equipment update; omitted
// fields are left unchanged.
type UpdateEquipmentRequest struct {
	AssetID           *string          `json:"assetId"`
	Category          *string          `json:"category"`
	Status            *string          `json:"status"`
	Model             *string          `json:"model"`
	SerialNumber      *string          `json:"serialNumber"`
	Location          *string          `json:"location"`
	Comment           *string          `json:"comment"`
	WarrantyExpiry    *string          `json:"warrantyExpiry"`
	PurchaseDate      *string          `json:"purchaseDate"`
	PurchasePrice     *decimal.Decimal `json:"purchasePrice"`
	AssigneeName      *string          `json:"assigneeName"`
	Position          *string          `json:"position"`
	EmployeeEmail     *string          `json:"employeeEmail"`
	PhoneNumber       *string          `json:"phoneNumber"`
	Department        *string          `json:"department"`
	DamageDescription *string          `json:"damageDescription"`
}

// CountResponse represents a category count response.
type CountResponse struct {
	Count int64 `json:"count"`
}

// MessageResponse represents a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// List godoc
// @Summary List equipment
// @Description Returns non-deleted equipment records, newest first.
// @Tags equipment
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} model.Equipment
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /equipment [get]
func (h *EquipmentHandler) List(c echo.Context) error {
	records, err := h.equipmentService.List(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, records)
}

// Create godoc
// @Summary Create an equipment record
// @Tags equipment
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateEquipmentRequest true "Equipment data"
// @Success 201 {object} model.Equipment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /equipment [post]
func (h *EquipmentHandler) Create(c echo.Context) error {
	var req CreateEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	eq, err := h.equipmentService.Create(c.Request().Context(), service.CreateEquipmentInput{
		AssetID:           req.AssetID,
		Category:          req.Category,
		Status:            req.Status,
		Model:             req.Model,
		SerialNumber:      req.SerialNumber,
		Location:          req.Location,
		Comment:           req.Comment,
		WarrantyExpiry:    req.WarrantyExpiry,
		PurchaseDate:      req.PurchaseDate,
		PurchasePrice:     req.PurchasePrice,
		AssigneeName:      req.AssigneeName,
		Position:          req.Position,
		EmployeeEmail:     req.EmployeeEmail,
		PhoneNumber:       req.PhoneNumber,
		Department:        req.Department,
		DamageDescription: req.DamageDescription,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, eq)
}

// Update godoc
// @Summary Update an equipment record
// @Description Partial update; transitioning away from Damaged clears the damage description.
// @Tags equipment
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Equipment ID"
// @Param request body UpdateEquipmentRequest true "Fields to update"
// @Success 200 {object} model.Equipment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /equipment/{id} [put]
func (h *EquipmentHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid equipment ID",
			Code:  "INVALID_UUID",
		})
	}

	var req UpdateEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	eq, err := h.equipmentService.Update(c.Request().Context(), id, service.UpdateEquipmentInput{
		AssetID:           req.AssetID,
		Category:          req.Category,
		Status:            req.Status,
		Model:             req.Model,
		SerialNumber:      req.SerialNumber,
		Location:          req.Location,
		Comment:           req.Comment,
		WarrantyExpiry:    req.WarrantyExpiry,
		PurchaseDate:      req.PurchaseDate,
		PurchasePrice:     req.PurchasePrice,
		AssigneeName:      req.AssigneeName,
		Position:          req.Position,
		EmployeeEmail:     req.EmployeeEmail,
		PhoneNumber:       req.PhoneNumber,
		Department:        req.Department,
		DamageDescription: req.DamageDescription,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, eq)
}

// Delete godoc
// @Summary Soft-delete an equipment record
// @Description Flags the record as deleted; it stays addressable by ID for recovery.
// @Tags equipment
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Equipment ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /equipment/{id} [delete]
func (h *EquipmentHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid equipment ID",
			Code:  "INVALID_UUID",
		})
	}

	if err := h.equipmentService.SoftDelete(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "equipment deleted"})
}

// CountByCategory godoc
// @Summary Count non-deleted equipment in a category
// @Tags equipment
// @Produce json
// @Security ApiKeyAuth
// @Param category path string true "Category"
// @Success 200 {object} CountResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /equipment/count/{category} [get]
func (h *EquipmentHandler) CountByCategory(c echo.Context) error {
	count, err := h.equipmentService.CountByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, CountResponse{Count: count})
}

// Summary godoc
// @Summary Equipment counts by status
// @Tags equipment
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} service.Summary
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /equipment/summary [get]
func (h *EquipmentHandler) Summary(c echo.Context) error {
	summary, err := h.equipmentService.Summary(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, summary)
}

// ExpiringWarranty godoc
// @Summary Equipment with warranty expiring within 30 days
// @Tags equipment
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} service.WarrantyAlert
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /equipment/expiring-warranty [get]
func (h *EquipmentHandler) ExpiringWarranty(c echo.Context) error {
	alerts, err := h.equipmentService.ExpiringWarranty(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, alerts)
}

// GroupedByEmail godoc
// @Summary In Use equipment grouped by assignee email
// @Tags equipment
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} service.AssigneeGroup
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /equipment/grouped-by-email [get]
func (h *EquipmentHandler) GroupedByEmail(c echo.Context) error {
	groups, err := h.equipmentService.GroupedByEmail(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, groups)
}
