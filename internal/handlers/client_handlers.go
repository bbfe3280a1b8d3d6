package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cobranzas_app_echo/internal/models"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type clientInput struct {
	FullName string `json:"full_name"`
	DNI      string `json:"dni"`
	Phone    string `json:"phone"`
}

// ListClients returns all active clients with their payment rows
func (h *ClientHandler) ListClients(c echo.Context) error {
	var clients []models.Client
	err := h.db.Preload("Payments").
		Where("is_active = ?", true).
		Order("full_name ASC").
		Find(&clients).Error
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, clients)
}

// GetClient returns one client with policies, installments and payments
func (h *ClientHandler) GetClient(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid client ID")
	}

	var client models.Client
	err = h.db.Preload("Payments").
		Preload("Policies").
		Preload("Policies.PolicyInstallments").
		First(&client, uint(id)).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return failResult(c, http.StatusNotFound, "Client not found")
		}
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, client)
}

// CreateClient registers a new insured person
func (h *ClientHandler) CreateClient(c echo.Context) error {
	if _, err := requirePermission(h.db, c, "clientes_crear"); err != nil {
		return err
	}

	var in clientInput
	if err := c.Bind(&in); err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid JSON payload")
	}
	if in.FullName == "" || in.DNI == "" {
		return failResult(c, http.StatusBadRequest, "full_name and dni are required")
	}

	client := models.Client{
		FullName: in.FullName,
		DNI:      in.DNI,
		Phone:    in.Phone,
		IsActive: true,
	}
	if err := h.db.Create(&client).Error; err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, client)
}

// UpdateClient edits the identity fields of a client
func (h *ClientHandler) UpdateClient(c echo.Context) error {
	if _, err := requirePermission(h.db, c, "clientes_editar"); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid client ID")
	}

	var in clientInput
	if err := c.Bind(&in); err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid JSON payload")
	}

	res := h.db.Model(&models.Client{}).
		Where("id = ?", uint(id)).
		Updates(map[string]interface{}{
			"full_name": in.FullName,
			"dni":       in.DNI,
			"phone":     in.Phone,
		})
	if res.Error != nil {
		return failResult(c, http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return failResult(c, http.StatusNotFound, "Client not found")
	}
	return okResult(c, nil)
}

// DeleteClient deactivates a client. The record is retained; only the
// active flag flips.
func (h *ClientHandler) DeleteClient(c echo.Context) error {
	if _, err := requirePermission(h.db, c, "clientes_eliminar"); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid client ID")
	}

	res := h.db.Model(&models.Client{}).
		Where("id = ?", uint(id)).
		Update("is_active", false)
	if res.Error != nil {
		return failResult(c, http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return failResult(c, http.StatusNotFound, "Client not found")
	}
	return okResult(c, nil)
}
