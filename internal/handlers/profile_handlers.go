package handlers

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cobranzas_app_echo/internal/models"
)

type ProfileHandler struct {
	db         *gorm.DB
	authClient *auth.Client
}

func NewProfileHandler(db *gorm.DB, authClient *auth.Client) *ProfileHandler {
	return &ProfileHandler{db: db, authClient: authClient}
}

// Me returns the caller's own profile
func (h *ProfileHandler) Me(c echo.Context) error {
	profile, err := currentProfile(h.db, c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return okResult(c, profile)
}

// ListStaff returns every profile, ordered by role
func (h *ProfileHandler) ListStaff(c echo.Context) error {
	if _, err := requirePermission(h.db, c, "usuarios_gestionar"); err != nil {
		return err
	}

	var profiles []models.Profile
	if err := h.db.Order("role ASC, full_name ASC").Find(&profiles).Error; err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}
	return okResult(c, profiles)
}

type createStaffInput struct {
	Email       string                 `json:"email"`
	Password    string                 `json:"password"`
	FullName    string                 `json:"full_name"`
	Role        string                 `json:"role"`
	Permissions map[string]interface{} `json:"permissions"`
}

// CreateStaff creates an account at the auth provider and a matching profile
// row holding the assigned role and permissions.
func (h *ProfileHandler) CreateStaff(c echo.Context) error {
	if _, err := requirePermission(h.db, c, "usuarios_gestionar"); err != nil {
		return err
	}
	if h.authClient == nil {
		return failResult(c, http.StatusInternalServerError, "Auth provider not initialized")
	}

	var in createStaffInput
	if err := c.Bind(&in); err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid JSON payload")
	}
	if in.Email == "" || in.Password == "" {
		return failResult(c, http.StatusBadRequest, "email and password are required")
	}
	switch in.Role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleOperator, models.RoleViewer:
	default:
		return failResult(c, http.StatusBadRequest, "Unknown role")
	}

	params := (&auth.UserToCreate{}).
		Email(in.Email).
		Password(in.Password).
		DisplayName(in.FullName).
		EmailVerified(true)
	user, err := h.authClient.CreateUser(c.Request().Context(), params)
	if err != nil {
		return failResult(c, http.StatusInternalServerError, err.Error())
	}

	profile := models.Profile{
		ID:          user.UID,
		FullName:    in.FullName,
		Role:        in.Role,
		Permissions: in.Permissions,
	}
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&profile).Error
	if err != nil {
		return failResult(c, http.StatusInternalServerError, "Account created but profile failed: "+err.Error())
	}
	return okResult(c, profile)
}

type updateStaffInput struct {
	FullName    *string                `json:"full_name"`
	Role        *string                `json:"role"`
	Permissions map[string]interface{} `json:"permissions"`
}

// UpdateStaff edits role, permissions or name of an existing profile
func (h *ProfileHandler) UpdateStaff(c echo.Context) error {
	if _, err := requirePermission(h.db, c, "usuarios_gestionar"); err != nil {
		return err
	}

	uid := c.Param("id")
	if uid == "" {
		return failResult(c, http.StatusBadRequest, "Missing profile ID")
	}

	var in updateStaffInput
	if err := c.Bind(&in); err != nil {
		return failResult(c, http.StatusBadRequest, "Invalid JSON payload")
	}

	updates := map[string]interface{}{}
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}
	if in.Role != nil {
		switch *in.Role {
		case models.RoleSuperAdmin, models.RoleAdmin, models.RoleOperator, models.RoleViewer:
			updates["role"] = *in.Role
		default:
			return failResult(c, http.StatusBadRequest, "Unknown role")
		}
	}
	if in.Permissions != nil {
		updates["permissions"] = in.Permissions
	}
	if len(updates) == 0 {
		return failResult(c, http.StatusBadRequest, "Nothing to update")
	}

	res := h.db.Model(&models.Profile{}).Where("id = ?", uid).Updates(updates)
	if res.Error != nil {
		return failResult(c, http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return failResult(c, http.StatusNotFound, "Profile not found")
	}
	return okResult(c, nil)
}
