package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cobranzas_app_echo/internal/models"
)

// ActionResult is the JSON envelope every mutating endpoint returns
type ActionResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func okResult(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, ActionResult{Success: true, Data: data})
}

func failResult(c echo.Context, code int, message string) error {
	return c.JSON(code, ActionResult{Success: false, Error: message})
}

func getStringFromContext(c echo.Context, key string) string {
	if val := c.Get(key); val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

// currentProfile resolves the caller's profile from the auth UID set by the
// middleware. A missing profile is an error: every caller must have one.
func currentProfile(db *gorm.DB, c echo.Context) (models.Profile, error) {
	uid := getStringFromContext(c, "userUID")
	if uid == "" {
		return models.Profile{}, fmt.Errorf("no authenticated user")
	}

	var profile models.Profile
	if err := db.First(&profile, "id = ?", uid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.Profile{}, fmt.Errorf("user profile not found")
		}
		return models.Profile{}, err
	}
	return profile, nil
}

// requirePermission rejects the request before any write happens unless the
// caller holds the granular permission (or an admin override).
func requirePermission(db *gorm.DB, c echo.Context, permission string) (models.Profile, error) {
	profile, err := currentProfile(db, c)
	if err != nil {
		return profile, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if !profile.Can(permission) {
		return profile, echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions for "+permission)
	}
	return profile, nil
}
