package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ectroshop9/coinshop/internal/activation"
)

// AccountHandler handles account lifecycle endpoints.
type AccountHandler struct {
	svc *activation.Service
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(svc *activation.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// CreateTemporary creates a temporary account and returns its credentials.
func (h *AccountHandler) CreateTemporary(c *gin.Context) {
	account, errCreate := h.svc.CreateTemporary(c.Request.Context())
	if errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create account failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"customer_id": account.CustomerID,
		"serial":      account.Serial,
		"pin":         account.PIN,
		"access":      account.Tokens.Access,
		"refresh":     account.Tokens.Refresh,
		"message":     "temporary account created, complete your details to activate",
	})
}

// activateRequest defines the body for final activation.
type activateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Activate completes final activation for the authenticated customer.
func (h *AccountHandler) Activate(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body activateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	phone := strings.TrimSpace(body.Phone)
	if name == "" || phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and phone are required"})
		return
	}

	customer, errFinalize := h.svc.Finalize(c.Request.Context(), customerID, name, phone)
	if errFinalize != nil {
		switch {
		case errors.Is(errFinalize, activation.ErrAlreadyActive):
			c.JSON(http.StatusConflict, gin.H{"error": "account already activated"})
		case errors.Is(errFinalize, activation.ErrPhoneRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": "phone already registered to another account"})
		case errors.Is(errFinalize, activation.ErrGraceExpired):
			c.JSON(http.StatusForbidden, gin.H{"error": "48-hour window expired, reactivate first", "action": "reactivate"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "activation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"serial":    customer.Serial,
		"name":      customer.Name,
		"is_active": customer.IsActive,
		"message":   "account activated",
	})
}

// reactivateRequest defines the body for reactivation.
type reactivateRequest struct {
	Serial string `json:"serial"`
	PIN    string `json:"pin"`
}

// Reactivate restores a lapsed account using serial and PIN.
func (h *AccountHandler) Reactivate(c *gin.Context) {
	var body reactivateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	serial := strings.TrimSpace(body.Serial)
	pin := strings.TrimSpace(body.PIN)
	if serial == "" || pin == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "serial and pin are required"})
		return
	}

	session, errReactivate := h.svc.Reactivate(c.Request.Context(), serial, pin)
	if errReactivate != nil {
		switch {
		case errors.Is(errReactivate, activation.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid serial or pin"})
		case errors.Is(errReactivate, activation.ErrAlreadyActive):
			c.JSON(http.StatusConflict, gin.H{"error": "account already active"})
		case errors.Is(errReactivate, activation.ErrGraceNotElapsed):
			c.JSON(http.StatusForbidden, gin.H{"error": "grace period still open, complete activation instead"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reactivation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"serial":  session.Serial,
		"access":  session.Tokens.Access,
		"refresh": session.Tokens.Refresh,
		"message": "account reactivated, continue to complete your details",
	})
}

// recoverRequest defines the body for serial recovery.
type recoverRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

// RecoverSerial returns the serial for a matching phone/PIN pair.
func (h *AccountHandler) RecoverSerial(c *gin.Context) {
	var body recoverRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	phone := strings.TrimSpace(body.Phone)
	pin := strings.TrimSpace(body.PIN)
	if phone == "" || pin == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone and pin are required"})
		return
	}

	serial, errRecover := h.svc.RecoverSerial(c.Request.Context(), phone, pin)
	if errRecover != nil {
		if errors.Is(errRecover, activation.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid phone or pin"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recovery failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"serial": serial})
}

// loginRequest defines the body for serial login.
type loginRequest struct {
	Serial string `json:"serial"`
}

// Login authenticates an active customer by serial and issues tokens.
func (h *AccountHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	serial := strings.TrimSpace(body.Serial)
	if serial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "serial is required"})
		return
	}

	session, errLogin := h.svc.Login(c.Request.Context(), serial)
	if errLogin != nil {
		switch {
		case errors.Is(errLogin, activation.ErrInvalidSerial):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid serial"})
		case errors.Is(errLogin, activation.ErrInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "account inactive, complete activation first"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"serial":    session.Serial,
		"name":      session.Name,
		"is_active": session.IsActive,
		"access":    session.Tokens.Access,
		"refresh":   session.Tokens.Refresh,
	})
}
