package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/config"
	"github.com/example/flashpizza/internal/utils"
)

// AuthHandler bundles dependencies for the admin gate.
type AuthHandler struct {
	cfg            *config.Config
	passphraseHash string
	log            *zap.Logger
}

// NewAuthHandler constructs an AuthHandler. ADMIN_PASSPHRASE may hold the
// plaintext or a bcrypt hash.
func NewAuthHandler(cfg *config.Config, log *zap.Logger) (*AuthHandler, error) {
	hash, err := utils.HashPassphrase(cfg.AdminPassphrase)
	if err != nil {
		return nil, fmt.Errorf("hash admin passphrase: %w", err)
	}
	return &AuthHandler{cfg: cfg, passphraseHash: hash, log: log.Named("auth")}, nil
}

type loginRequest struct {
	Passphrase string `json:"passphrase"`
}

// Login exchanges the admin passphrase for a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Passphrase == "" {
		return fiber.NewError(fiber.StatusBadRequest, "passphrase is required")
	}

	if !utils.CheckPassphrase(h.passphraseHash, req.Passphrase) {
		h.log.Warn("admin login rejected", zap.String("client_ip", c.IP()))
		return fiber.NewError(fiber.StatusUnauthorized, "invalid passphrase")
	}

	token, err := utils.GenerateAdminToken(h.cfg.JWTSecret, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	h.log.Info("admin logged in", zap.String("client_ip", c.IP()))
	return c.JSON(fiber.Map{
		"success":    true,
		"token":      token,
		"expires_in": int(h.cfg.TokenExpires.Seconds()),
	})
}
