package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eduquery-api/internal/config"
	"github.com/noah-isme/eduquery-api/internal/service"
)

// NewApp builds the fiber application. X-Forwarded-For is honoured only from
// cfg.TrustedProxies, which covers the dashboard calling the API over loopback.
func NewApp(cfg config.Config, views fiber.Views) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:                 cfg.AppName,
		ServerHeader:            cfg.AppName,
		Views:                   views,
		BodyLimit:               service.MaxImportSize + 64<<10,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          cfg.TrustedProxies,
		EnableIPValidation:      true,
	})
}
