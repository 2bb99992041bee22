package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-reconciler/internal/application/dto"
)

// Cabeceras de los webhooks de WooCommerce.
const (
	HeaderWebhookSignature  = "X-WC-Webhook-Signature"
	HeaderWebhookDeliveryID = "X-WC-Webhook-Delivery-ID"
	HeaderWebhookTopic      = "X-WC-Webhook-Topic"
)

// ComputeSignature firma del cuerpo: base64(HMAC-SHA256(body, secret)).
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// WebhookSignature verifica la firma HMAC del cuerpo crudo antes de cualquier parseo.
// Con secret vacío (solo permitido en development) no verifica.
func WebhookSignature(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}
		got := strings.TrimSpace(c.Get(HeaderWebhookSignature))
		if got == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_SIGNATURE", Message: HeaderWebhookSignature + " requerido"})
		}
		want := ComputeSignature(secret, c.Body())
		if !hmac.Equal([]byte(got), []byte(want)) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_SIGNATURE", Message: "firma inválida"})
		}
		return c.Next()
	}
}

// WooCommercePing responde 200 al ping que WooCommerce envía al crear el webhook
// (cuerpo form-encoded webhook_id=N, sin topic). El ping no viene firmado.
func WooCommercePing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(HeaderWebhookTopic) == "" && bytes.HasPrefix(c.Body(), []byte("webhook_id=")) {
			return c.JSON(fiber.Map{"status": "pong"})
		}
		return c.Next()
	}
}
