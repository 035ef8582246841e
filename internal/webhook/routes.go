package webhook

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the WhatsApp and payment-gateway webhook endpoints
// onto r under /webhook.
func RegisterRoutes(r gin.IRouter, wa *WhatsAppHandler, pay *PaymentHandler) {
	group := r.Group("/webhook")
	group.POST("/whatsapp/:tenant_id", wa.HandleWebhook)
	group.GET("/whatsapp/:tenant_id", wa.VerifyWebhook)
	group.POST("/payments/:provider", pay.HandleWebhook)
}
