package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kleinmarkt/KleinMarkt/internal/pkg/cache"
	"github.com/kleinmarkt/KleinMarkt/internal/pkg/database"
	"github.com/kleinmarkt/KleinMarkt/internal/pkg/payment"
)

// HandlePaymentWebhook receives asynchronous payment-result notifications
// from the gateway. The gateway retries until it sees a 2xx, so every
// rejection code below is part of the retry contract.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	fields := make(map[string]string)
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		fields[string(key)] = string(value)
	})

	n := payment.Notification{
		Status:      fields[payment.FieldStatus],
		OrderRef:    fields[payment.FieldOrderRef],
		GatewayTxID: fields[payment.FieldGatewayTxID],
		Signature:   fields[payment.FieldSignature],
		Fields:      fields,
	}
	ci := payment.ClientInfo{
		IP:        ClientIdentity(c),
		UserAgent: string(c.Request().Header.UserAgent()),
	}

	proc := payment.NewProcessorFromDB(database.GetDB(), cache.GetClient())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	res := proc.Process(ctx, n, ci)
	return respondWebhookResult(c, res)
}

func respondWebhookResult(c *fiber.Ctx, res payment.Result) error {
	switch res.Outcome {
	case payment.OutcomeProcessed:
		body := fiber.Map{"ok": true, "status": res.FinalStatus}
		if res.Reason != "" {
			body["reason"] = res.Reason
		}
		return c.Status(fiber.StatusOK).JSON(body)
	case payment.OutcomeDuplicate:
		// Replays answer 200 so the gateway stops retrying a transaction
		// that is already settled.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true, "status": res.FinalStatus})
	case payment.OutcomeMalformed:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": res.Reason})
	case payment.OutcomeInvalidSignature:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": res.Reason})
	case payment.OutcomeBlocked:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": res.Reason})
	case payment.OutcomeNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": res.Reason})
	case payment.OutcomeConflict:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": res.Reason})
	case payment.OutcomeExpired:
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": res.Reason})
	case payment.OutcomeRateLimited:
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": res.Reason})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": res.Reason})
	}
}
