package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/kleinmarkt/KleinMarkt/app/models"
	"github.com/kleinmarkt/KleinMarkt/app/repository"
)

// HandleGetListing returns a published listing by its public UUID.
func HandleGetListing(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetListingRepository()
	listing, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		log.Errorf("[Listing] lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup_failed"})
	}
	if listing.Status != models.ListingStatusActive {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}

	return c.Status(fiber.StatusOK).JSON(listing)
}
