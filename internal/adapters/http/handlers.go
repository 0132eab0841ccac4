package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/core/usecases"
)

// --- Offenders ---

// ListOffendersHandler returns all offender profiles with pagination.
func ListOffendersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offenders, err := deps.Offenders.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		page, pg := paginate(c, offenders)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetOffenderHandler returns a single offender profile by ID.
func GetOffenderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "offender id is required")
		}
		off, err := deps.Offenders.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "offender not found")
		}
		return c.JSON(off)
	}
}

// CreateOffenderHandler registers a new offender profile.
func CreateOffenderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var off domain.Offender
		if err := c.BodyParser(&off); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Offenders.Create(c.Context(), &off); err != nil {
			if errors.Is(err, usecases.ErrIDNumberExists) {
				return errConflict(c, err.Error())
			}
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(off)
	}
}

// UpdateOffenderHandler replaces an offender profile.
func UpdateOffenderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "offender id is required")
		}

		var off domain.Offender
		if err := c.BodyParser(&off); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		off.ID = id

		if err := deps.Offenders.Update(c.Context(), &off); err != nil {
			return errNotFound(c, "offender not found")
		}
		return c.JSON(off)
	}
}

// DeleteOffenderHandler removes an offender profile.
func DeleteOffenderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "offender id is required")
		}
		if err := deps.Offenders.Delete(c.Context(), id); err != nil {
			return errNotFound(c, "offender not found")
		}
		return c.SendStatus(204)
	}
}

// --- Devices ---

// ListDevicesHandler returns all tracking devices with pagination.
func ListDevicesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		devices, err := deps.Devices.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		page, pg := paginate(c, devices)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetDeviceHandler returns a single device by ID.
func GetDeviceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "device id is required")
		}
		dev, err := deps.Devices.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "device not found")
		}
		return c.JSON(dev)
	}
}

// RegisterDeviceHandler creates a tracking device. An offender may wear
// at most one device; a second assignment is rejected with 409.
func RegisterDeviceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var dev domain.Device
		if err := c.BodyParser(&dev); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Devices.Register(c.Context(), &dev); err != nil {
			if errors.Is(err, usecases.ErrOffenderAlreadyAssigned) {
				return errConflict(c, err.Error())
			}
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(dev)
	}
}

// UpdateDeviceHandler replaces a device record.
func UpdateDeviceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "device id is required")
		}

		var dev domain.Device
		if err := c.BodyParser(&dev); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		dev.ID = id

		if err := deps.Devices.Update(c.Context(), &dev); err != nil {
			if errors.Is(err, usecases.ErrOffenderAlreadyAssigned) {
				return errConflict(c, err.Error())
			}
			return errNotFound(c, "device not found")
		}
		return c.JSON(dev)
	}
}

// DeleteDeviceHandler removes a device.
func DeleteDeviceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "device id is required")
		}
		if err := deps.Devices.Delete(c.Context(), id); err != nil {
			return errNotFound(c, "device not found")
		}
		return c.SendStatus(204)
	}
}

// --- POIs ---

// ListPOIsHandler returns all points of interest. With ?active=true only
// the POIs eligible for proximity checks are returned.
func ListPOIsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			pois []domain.POI
			err  error
		)
		if c.QueryBool("active", false) {
			pois, err = deps.POIs.ListActive(c.Context())
		} else {
			pois, err = deps.POIs.List(c.Context())
		}
		if err != nil {
			return errInternal(c, err.Error())
		}

		page, pg := paginate(c, pois)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetPOIHandler returns a single POI by ID.
func GetPOIHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "poi id is required")
		}
		poi, err := deps.POIs.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "poi not found")
		}
		return c.JSON(poi)
	}
}

// CreatePOIHandler stores a new POI.
func CreatePOIHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var poi domain.POI
		if err := c.BodyParser(&poi); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if poi.CreatedAt.IsZero() {
			poi.CreatedAt = time.Now().UTC()
		}

		if err := deps.POIs.Create(c.Context(), &poi); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(poi)
	}
}

// UpdatePOIHandler replaces a POI, including activation toggling.
func UpdatePOIHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "poi id is required")
		}

		var poi domain.POI
		if err := c.BodyParser(&poi); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		poi.ID = id

		if err := deps.POIs.Update(c.Context(), &poi); err != nil {
			return errNotFound(c, "poi not found")
		}
		return c.JSON(poi)
	}
}

// DeletePOIHandler removes a POI.
func DeletePOIHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "poi id is required")
		}
		if err := deps.POIs.Delete(c.Context(), id); err != nil {
			return errNotFound(c, "poi not found")
		}
		return c.SendStatus(204)
	}
}

// --- Alerts ---

// ListAlertsHandler returns the alert log, newest first.
func ListAlertsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		alerts, err := deps.Alerts.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		page, pg := paginate(c, alerts)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetAlertHandler returns a single alert by ID.
func GetAlertHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "alert id is required")
		}
		alert, err := deps.Alerts.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "alert not found")
		}
		return c.JSON(alert)
	}
}

// AcknowledgeAlertHandler marks an alert acknowledged. Acknowledgement is
// idempotent.
func AcknowledgeAlertHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "alert id is required")
		}
		if err := deps.Alerts.Acknowledge(c.Context(), id); err != nil {
			return errNotFound(c, "alert not found")
		}
		alert, err := deps.Alerts.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "alert not found")
		}
		return c.JSON(alert)
	}
}

// --- Stats ---

// DashboardStatsHandler returns the overview numbers for the panel.
func DashboardStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Stats.Dashboard(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "public, max-age=15")
		return c.JSON(stats)
	}
}
