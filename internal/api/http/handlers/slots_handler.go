package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/slot-swap-service/internal/api/dto"
	"github.com/spec-kit/slot-swap-service/internal/auth"
	"github.com/spec-kit/slot-swap-service/internal/domain"
	"github.com/spec-kit/slot-swap-service/internal/service"
	apperrors "github.com/spec-kit/slot-swap-service/pkg/util"
)

// SlotsHandler exposes slot CRUD and the marketplace listing.
type SlotsHandler struct {
	slots *service.SlotService
}

// NewSlotsHandler constructs handler.
func NewSlotsHandler(slotService *service.SlotService) *SlotsHandler {
	return &SlotsHandler{slots: slotService}
}

// Create handles POST /api/slots.
func (h *SlotsHandler) Create(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	slot, err := h.slots.CreateSlot(c.UserContext(), caller.ID, service.SlotCreateInput{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSlotResponse(slot)})
}

// ListOwn handles GET /api/slots.
func (h *SlotsHandler) ListOwn(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	slots, err := h.slots.ListOwnSlots(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSlotListResponse(slots)})
}

// ListSwappable handles GET /api/slots/swappable.
func (h *SlotsHandler) ListSwappable(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	slots, err := h.slots.ListSwappableSlots(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSlotListResponse(slots)})
}

// Update handles PUT /api/slots/:id.
func (h *SlotsHandler) Update(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.SlotUpdateInput{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if req.Status != nil {
		status := domain.SlotStatus(*req.Status)
		input.Status = &status
	}

	slot, err := h.slots.UpdateSlot(c.UserContext(), caller.ID, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSlotResponse(slot)})
}

// Delete handles DELETE /api/slots/:id.
func (h *SlotsHandler) Delete(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.slots.DeleteSlot(c.UserContext(), caller.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ok": true}})
}
