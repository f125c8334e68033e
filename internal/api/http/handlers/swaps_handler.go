package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/slot-swap-service/internal/api/dto"
	"github.com/spec-kit/slot-swap-service/internal/auth"
	"github.com/spec-kit/slot-swap-service/internal/service"
	apperrors "github.com/spec-kit/slot-swap-service/pkg/util"
)

// SwapsHandler exposes the swap negotiation endpoints.
type SwapsHandler struct {
	swaps *service.SwapService
}

// NewSwapsHandler constructs handler.
func NewSwapsHandler(swapService *service.SwapService) *SwapsHandler {
	return &SwapsHandler{swaps: swapService}
}

// Request handles POST /api/swaps.
func (h *SwapsHandler) Request(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RequesterSlotID == "" || req.CounterpartySlotID == "" {
		return apperrors.NewValidationError("requester_slot_id and counterparty_slot_id are required", nil)
	}

	swap, err := h.swaps.RequestSwap(c.UserContext(), caller.ID, req.RequesterSlotID, req.CounterpartySlotID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSwapResponse(swap)})
}

// Respond handles POST /api/swaps/:id/response.
func (h *SwapsHandler) Respond(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.RespondSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Accept == nil {
		return apperrors.NewValidationError("accept is required", nil)
	}

	swap, err := h.swaps.RespondToSwap(c.UserContext(), caller.ID, c.Params("id"), *req.Accept)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSwapResponse(swap)})
}

// List handles GET /api/swaps.
func (h *SwapsHandler) List(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	inbox, err := h.swaps.ListSwapsForUser(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSwapInboxResponse(inbox)})
}
