package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stitchfade/boutique-backend/internal/platform/apierr"
	"github.com/stitchfade/boutique-backend/internal/services"
)

type CartHandler struct {
	cartService services.CartService
}

func NewCartHandler(cartService services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (ch *CartHandler) AddItem(c *gin.Context) {
	var req struct {
		ItemID string `json:"item_id"`
		Size   string `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailure, err)
		return
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailure, err)
		return
	}
	if err := ch.cartService.AddItem(c.Request.Context(), itemID, req.Size); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CartHandler) GetCart(c *gin.Context) {
	lines, err := ch.cartService.GetCart(c.Request.Context())
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": lines})
}
