package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

func getCartHandler(logger *log.Logger, svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Get(c.Request.Context(), identityFrom(c).OwnerID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respondData(c, http.StatusOK, view)
	}
}

func addToCartHandler(logger *log.Logger, svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" || req.Quantity == nil {
			c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "missing product_id or quantity"})
			return
		}
		view, err := svc.Add(c.Request.Context(), identityFrom(c).OwnerID, req.ProductID, *req.Quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respondData(c, http.StatusCreated, view)
	}
}

func updateCartItemHandler(logger *log.Logger, svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" || req.Quantity == nil {
			c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "missing product_id or quantity"})
			return
		}
		view, err := svc.SetQuantity(c.Request.Context(), identityFrom(c).OwnerID, req.ProductID, *req.Quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respondData(c, http.StatusOK, view)
	}
}

func removeCartItemHandler(logger *log.Logger, svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Remove(c.Request.Context(), identityFrom(c).OwnerID, c.Param("product_id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respondData(c, http.StatusOK, view)
	}
}

func clearCartHandler(logger *log.Logger, svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Clear(c.Request.Context(), identityFrom(c).OwnerID); err != nil {
			respondError(c, logger, err)
			return
		}
		respondMessage(c, http.StatusOK, "cart cleared")
	}
}
