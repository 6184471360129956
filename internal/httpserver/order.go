package httpserver

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	ordersvc "storefront/internal/service/order"
)

const idempotencyKeyHeader = "Idempotency-Key"

func createOrderHandler(logger *log.Logger, svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "invalid request body"})
			return
		}
		in.IdempotencyKey = strings.TrimSpace(c.GetHeader(idempotencyKeyHeader))

		receipt, err := svc.Create(c.Request.Context(), identityFrom(c).OwnerID, in)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		status := http.StatusCreated
		if receipt.Duplicate {
			status = http.StatusOK
		}
		c.JSON(status, gin.H{
			"success":      true,
			"data":         receipt.Order,
			"subtotal":     receipt.Subtotal,
			"shipping_fee": receipt.ShippingFee,
			"final_total":  receipt.Total,
		})
	}
}

func myOrdersHandler(logger *log.Logger, svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListMine(c.Request.Context(), identityFrom(c).OwnerID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		respondData(c, http.StatusOK, orders)
	}
}

func cancelOrderHandler(logger *log.Logger, svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Cancel(c.Request.Context(), identityFrom(c), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respondData(c, http.StatusOK, order)
	}
}

func listOrdersHandler(logger *log.Logger, svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := ordersvc.ListQuery{
			Page:   intQuery(c, "page", 1),
			Limit:  intQuery(c, "limit", 10),
			Sort:   c.Query("sort"),
			Status: c.Query("status"),
			Search: c.Query("search"),
		}
		result, err := svc.List(c.Request.Context(), q)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respondPage(c, result.Orders, result.Pagination)
	}
}

func orderStatsHandler(logger *log.Logger, svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.Stats(c.Request.Context(), c.Query("status"), c.Query("search"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respondData(c, http.StatusOK, stats)
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func updateOrderStatusHandler(logger *log.Logger, svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
			c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "missing status"})
			return
		}
		order, err := svc.UpdateStatus(c.Request.Context(), identityFrom(c), c.Param("id"), domain.OrderStatus(req.Status))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respondData(c, http.StatusOK, order)
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
