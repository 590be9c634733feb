package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"farmmarket/internal/domain"
	"farmmarket/internal/dto"
	apperrors "farmmarket/internal/errors"
)

const maxBodyBytes = 1 << 20

type OrderUseCase interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByFarmer(ctx context.Context, farmerID string) ([]domain.Order, error)
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
}

type OrderController struct {
	useCase OrderUseCase
	logger  *zap.Logger
}

func NewOrderController(useCase OrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orders, err := c.useCase.ListOrders(r.Context())
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, orders)
}

func (c *OrderController) ListOrdersByFarmer(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	farmerID := chi.URLParam(r, "farmerId")
	if farmerID == "" {
		c.writeValidationError(w, traceID, "invalid farmerId", apperrors.ValidationDetail{
			Field:   "farmerId",
			Message: "farmerId is required",
		})
		return
	}

	orders, err := c.useCase.ListOrdersByFarmer(r.Context(), farmerID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger.With(zap.String("farmerId", farmerID)))
		return
	}

	c.writeJSON(w, http.StatusOK, orders)
}

func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if validationErr := validateCreateOrderRequest(req); validationErr != nil {
		ve, _ := apperrors.IsValidationError(validationErr)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	order, err := c.useCase.CreateOrder(r.Context(), req.ToDraft())
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger.With(zap.String("farmerId", req.FarmerID)))
		return
	}

	logger.Info("order created", zap.String("orderId", order.ID))
	c.writeJSON(w, http.StatusCreated, order)
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	orderID := chi.URLParam(r, "orderId")
	logger := c.logger.With(zap.String("traceId", traceID), zap.String("orderId", orderID))

	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if !domain.IsKnownStatus(req.Status) {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of pending, confirmed, preparing, out_for_delivery, delivered, cancelled",
		})
		return
	}

	if err := c.useCase.UpdateStatus(r.Context(), orderID, req.Status); err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateCreateOrderRequest(req dto.CreateOrderRequest) error {
	var details []apperrors.ValidationDetail

	if req.CustomerID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "customerId",
			Message: "customerId is required",
		})
	}

	if req.FarmerID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "farmerId",
			Message: "farmerId is required",
		})
	}

	if req.Total.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "total",
			Message: "total must be non-negative",
		})
	}

	if req.Status != "" && !domain.IsKnownStatus(req.Status) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "status",
			Message: "status is not a known order status",
		})
	}

	for idx, item := range req.Products {
		if item.ProductID == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "products[" + strconv.Itoa(idx) + "].productId",
				Message: "productId is required",
			})
		}

		if item.Quantity < 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "products[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be non-negative",
			})
		}

		if item.Price.IsNegative() {
			details = append(details, apperrors.ValidationDetail{
				Field:   "products[" + strconv.Itoa(idx) + "].price",
				Message: "price must be non-negative",
			})
		}
	}

	details = append(details, req.ToDraft().MoneyScaleViolations()...)

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (c *OrderController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		logger.Warn("order rejected by store", zap.Error(err))
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		logger.Warn("order write deadlocked", zap.Error(err))
		c.writeErrorResponse(w, traceID, http.StatusConflict, "DEADLOCK", err.Error())
		return
	}

	if de, ok := apperrors.IsDecodeError(err); ok {
		logger.Error("stored order could not be decoded", zap.String("orderId", de.OrderID), zap.Error(err))
		c.writeErrorResponse(w, traceID, http.StatusInternalServerError, "CORRUPT_ORDER", "stored order data could not be read")
		return
	}

	if _, ok := apperrors.IsStoreError(err); ok {
		logger.Error("order store unavailable", zap.Error(err))
		c.writeErrorResponse(w, traceID, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "order store is unavailable")
		return
	}

	if _, ok := apperrors.IsWriteError(err); ok {
		logger.Error("order write failed", zap.Error(err))
		c.writeErrorResponse(w, traceID, http.StatusInternalServerError, "WRITE_FAILED", "order could not be saved")
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *OrderController) writeErrorResponse(w http.ResponseWriter, traceID string, statusCode int, code string, message string) {
	response := dto.ErrorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	c.writeJSON(w, statusCode, response)
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	response := dto.ErrorResponse{
		TraceID:   traceID,
		Status:    http.StatusBadRequest,
		Code:      "VALIDATION_ERROR",
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}

	c.writeJSON(w, http.StatusBadRequest, response)
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
