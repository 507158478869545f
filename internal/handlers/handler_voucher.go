package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corebooks/corebooks/internal/apperrors"
	"github.com/corebooks/corebooks/internal/core/domain"
	portssvc "github.com/corebooks/corebooks/internal/core/ports/services"
	"github.com/corebooks/corebooks/internal/core/services"
	"github.com/corebooks/corebooks/internal/dto"
	"github.com/corebooks/corebooks/internal/middleware"
	"github.com/gin-gonic/gin"
)

// voucherHandler handles HTTP requests related to payment/receipt/deposit vouchers.
type voucherHandler struct {
	voucherService portssvc.VoucherSvcFacade
}

// newVoucherHandler creates a new voucherHandler.
func newVoucherHandler(vs portssvc.VoucherSvcFacade) *voucherHandler {
	return &voucherHandler{voucherService: vs}
}

// registerVoucherRoutes registers routes related to vouchers.
func registerVoucherRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade) {
	h := newVoucherHandler(voucherService)

	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("", h.createVoucher)
		vouchers.POST("/preview", h.previewVoucher)
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/:id", h.getVoucher)
		vouchers.POST("/:id/submit", h.submitVoucher)
		vouchers.POST("/:id/post", h.postVoucher)
		vouchers.POST("/:id/reverse", h.reverseVoucher)
		vouchers.DELETE("/:id", h.cancelVoucher)
	}
}

// isVoucherValidationError reports whether the error is one of the voucher
// rule violations that map to a 400 response.
func isVoucherValidationError(err error) bool {
	return errors.Is(err, services.ErrVoucherAccountsEqual) ||
		errors.Is(err, services.ErrCashAccountNotAsset) ||
		errors.Is(err, services.ErrCounterAccountType) ||
		errors.Is(err, services.ErrBeneficiaryInvalid) ||
		errors.Is(err, services.ErrPartyKindMismatch) ||
		errors.Is(err, services.ErrAccountNotFound) ||
		errors.Is(err, services.ErrCurrencyMismatch) ||
		errors.Is(err, apperrors.ErrValidation)
}

// createVoucher godoc
// @Summary Create a voucher
// @Description Creates a payment, receipt or deposit voucher as a draft
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   voucher body dto.CreateVoucherRequest true "Voucher details"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} map[string]string "Invalid input, accounts or beneficiary"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create voucher"
// @Security BearerAuth
// @Router /vouchers [post]
func (h *voucherHandler) createVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateVoucher", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.CreateVoucher(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if isVoucherValidationError(err) {
			logger.Warn("Validation error creating voucher", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create voucher in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create voucher"})
		}
		return
	}

	logger.Info("Voucher created", slog.String("voucher_id", voucher.VoucherID), slog.String("voucher_no", voucher.VoucherNo))
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(voucher))
}

// previewVoucher godoc
// @Summary Preview the journal lines a voucher would produce
// @Description Derives the two balanced journal lines for a voucher without saving anything
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   voucher body dto.PreviewVoucherRequest true "Voucher preview input"
// @Success 200 {object} dto.VoucherPreviewResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /vouchers/preview [post]
func (h *voucherHandler) previewVoucher(c *gin.Context) {
	var req dto.PreviewVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.voucherService.PreviewVoucher(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getVoucher godoc
// @Summary Get a voucher by ID
// @Description Retrieves details for a specific voucher
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 500 {object} map[string]string "Failed to retrieve voucher"
// @Security BearerAuth
// @Router /vouchers/{id} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherID := c.Param("id")

	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), voucherID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		} else {
			logger.Error("Failed to get voucher from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve voucher"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// listVouchers godoc
// @Summary List vouchers
// @Description Retrieves a paginated list of vouchers, optionally filtered by type
// @Tags vouchers
// @Produce  json
// @Param   voucherType query string false "Filter by voucher type" Enums(PAYMENT, RECEIPT, DEPOSIT)
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.ListVouchersResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list vouchers"
// @Security BearerAuth
// @Router /vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.voucherService.ListVouchers(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list vouchers", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list vouchers"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// submitVoucher godoc
// @Summary Submit a voucher for approval
// @Description Transitions a DRAFT voucher to PENDING
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 409 {object} map[string]string "Illegal status transition"
// @Failure 500 {object} map[string]string "Failed to submit voucher"
// @Security BearerAuth
// @Router /vouchers/{id}/submit [post]
func (h *voucherHandler) submitVoucher(c *gin.Context) {
	h.transitionVoucher(c, h.voucherService.SubmitVoucher, "submit")
}

// postVoucher godoc
// @Summary Post a voucher
// @Description Transitions a DRAFT or PENDING voucher to POSTED, creating and posting its derived journal
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 400 {object} map[string]string "Voucher no longer satisfies posting rules"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 409 {object} map[string]string "Illegal status transition"
// @Failure 500 {object} map[string]string "Failed to post voucher"
// @Security BearerAuth
// @Router /vouchers/{id}/post [post]
func (h *voucherHandler) postVoucher(c *gin.Context) {
	h.transitionVoucher(c, h.voucherService.PostVoucher, "post")
}

// reverseVoucher godoc
// @Summary Reverse a posted voucher
// @Description Reverses the voucher's linked journal and marks the voucher REVERSED
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 409 {object} map[string]string "Illegal status transition"
// @Failure 500 {object} map[string]string "Failed to reverse voucher"
// @Security BearerAuth
// @Router /vouchers/{id}/reverse [post]
func (h *voucherHandler) reverseVoucher(c *gin.Context) {
	h.transitionVoucher(c, h.voucherService.ReverseVoucher, "reverse")
}

// transitionVoucher handles the shared plumbing of the submit/post/reverse
// endpoints: user extraction, the service call and error mapping.
func (h *voucherHandler) transitionVoucher(c *gin.Context, op func(ctx context.Context, voucherID, userID string) (*domain.Voucher, error), action string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := op(c.Request.Context(), voucherID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		case errors.Is(err, services.ErrIllegalTransition), errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case isVoucherValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to "+action+" voucher", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " voucher"})
		}
		return
	}

	logger.Info("Voucher "+action+" succeeded", slog.String("voucher_id", voucherID))
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// cancelVoucher godoc
// @Summary Cancel a voucher
// @Description Deletes a voucher that is still DRAFT or PENDING
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 204 "Voucher cancelled"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 409 {object} map[string]string "Voucher is not cancellable in its current status"
// @Failure 500 {object} map[string]string "Failed to cancel voucher"
// @Security BearerAuth
// @Router /vouchers/{id} [delete]
func (h *voucherHandler) cancelVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.voucherService.CancelVoucher(c.Request.Context(), voucherID, userID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to cancel voucher", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel voucher"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
