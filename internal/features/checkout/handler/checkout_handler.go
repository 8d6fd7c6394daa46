package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"acp-checkout/internal/core/logger"
	"acp-checkout/internal/core/server"
	"acp-checkout/internal/features/checkout/domain"
	"acp-checkout/internal/features/checkout/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader deduplicates create calls.
	IdempotencyKeyHeader = "Idempotency-Key"
	// RequestIDHeader is the agent's own request id, recorded on the backing order.
	RequestIDHeader = "Request-Id"
	// ReplayedHeader is set to "true" when a create call was served from the idempotency index.
	ReplayedHeader = "Idempotency-Replayed"

	maxHeaderValueLen = 255
)

// CheckoutHandler handles HTTP requests for checkout sessions.
type CheckoutHandler struct {
	service ports.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
	}
}

// Routes returns the checkout route table. Every route requires the bearer key.
func (h *CheckoutHandler) Routes() []server.Route {
	return []server.Route{
		{Method: fiber.MethodPost, Path: "/checkout_sessions", Handler: h.CreateSession},
		{Method: fiber.MethodGet, Path: "/checkout_sessions/:id", Handler: h.GetSession},
		{Method: fiber.MethodPost, Path: "/checkout_sessions/:id", Handler: h.UpdateSession},
		{Method: fiber.MethodPatch, Path: "/checkout_sessions/:id", Handler: h.UpdateSession},
		{Method: fiber.MethodPost, Path: "/checkout_sessions/:id/complete", Handler: h.CompleteSession},
		{Method: fiber.MethodPost, Path: "/checkout_sessions/:id/cancel", Handler: h.CancelSession},
	}
}

// CreateSession handles POST /checkout_sessions.
// @Summary Create a checkout session
// @Description Validates the cart, creates a pending backing order and returns the priced session.
// @Description Replaying an Idempotency-Key returns the stored session with status 200.
// @Tags Checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Deduplicates retries"
// @Param Request-Id header string false "Agent request id"
// @Param session body domain.CreateRequest true "Cart and buyer details"
// @Success 201 {object} domain.Session
// @Success 200 {object} domain.Session "Idempotent replay"
// @Failure 400 {object} server.ErrorResponse
// @Failure 401 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 503 {object} server.ErrorResponse
// @Router /checkout_sessions [post]
func (h *CheckoutHandler) CreateSession(c *fiber.Ctx) error {
	var req domain.CreateRequest
	raw, err := decodeStrict(c.Body(), &req, false)
	if err != nil {
		return h.fail(c, err)
	}

	idemKey, err := headerValue(c, IdempotencyKeyHeader)
	if err != nil {
		return h.fail(c, err)
	}
	requestID, err := headerValue(c, RequestIDHeader)
	if err != nil {
		return h.fail(c, err)
	}

	session, replayed, err := h.service.Create(c.Context(), domain.CreateInput{
		Request:        req,
		IdempotencyKey: idemKey,
		RequestID:      requestID,
		RawPayload:     raw,
	})
	if err != nil {
		return h.fail(c, err)
	}

	if replayed {
		c.Set(ReplayedHeader, "true")
		return c.Status(http.StatusOK).JSON(session)
	}
	return c.Status(http.StatusCreated).JSON(session)
}

// GetSession handles GET /checkout_sessions/:id.
// @Summary Get a checkout session
// @Tags Checkout
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} domain.Session
// @Failure 401 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /checkout_sessions/{id} [get]
func (h *CheckoutHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.service.Get(c.Context(), sessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(session)
}

// UpdateSession handles POST and PATCH /checkout_sessions/:id.
// @Summary Update a checkout session
// @Description Absent fields are kept; null clears fulfillment_address and buyer.
// @Description items, when present, replaces the whole cart.
// @Tags Checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param session body domain.UpdateRequest true "Fields to change"
// @Success 200 {object} domain.Session
// @Failure 400 {object} server.ErrorResponse
// @Failure 401 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 503 {object} server.ErrorResponse
// @Router /checkout_sessions/{id} [post]
// @Router /checkout_sessions/{id} [patch]
func (h *CheckoutHandler) UpdateSession(c *fiber.Ctx) error {
	var req domain.UpdateRequest
	raw, err := decodeStrict(c.Body(), &req, false)
	if err != nil {
		return h.fail(c, err)
	}

	session, err := h.service.Update(c.Context(), domain.UpdateInput{
		SessionID:  sessionID(c),
		Request:    req,
		RawPayload: raw,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(session)
}

// CompleteSession handles POST /checkout_sessions/:id/complete.
// @Summary Complete a checkout session
// @Description Captures payment on the backing order. Only ready_for_payment sessions can be completed.
// @Tags Checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payment body domain.CompleteRequest false "Payment reference"
// @Success 200 {object} domain.OperationResult
// @Failure 400 {object} server.ErrorResponse
// @Failure 401 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 502 {object} server.ErrorResponse
// @Failure 503 {object} server.ErrorResponse
// @Router /checkout_sessions/{id}/complete [post]
func (h *CheckoutHandler) CompleteSession(c *fiber.Ctx) error {
	var req domain.CompleteRequest
	if _, err := decodeStrict(c.Body(), &req, true); err != nil {
		return h.fail(c, err)
	}

	result, err := h.service.Complete(c.Context(), sessionID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

// CancelSession handles POST /checkout_sessions/:id/cancel.
// @Summary Cancel a checkout session
// @Description Cancels the backing order. Completed and canceled sessions cannot be canceled.
// @Tags Checkout
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} domain.OperationResult
// @Failure 401 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 503 {object} server.ErrorResponse
// @Router /checkout_sessions/{id}/cancel [post]
func (h *CheckoutHandler) CancelSession(c *fiber.Ctx) error {
	var empty struct{}
	if _, err := decodeStrict(c.Body(), &empty, true); err != nil {
		return h.fail(c, err)
	}

	result, err := h.service.Cancel(c.Context(), sessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

// fail renders err as an ErrorResponse. Unknown errors become 500 internal_error.
func (h *CheckoutHandler) fail(c *fiber.Ctx, err error) error {
	rayID := server.RayID(c)
	log := logger.WithRequestID(rayID).With(
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	)

	var derr *domain.Error
	if !errors.As(err, &derr) {
		log.Error("Unexpected checkout failure", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(server.ErrorResponse{
			Code:    "internal_error",
			Message: "internal server error",
			RayID:   rayID,
		})
	}

	if derr.Status >= http.StatusInternalServerError {
		log.Error("Checkout request failed", zap.String("code", derr.Code), zap.Error(err))
	} else {
		log.Info("Checkout request rejected", zap.String("code", derr.Code), zap.String("reason", derr.Message))
	}

	return c.Status(derr.Status).JSON(server.ErrorResponse{
		Code:    derr.Code,
		Message: derr.Message,
		RayID:   rayID,
	})
}

// decodeStrict decodes a single JSON object into v, rejecting unknown fields
// and trailing data. It returns a private copy of the body for auditing.
func decodeStrict(body []byte, v any, allowEmpty bool) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		if allowEmpty {
			return nil, nil
		}
		return nil, domain.ErrInvalidRequest.WithMessage("request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return nil, domain.ErrInvalidRequest.WithMessage(describeDecodeError(err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.ErrInvalidRequest.WithMessage("request body must contain a single JSON object")
	}

	return append(json.RawMessage(nil), trimmed...), nil
}

func describeDecodeError(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Sprintf("field %q has the wrong type", typeErr.Field)
		}
		return "request body must be a JSON object"
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return "unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field ")
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "truncated JSON body"
	default:
		return "invalid request body: " + err.Error()
	}
}

// headerValue returns a trimmed private copy of the header value.
func headerValue(c *fiber.Ctx, name string) (string, error) {
	v := strings.TrimSpace(c.Get(name))
	if len(v) > maxHeaderValueLen {
		return "", domain.ErrInvalidRequest.WithMessage(fmt.Sprintf("%s header is too long", name))
	}
	return strings.Clone(v), nil
}

func sessionID(c *fiber.Ctx) string {
	return strings.Clone(c.Params("id"))
}
