package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"acp-checkout/internal/core/logger"
	"acp-checkout/internal/features/checkout/domain"
	"acp-checkout/internal/features/checkout/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options configures the checkout state machine.
type Options struct {
	// DefaultCurrency is used when a create request omits currency.
	DefaultCurrency string
	// FulfillmentOptions are offered on every session; the first one is the default.
	FulfillmentOptions []domain.FulfillmentOption
	// Links are merchant policy links attached to every session.
	Links []domain.Link
	// OperationTimeout bounds each operation once its lock is held. It must be
	// shorter than the lock TTL.
	OperationTimeout time.Duration
}

// CheckoutService owns the checkout session lifecycle:
// create, any number of updates, then complete or cancel.
type CheckoutService struct {
	validator  *ItemValidator
	projection *OrderProjection
	repo       ports.SessionRepository
	locker     ports.Locker
	opts       Options
	now        func() time.Time
}

var _ ports.CheckoutService = (*CheckoutService)(nil)

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	validator *ItemValidator,
	projection *OrderProjection,
	repo ports.SessionRepository,
	locker ports.Locker,
	opts Options,
) *CheckoutService {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "USD"
	}
	return &CheckoutService{
		validator:  validator,
		projection: projection,
		repo:       repo,
		locker:     locker,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create builds a new session backed by a new order. When the idempotency key
// was already used, the stored session is returned unchanged and replayed is true.
func (s *CheckoutService) Create(ctx context.Context, in domain.CreateInput) (session *domain.Session, replayed bool, err error) {
	if in.IdempotencyKey != "" {
		release, err := s.lock(ctx, "idempotency:"+in.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		defer release()
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if in.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, in.IdempotencyKey)
		switch {
		case err == nil:
			logger.Get().Info("Idempotent checkout replay",
				zap.String("session_id", existing.ID),
				zap.String("idempotency_key", in.IdempotencyKey),
			)
			return withReplayMarker(existing), true, nil
		case !errors.Is(err, ports.ErrSessionNotFound):
			return nil, false, domain.ErrBackendUnavailable.Wrap(fmt.Errorf("idempotency lookup: %w", err))
		}
	}

	req := in.Request

	currency, err := normalizeCurrency(req.Currency, s.opts.DefaultCurrency)
	if err != nil {
		return nil, false, err
	}
	if err := validateReturnURL(req.ReturnURL); err != nil {
		return nil, false, err
	}

	buyer := req.Buyer
	if req.Customer != nil && req.Customer.Email != "" {
		if buyer == nil {
			buyer = &domain.Buyer{}
		}
		if buyer.Email == "" {
			buyer.Email = req.Customer.Email
		}
	}
	if err := validateBuyer(buyer); err != nil {
		return nil, false, err
	}

	items, err := s.validator.Validate(ctx, req.Items)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	session = &domain.Session{
		Currency:           currency,
		LineItems:          items,
		FulfillmentAddress: req.FulfillmentAddress,
		FulfillmentOptions: s.opts.FulfillmentOptions,
		Buyer:              buyer,
		Links:              s.opts.Links,
		ReturnURL:          req.ReturnURL,
		IdempotencyKey:     in.IdempotencyKey,
		RawPayload:         in.RawPayload,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	fee, advisories := s.selectFulfillment(session, req.FulfillmentOptionID)

	requestID := in.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	meta := map[string]string{
		MetaSource:            "acp",
		MetaRequestID:         requestID,
		MetaRawPayload:        string(in.RawPayload),
		MetaFulfillmentOption: session.FulfillmentOptionID,
	}
	if in.IdempotencyKey != "" {
		meta[MetaIdempotencyKey] = in.IdempotencyKey
	}

	if err := s.projection.Materialize(ctx, session, fee, meta); err != nil {
		return nil, false, err
	}

	finalize(session, fee, advisories)

	if err := s.repo.Save(ctx, session); err != nil {
		logger.Get().Error("Failed to persist new checkout session",
			zap.String("session_id", session.ID),
			zap.String("order_id", session.OrderID),
			zap.Error(err),
		)
		return nil, false, domain.ErrBackendUnavailable.Wrap(fmt.Errorf("save session: %w", err))
	}

	logger.Get().Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.String("order_id", session.OrderID),
		zap.String("status", string(session.Status)),
		zap.Int("line_items", len(session.LineItems)),
	)

	return session, false, nil
}

// Get returns the stored session.
func (s *CheckoutService) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	if _, ok := domain.OrderIDFromSessionID(sessionID); !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.load(ctx, sessionID)
}

// Update applies a partial update and recomputes totals, messages and status.
// Only sessions that are not yet paying or finished can be updated.
func (s *CheckoutService) Update(ctx context.Context, in domain.UpdateInput) (*domain.Session, error) {
	release, err := s.lockSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := s.bound(ctx)
	defer cancel()

	current, err := s.load(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if !current.Status.IsMutable() {
		return nil, domain.ErrInvalidSessionState.WithMessage(
			fmt.Sprintf("cannot update a session in status %s", current.Status))
	}

	next := *current
	req := in.Request

	requests := toRequests(current.LineItems)
	if req.Items.Set {
		if req.Items.Value == nil || len(*req.Items.Value) == 0 {
			return nil, domain.ErrMissingItems
		}
		requests = *req.Items.Value
	}

	if req.FulfillmentAddress.Set {
		next.FulfillmentAddress = req.FulfillmentAddress.Value
	}

	if req.Buyer.Set {
		if err := validateBuyer(req.Buyer.Value); err != nil {
			return nil, err
		}
		next.Buyer = req.Buyer.Value
	}

	requestedOption := current.FulfillmentOptionID
	if req.FulfillmentOptionID.Set {
		requestedOption = ""
		if req.FulfillmentOptionID.Value != nil {
			requestedOption = *req.FulfillmentOptionID.Value
		}
	}

	items, err := s.validator.Validate(ctx, requests)
	if err != nil {
		return nil, err
	}
	next.LineItems = items

	fee, advisories := s.selectFulfillment(&next, requestedOption)

	meta := map[string]string{
		MetaRawPayload:        string(in.RawPayload),
		MetaFulfillmentOption: next.FulfillmentOptionID,
	}
	if err := s.projection.Sync(ctx, &next, fee, meta); err != nil {
		return nil, err
	}

	finalize(&next, fee, advisories)
	next.RawPayload = in.RawPayload
	next.Version = current.Version + 1
	next.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, domain.ErrBackendUnavailable.Wrap(fmt.Errorf("save session: %w", err))
	}

	logger.Get().Info("Checkout session updated",
		zap.String("session_id", next.ID),
		zap.String("previous_status", string(current.Status)),
		zap.String("status", string(next.Status)),
	)

	return &next, nil
}

// Complete captures payment for a ready session. If the capture fails the
// session returns to ready_for_payment.
func (s *CheckoutService) Complete(ctx context.Context, sessionID string, req domain.CompleteRequest) (*domain.OperationResult, error) {
	release, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := s.bound(ctx)
	defer cancel()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.StatusReadyForPayment {
		return nil, domain.ErrInvalidSessionState.WithMessage(
			fmt.Sprintf("cannot complete a session in status %s", session.Status))
	}

	if err := s.transition(ctx, session, domain.StatusProcessingForPayment); err != nil {
		return nil, err
	}

	var transactionID string
	if req.PaymentData != nil {
		transactionID = req.PaymentData.Token
	}

	if err := s.projection.Capture(ctx, session.OrderID, transactionID); err != nil {
		logger.Get().Warn("Payment capture failed",
			zap.String("session_id", session.ID),
			zap.String("order_id", session.OrderID),
			zap.Error(err),
		)
		rctx, rcancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		rerr := s.transition(rctx, session, domain.StatusReadyForPayment)
		rcancel()
		if rerr != nil {
			logger.Get().Error("Failed to restore session after capture failure",
				zap.String("session_id", session.ID),
				zap.Error(rerr),
			)
		}
		return nil, err
	}

	if err := s.transition(ctx, session, domain.StatusCompleted); err != nil {
		return nil, err
	}

	// Captured orders reduce stock.
	s.validator.Forget(ctx, session.LineItems)

	logger.Get().Info("Checkout session completed",
		zap.String("session_id", session.ID),
		zap.String("order_id", session.OrderID),
	)

	return &domain.OperationResult{OK: true, OrderID: session.OrderID, Status: session.Status}, nil
}

// Cancel voids the backing order and moves the session to canceled.
func (s *CheckoutService) Cancel(ctx context.Context, sessionID string) (*domain.OperationResult, error) {
	release, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := s.bound(ctx)
	defer cancel()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, domain.ErrInvalidSessionState.WithMessage(
			fmt.Sprintf("cannot cancel a session in status %s", session.Status))
	}

	if err := s.projection.Cancel(ctx, session.OrderID); err != nil {
		return nil, err
	}

	if err := s.transition(ctx, session, domain.StatusCanceled); err != nil {
		return nil, err
	}

	logger.Get().Info("Checkout session canceled",
		zap.String("session_id", session.ID),
		zap.String("order_id", session.OrderID),
	)

	return &domain.OperationResult{OK: true, OrderID: session.OrderID, Status: session.Status}, nil
}

// restoreTimeout bounds the save that undoes a failed capture. It runs after the
// operation deadline may have passed.
const restoreTimeout = 2 * time.Second

// bound applies the operation deadline to ctx.
func (s *CheckoutService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.OperationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.OperationTimeout)
}

func (s *CheckoutService) transition(ctx context.Context, session *domain.Session, status domain.SessionStatus) error {
	session.Status = status
	session.Version++
	session.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, session); err != nil {
		return domain.ErrBackendUnavailable.Wrap(fmt.Errorf("save session: %w", err))
	}
	return nil
}

func (s *CheckoutService) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound.WithMessage(fmt.Sprintf("checkout session %s not found", sessionID))
		}
		return nil, domain.ErrBackendUnavailable.Wrap(fmt.Errorf("load session: %w", err))
	}
	return session, nil
}

func (s *CheckoutService) lockSession(ctx context.Context, sessionID string) (func(), error) {
	if _, ok := domain.OrderIDFromSessionID(sessionID); !ok {
		return nil, domain.ErrSessionNotFound.WithMessage(fmt.Sprintf("checkout session %s not found", sessionID))
	}
	return s.lock(ctx, "session:"+sessionID)
}

func (s *CheckoutService) lock(ctx context.Context, key string) (func(), error) {
	release, err := s.locker.Acquire(ctx, key)
	if err != nil {
		return nil, domain.ErrBackendUnavailable.Wrap(fmt.Errorf("acquire lock %s: %w", key, err))
	}
	return release, nil
}

// selectFulfillment resolves the requested option against the configured ones,
// falling back to the default with an advisory message for unknown ids.
func (s *CheckoutService) selectFulfillment(session *domain.Session, requested string) (decimal.Decimal, []domain.Message) {
	session.FulfillmentOptions = s.opts.FulfillmentOptions
	if len(s.opts.FulfillmentOptions) == 0 {
		session.FulfillmentOptionID = ""
		return decimal.Zero, nil
	}

	if requested != "" {
		for _, opt := range s.opts.FulfillmentOptions {
			if opt.ID == requested {
				session.FulfillmentOptionID = opt.ID
				return opt.Fee, nil
			}
		}
	}

	def := s.opts.FulfillmentOptions[0]
	session.FulfillmentOptionID = def.ID
	if requested == "" {
		return def.Fee, nil
	}

	return def.Fee, []domain.Message{{
		Type:    domain.MessageTypeInfo,
		Code:    domain.CodeInvalidFulfillmentOption,
		Path:    "$.fulfillment_option_id",
		Content: fmt.Sprintf("Fulfillment option %q is not available; using %q.", requested, def.ID),
	}}
}

// finalize recomputes totals, messages and status from the session state.
func finalize(session *domain.Session, fee decimal.Decimal, advisories []domain.Message) {
	session.Totals = Price(PricingInput{
		Currency:       session.Currency,
		Items:          session.LineItems,
		Tax:            session.Tax,
		HasAddress:     session.FulfillmentAddress != nil,
		FulfillmentFee: fee,
	})
	session.Messages = append(BuildMessages(session.FulfillmentAddress, session.LineItems), advisories...)
	session.Status = session.ComputeStatus()
}

func withReplayMarker(session *domain.Session) *domain.Session {
	replay := *session
	replay.Messages = make([]domain.Message, 0, len(session.Messages)+1)
	replay.Messages = append(replay.Messages, session.Messages...)
	replay.Messages = append(replay.Messages, domain.Message{
		Type:    domain.MessageTypeInfo,
		Code:    domain.CodeIdempotentReplay,
		Content: "A session was already created with this Idempotency-Key; returning it unchanged.",
	})
	return &replay
}

// toRequests rebuilds requests from stored lines. Catalog priced lines omit
// the price so re-validation picks up catalog changes.
func toRequests(items []domain.LineItem) []domain.LineItemRequest {
	requests := make([]domain.LineItemRequest, 0, len(items))
	for _, item := range items {
		req := domain.LineItemRequest{
			ProductID: domain.FlexString(item.ProductID),
			Quantity:  domain.NewFlexNumber(fmt.Sprint(item.Quantity)),
		}
		if item.RequestPriced {
			req.UnitPrice = domain.NewFlexNumber(item.UnitPrice.String())
		}
		requests = append(requests, req)
	}
	return requests
}

func normalizeCurrency(currency, fallback string) (string, error) {
	if currency == "" {
		currency = fallback
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return "", domain.ErrInvalidCurrency.WithMessage(fmt.Sprintf("currency %q is not a 3-letter code", currency))
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", domain.ErrInvalidCurrency.WithMessage(fmt.Sprintf("currency %q is not a 3-letter code", currency))
		}
	}
	return currency, nil
}

func validateReturnURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.ErrInvalidReturnURL.WithMessage(fmt.Sprintf("return_url %q is not an absolute http(s) URL", raw))
	}
	return nil
}

func validateBuyer(buyer *domain.Buyer) error {
	if buyer == nil || buyer.Email == "" {
		return nil
	}
	addr, err := mail.ParseAddress(buyer.Email)
	if err != nil || addr.Address != buyer.Email {
		return domain.ErrInvalidCustomerEmail.WithMessage(fmt.Sprintf("email %q is not valid", buyer.Email))
	}
	return nil
}
