package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rawises/storefront-backend/internal/orders"
	"github.com/rawises/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/logger"
	"github.com/rawises/storefront-backend/pkg/redis"
	"github.com/rawises/storefront-backend/pkg/sipay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartReader interface {
	Get(ctx context.Context, token string, member bool) (*models.CartRecord, error)
	MarkConverted(ctx context.Context, cartID uuid.UUID) error
}

type orderCreator interface {
	Create(ctx context.Context, tx *gorm.DB, input orders.CreateOrderInput) (*models.Order, error)
}

type paymentGateway interface {
	CreatePaymentForm(req sipay.PaymentRequest) (sipay.PaymentForm, error)
}

type newOrderNotifier interface {
	NotifyNewOrder(ctx context.Context, order *models.Order) error
}

// SubmitResult bundles the created order with the hosted-payment handoff.
type SubmitResult struct {
	Order *models.Order
	Form  sipay.PaymentForm
}

// Service drives the two-step checkout wizard. Session state lives in Redis
// under the cart token; nothing touches Postgres until Submit.
type Service interface {
	Start(ctx context.Context, cartToken string, member bool) (*Session, error)
	Get(ctx context.Context, cartToken string) (*Session, error)
	SubmitCustomer(ctx context.Context, cartToken string, info CustomerInfo) (*Session, error)
	SubmitCard(ctx context.Context, cartToken string, info CardInfo) (*Session, error)
	Back(ctx context.Context, cartToken string) (*Session, error)
	Submit(ctx context.Context, cartToken string) (*SubmitResult, error)
	Cancel(ctx context.Context, cartToken string) error
}

// ServiceParams collects the checkout dependencies.
type ServiceParams struct {
	Logger        *logger.Logger
	Store         redis.SessionStore
	Cart          cartReader
	Orders        orderCreator
	Gateway       paymentGateway
	Notifier      newOrderNotifier
	Tx            txRunner
	SessionTTL    time.Duration
	SubmitLockTTL time.Duration
}

type service struct {
	logg          *logger.Logger
	store         redis.SessionStore
	cart          cartReader
	orders        orderCreator
	gateway       paymentGateway
	notifier      newOrderNotifier
	tx            txRunner
	sessionTTL    time.Duration
	submitLockTTL time.Duration
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	sessionTTL := params.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	lockTTL := params.SubmitLockTTL
	if lockTTL <= 0 {
		lockTTL = 15 * time.Second
	}
	return &service{
		logg:          params.Logger,
		store:         params.Store,
		cart:          params.Cart,
		orders:        params.Orders,
		gateway:       params.Gateway,
		notifier:      params.Notifier,
		tx:            params.Tx,
		sessionTTL:    sessionTTL,
		submitLockTTL: lockTTL,
	}, nil
}

// Start opens a fresh wizard session for a non-empty cart. An existing
// session under the same token is replaced.
func (s *service) Start(ctx context.Context, cartToken string, member bool) (*Session, error) {
	if strings.TrimSpace(cartToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}

	record, err := s.cart.Get(ctx, cartToken, member)
	if err != nil {
		return nil, err
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	session := NewSession(cartToken, member)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) Get(ctx context.Context, cartToken string) (*Session, error) {
	return s.load(ctx, cartToken)
}

// SubmitCustomer stores step one and advances the wizard.
func (s *service) SubmitCustomer(ctx context.Context, cartToken string, info CustomerInfo) (*Session, error) {
	session, err := s.load(ctx, cartToken)
	if err != nil {
		return nil, err
	}
	if err := session.SetCustomer(info); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitCard stores step two. The wizard must already be past the customer
// step.
func (s *service) SubmitCard(ctx context.Context, cartToken string, info CardInfo) (*Session, error) {
	session, err := s.load(ctx, cartToken)
	if err != nil {
		return nil, err
	}
	if err := session.SetCard(info); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Back moves from payment to the customer step, dropping card data.
func (s *service) Back(ctx context.Context, cartToken string) (*Session, error) {
	session, err := s.load(ctx, cartToken)
	if err != nil {
		return nil, err
	}
	if err := session.Back(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Submit finalizes the checkout: it creates the pending order, builds the
// hosted-payment form and only then converts the cart, so a gateway failure
// leaves the cart active for a resubmission. A short-lived Redis lock keyed
// by the cart token swallows duplicate submissions from double clicks.
func (s *service) Submit(ctx context.Context, cartToken string) (*SubmitResult, error) {
	session, err := s.load(ctx, cartToken)
	if err != nil {
		return nil, err
	}
	if !session.ReadyToSubmit() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout steps are incomplete")
	}

	record, err := s.cart.Get(ctx, cartToken, session.Member)
	if err != nil {
		return nil, err
	}
	if record.ID == uuid.Nil || len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lockKey := s.store.SubmitLockKey(cartToken)
	acquired, err := s.store.SetNX(ctx, lockKey, "1", s.submitLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire submit lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicate, "checkout submission already in progress")
	}

	orderNumber := sipay.GenerateOrderNumber()
	invoiceID := sipay.NewInvoiceID(orderNumber)

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.orders.Create(ctx, tx, buildOrderInput(orderNumber, invoiceID, session, record))
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if err != nil {
		s.releaseLock(ctx, lockKey)
		if coded := pkgerrors.As(err); coded != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	form, err := s.gateway.CreatePaymentForm(buildPaymentRequest(orderNumber, invoiceID, session, record))
	if err != nil {
		// The pending order stays; the session survives and the cart stays
		// active so the customer can resubmit without re-entering the wizard.
		s.releaseLock(ctx, lockKey)
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "build payment form")
	}

	if err := s.cart.MarkConverted(ctx, record.ID); err != nil {
		logCtx := s.logg.WithOrderNumber(ctx, orderNumber)
		s.logg.Error(logCtx, "cart conversion failed after order creation", err)
	}

	if err := s.notifier.NotifyNewOrder(ctx, order); err != nil {
		s.logg.Error(s.logg.WithOrderNumber(ctx, orderNumber), "new order notification failed", err)
	}

	if err := s.store.Del(ctx, s.store.CheckoutSessionKey(cartToken)); err != nil {
		s.logg.Error(ctx, "discard checkout session failed", err)
	}

	return &SubmitResult{Order: order, Form: form}, nil
}

// Cancel drops the wizard session without touching the cart.
func (s *service) Cancel(ctx context.Context, cartToken string) error {
	if strings.TrimSpace(cartToken) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	if err := s.store.Del(ctx, s.store.CheckoutSessionKey(cartToken)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discard checkout session")
	}
	return nil
}

func (s *service) load(ctx context.Context, cartToken string) (*Session, error) {
	if strings.TrimSpace(cartToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	raw, err := s.store.Get(ctx, s.store.CheckoutSessionKey(cartToken))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	session, err := DecodeSession(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout session")
	}
	return session, nil
}

func (s *service) save(ctx context.Context, session *Session) error {
	encoded, err := session.Encode()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout session")
	}
	key := s.store.CheckoutSessionKey(session.CartToken)
	if err := s.store.Set(ctx, key, encoded, s.sessionTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store checkout session")
	}
	return nil
}

func (s *service) releaseLock(ctx context.Context, lockKey string) {
	if err := s.store.Del(ctx, lockKey); err != nil {
		s.logg.Error(ctx, "release submit lock failed", err)
	}
}

func buildOrderInput(orderNumber, invoiceID string, session *Session, record *models.CartRecord) orders.CreateOrderInput {
	input := orders.CreateOrderInput{
		OrderNumber:   orderNumber,
		InvoiceID:     invoiceID,
		CustomerName:  session.Customer.Name,
		CustomerEmail: session.Customer.Email,
		CustomerPhone: session.Customer.Phone,
		Address:       session.Customer.Address,
		SubtotalExVAT: record.SubtotalExVAT,
		DiscountTotal: record.MemberDiscountAmount,
		VATAmount:     record.VATAmount,
		TotalAmount:   record.FinalTotal,
	}
	if notes := strings.TrimSpace(session.Customer.Notes); notes != "" {
		input.Notes = &notes
	}
	for _, item := range record.Items {
		productID := item.ProductID
		input.Items = append(input.Items, orders.CreateOrderItemInput{
			ProductID: &productID,
			Name:      item.Name,
			Brand:     item.Brand,
			UnitPrice: item.DiscountPrice,
			Quantity:  item.Quantity,
		})
	}
	return input
}

func buildPaymentRequest(orderNumber, invoiceID string, session *Session, record *models.CartRecord) sipay.PaymentRequest {
	req := sipay.PaymentRequest{
		OrderNumber:   orderNumber,
		InvoiceID:     invoiceID,
		Total:         record.FinalTotal,
		HolderName:    session.Card.HolderName,
		CardNumber:    strings.ReplaceAll(session.Card.Number, " ", ""),
		ExpiryMonth:   session.Card.ExpiryMonth,
		ExpiryYear:    session.Card.ExpiryYear,
		CVV:           session.Card.CVV,
		CustomerName:  session.Customer.Name,
		CustomerEmail: session.Customer.Email,
		CustomerPhone: session.Customer.Phone,
	}
	for _, item := range record.Items {
		req.Items = append(req.Items, sipay.BasketItem{
			Name:     item.Name,
			Price:    item.DiscountPrice,
			Quantity: item.Quantity,
		})
	}
	return req
}
