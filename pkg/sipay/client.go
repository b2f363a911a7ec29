package sipay

import (
	"encoding/json"
	"fmt"
	"html"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rawises/storefront-backend/pkg/config"
)

const (
	currencyTRY      = "TRY"
	installments     = 1
	paySmart3DPath   = "/api/paySmart3D"
	successReturnURL = "/payment/success"
	failReturnURL    = "/payment/failed"
)

// BasketItem is one purchasable line forwarded to the gateway.
type BasketItem struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// PaymentRequest carries everything needed to assemble a hosted-checkout form.
type PaymentRequest struct {
	OrderNumber   string
	InvoiceID     string
	Total         decimal.Decimal
	HolderName    string
	CardNumber    string
	ExpiryMonth   string
	ExpiryYear    string
	CVV           string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Items         []BasketItem
}

// PaymentForm is the hosted-checkout handoff returned to the storefront. The
// browser renders HTML, which immediately posts the hidden form to the gateway.
type PaymentForm struct {
	InvoiceID string
	HTML      string
}

// Client assembles paySmart3D requests for the hosted payment page.
type Client struct {
	cfg        config.SipayConfig
	appBaseURL string
}

// NewClient validates gateway credentials and returns a ready client.
func NewClient(cfg config.SipayConfig, appBaseURL string) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("sipay base url is required")
	}
	if cfg.MerchantID == "" || cfg.MerchantKey == "" {
		return nil, fmt.Errorf("sipay merchant credentials are required")
	}
	if cfg.AppKey == "" || cfg.AppSecret == "" {
		return nil, fmt.Errorf("sipay app credentials are required")
	}
	if appBaseURL == "" {
		return nil, fmt.Errorf("app base url is required")
	}
	return &Client{cfg: cfg, appBaseURL: strings.TrimRight(appBaseURL, "/")}, nil
}

// GenerateOrderNumber produces a storefront order number: the RW prefix, the
// current unix millisecond timestamp and a random suffix.
func GenerateOrderNumber() string {
	return fmt.Sprintf("RW%d%d", time.Now().UnixMilli(), rand.IntN(1000))
}

// NewInvoiceID derives the gateway invoice id for an order number. The order
// number already carries the RW prefix, so only a timestamp is appended.
func NewInvoiceID(orderNumber string) string {
	return fmt.Sprintf("%s-%d", orderNumber, time.Now().UnixMilli())
}

// CreatePaymentForm builds the auto-submitting paySmart3D form for the request.
func (c *Client) CreatePaymentForm(req PaymentRequest) (PaymentForm, error) {
	if req.InvoiceID == "" {
		return PaymentForm{}, fmt.Errorf("invoice id is required")
	}
	if req.Total.IsNegative() || req.Total.IsZero() {
		return PaymentForm{}, fmt.Errorf("total must be positive")
	}

	total := req.Total.StringFixed(2)
	hashKey, err := GenerateHashKey(total, installments, currencyTRY, c.cfg.MerchantKey, req.InvoiceID, c.cfg.AppSecret)
	if err != nil {
		return PaymentForm{}, fmt.Errorf("generate hash key: %w", err)
	}

	items, err := marshalItems(req.Items)
	if err != nil {
		return PaymentForm{}, fmt.Errorf("marshal basket: %w", err)
	}

	first, rest := splitName(req.CustomerName)

	fields := []formField{
		{"cc_holder_name", fallback(req.HolderName, req.CustomerName)},
		{"cc_no", req.CardNumber},
		{"expiry_month", req.ExpiryMonth},
		{"expiry_year", req.ExpiryYear},
		{"cvv", req.CVV},
		{"currency_code", currencyTRY},
		{"installments_number", fmt.Sprint(installments)},
		{"invoice_id", req.InvoiceID},
		{"invoice_description", fmt.Sprintf("Rawises.com - Sipariş #%s", req.OrderNumber)},
		{"name", first},
		{"surname", rest},
		{"total", total},
		{"merchant_key", c.cfg.MerchantKey},
		{"items", items},
		{"cancel_url", c.appBaseURL + failReturnURL},
		{"return_url", c.appBaseURL + successReturnURL},
		{"hash_key", hashKey},
		{"response_method", "POST"},
		{"bill_email", req.CustomerEmail},
		{"bill_phone", req.CustomerPhone},
	}

	return PaymentForm{
		InvoiceID: req.InvoiceID,
		HTML:      renderAutoSubmitForm(c.cfg.BaseURL+paySmart3DPath, fields),
	}, nil
}

type basketLine struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

func marshalItems(items []BasketItem) (string, error) {
	lines := make([]basketLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, basketLine{
			Name:        item.Name,
			Price:       item.Price.StringFixed(2),
			Quantity:    item.Quantity,
			Description: item.Name,
		})
	}
	encoded, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

type formField struct {
	name  string
	value string
}

func renderAutoSubmitForm(action string, fields []formField) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<title>Ödeme Yönlendirme</title>\n<meta charset=\"utf-8\">\n</head>\n<body>\n")
	sb.WriteString("<div style=\"text-align: center; padding: 50px; font-family: Arial, sans-serif;\">\n")
	sb.WriteString("<h2>Ödeme sayfasına yönlendiriliyorsunuz...</h2>\n<p>Lütfen bekleyiniz.</p>\n</div>\n")
	sb.WriteString(fmt.Sprintf("<form id=\"sipayForm\" method=\"POST\" action=\"%s\">\n", html.EscapeString(action)))
	for _, field := range fields {
		sb.WriteString(fmt.Sprintf("<input type=\"hidden\" name=\"%s\" value=\"%s\" />\n",
			html.EscapeString(field.name), html.EscapeString(field.value)))
	}
	sb.WriteString("</form>\n<script>\ndocument.getElementById('sipayForm').submit();\n</script>\n</body>\n</html>\n")
	return sb.String()
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "Müşteri", "Müşteri"
	}
	if len(parts) == 1 {
		return parts[0], "Müşteri"
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func fallback(primary, secondary string) string {
	if primary != "" {
		return primary
	}
	return secondary
}
