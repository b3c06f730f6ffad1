package domain

// PayOSStatusSuccess is the payment status the gateway reports for a
// settled transfer. Anything else marks the deposit failed.
const PayOSStatusSuccess = "success"

type PayOSOrderRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	ReturnURL   string `json:"returnUrl"`
	CancelURL   string `json:"cancelUrl"`
	WebhookURL  string `json:"webhookUrl,omitempty"`
	Signature   string `json:"signature"`
}

type PayOSOrderResponse struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	CheckoutURL string `json:"checkoutUrl"`
	QRCode      string `json:"qrCode"`
	Status      string `json:"status"`
}

// PayOSWebhookPayload is the gateway's asynchronous payment report.
// Description carries the transfer content the user typed into their
// bank transfer; Signature is an HMAC-SHA256 over the remaining fields
// joined as sorted key=value pairs.
type PayOSWebhookPayload struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Reference   string `json:"reference,omitempty"`
	Signature   string `json:"signature"`
}
