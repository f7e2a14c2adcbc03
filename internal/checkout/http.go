package checkout

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"NepKart/internal/cart"
	"NepKart/pkg/kit"
)

const maxCheckoutBody = 1 << 20

// Server drives the checkout hand-off: it snapshots the cart, prices it,
// initiates a payment with the gateway, and handles the gateway's redirect
// back. Only the success path touches the cart, and only to clear it.
type Server struct {
	Cart    *cart.Store
	Khalti  *KhaltiClient
	SiteURL string
	Log     *zap.Logger

	mu      sync.Mutex
	cleared map[string]struct{}
}

func (s *Server) CheckoutHandler() http.HandlerFunc { return s.checkout }
func (s *Server) CallbackHandler() http.HandlerFunc { return s.callback }
func (s *Server) SuccessHandler() http.HandlerFunc  { return s.success }
func (s *Server) FailedHandler() http.HandlerFunc   { return s.failed }

type checkoutReq struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
}

func (r checkoutReq) missingFields() []string {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"email", r.Email},
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"phone", r.Phone},
		{"address", r.Address},
	} {
		if strings.TrimSpace(f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCheckoutRequest(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	if missing := req.missingFields(); len(missing) > 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "missing required fields", map[string]any{"fields": missing})
		return
	}

	snap := s.Cart.Snapshot()
	if len(snap.Items) == 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "cart is empty", nil)
		return
	}

	quote := QuoteFor(snap.TotalPrice())
	fullName := req.FirstName + " " + req.LastName

	initReq := InitiateRequest{
		ReturnURL:         s.SiteURL + "/payment/callback",
		WebsiteURL:        s.SiteURL,
		Amount:            ToPaisa(quote.Total),
		PurchaseOrderID:   uuid.NewString(),
		PurchaseOrderName: "Order from " + fullName,
		CustomerInfo: CustomerInfo{
			Name:  fullName,
			Email: req.Email,
			Phone: req.Phone,
		},
		AmountBreakdown: []BreakdownLine{
			{Label: "Mark Price", Amount: ToPaisa(quote.Subtotal)},
			{Label: "VAT", Amount: ToPaisa(quote.Tax)},
			{Label: "Shipping", Amount: ToPaisa(quote.Shipping)},
		},
		ProductDetails: productDetails(snap.Items),
	}

	resp, err := s.Khalti.Initiate(r.Context(), initReq)
	if err != nil {
		s.writeGatewayError(w, r, err)
		return
	}

	s.Log.Info("payment initiated",
		zap.String("pidx", resp.Pidx),
		zap.String("purchase_order_id", initReq.PurchaseOrderID),
		zap.Int64("amount_paisa", initReq.Amount),
	)

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"pidx":              resp.Pidx,
		"payment_url":       resp.PaymentURL,
		"purchase_order_id": initReq.PurchaseOrderID,
		"quote":             quote,
	})
}

// callback is the gateway's return URL. It verifies the payment reference
// with a lookup and forwards the browser to the outcome page.
func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pidx := q.Get("pidx")
	if pidx == "" {
		kit.Redirect(w, r, s.SiteURL+"?error=missing_pidx")
		return
	}

	status, err := s.Khalti.Lookup(r.Context(), pidx)
	if err != nil {
		s.Log.Warn("payment verification failed", zap.Error(err), zap.String("pidx", pidx))
		kit.Redirect(w, r, s.SiteURL+"?error=verification_failed")
		return
	}

	if status == StatusCompleted {
		v := url.Values{}
		v.Set("txnId", q.Get("txnId"))
		v.Set("amount", q.Get("amount"))
		v.Set("pidx", pidx)
		kit.Redirect(w, r, s.SiteURL+"/payment-success?"+v.Encode())
		return
	}

	v := url.Values{}
	v.Set("status", status)
	v.Set("pidx", pidx)
	kit.Redirect(w, r, s.SiteURL+"/payment-failed?"+v.Encode())
}

// success clears the cart exactly once per payment reference. Re-rendering
// the page must not fire the side effect again, and clearing an already
// empty cart is itself a safe no-op.
func (s *Server) success(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pidx := q.Get("pidx")

	if s.clearOnce(pidx) {
		s.Cart.Dispatch(cart.Clear{})
		s.Log.Info("cart cleared after payment", zap.String("pidx", pidx))
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "payment successful",
		"txn_id":  q.Get("txnId"),
		"amount":  q.Get("amount"),
		"pidx":    pidx,
	})
}

func (s *Server) failed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "payment failed",
		"status":  q.Get("status"),
		"pidx":    q.Get("pidx"),
	})
}

func (s *Server) clearOnce(pidx string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cleared == nil {
		s.cleared = map[string]struct{}{}
	}
	if _, done := s.cleared[pidx]; done {
		return false
	}
	s.cleared[pidx] = struct{}{}
	return true
}

func decodeCheckoutRequest(w http.ResponseWriter, r *http.Request) (checkoutReq, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCheckoutBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req checkoutReq
	if err := dec.Decode(&req); err != nil {
		return checkoutReq{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return checkoutReq{}, errors.New("extra data after json object")
	}

	return req, nil
}

// productDetails builds the gateway line items. Unit and line totals come
// from integer rupee prices, so the paisa amounts are exact.
func productDetails(items []cart.Item) []ProductDetail {
	out := make([]ProductDetail, 0, len(items))
	for _, it := range items {
		out = append(out, ProductDetail{
			Identity:   strconv.FormatInt(it.ID, 10),
			Name:       it.Name,
			TotalPrice: it.Price * int64(it.Quantity) * 100,
			Quantity:   it.Quantity,
			UnitPrice:  it.Price * 100,
		})
	}
	return out
}

func (s *Server) writeGatewayError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrGatewayUnavailable):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "payment gateway unreachable", nil)
	case errors.Is(err, ErrGatewayBadStatus):
		kit.WriteError(w, r, http.StatusBadGateway, "payment gateway error", nil)
	case errors.Is(err, ErrGatewayRejected):
		kit.WriteError(w, r, http.StatusBadGateway, "payment initiation failed", map[string]any{"detail": err.Error()})
	default:
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
