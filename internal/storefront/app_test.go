package storefront_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"NepKart/internal/cart"
	"NepKart/internal/catalog"
	"NepKart/internal/checkout"
	"NepKart/internal/storefront"
)

func newStorefrontTS(t *testing.T, gatewayURL string) *httptest.Server {
	t.Helper()

	log := zap.NewNop()
	catalogStore := catalog.NewMemStore()

	cartStore := cart.NewStore(cart.NewMemSlot(), log)
	t.Cleanup(cartStore.Close)

	h := storefront.NewHandler(
		&catalog.Server{Store: catalogStore, Log: log},
		&cart.Server{Store: cartStore, Catalog: catalogStore, Log: log},
		&checkout.Server{
			Cart:    cartStore,
			Khalti:  checkout.NewKhaltiClient(gatewayURL, "test-secret"),
			SiteURL: "http://shop.example.com",
			Log:     log,
		},
		storefront.HTTPDeps{
			Log:     log,
			Service: "storefront",
		},
	)

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func newFakeGatewayTS(t *testing.T, lookupStatus string) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/epayment/initiate/":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"pidx":        "pidx-e2e",
				"payment_url": "https://pay.example.com/pidx-e2e",
			})
		case "/epayment/lookup/":
			_ = json.NewEncoder(w).Encode(map[string]string{"status": lookupStatus})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

type cartView struct {
	Items []struct {
		ID       int64 `json:"id"`
		Quantity int   `json:"quantity"`
	} `json:"items"`
	IsOpen     bool  `json:"is_open"`
	TotalPrice int64 `json:"total_price"`
	TotalItems int   `json:"total_items"`
}

func decodeCart(t *testing.T, raw []byte) cartView {
	t.Helper()
	var v cartView
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode cart: %v body=%s", err, string(raw))
	}
	return v
}

func TestStorefront_FullPurchaseFlow(t *testing.T) {
	gwTS := newFakeGatewayTS(t, checkout.StatusCompleted)
	ts := newStorefrontTS(t, gwTS.URL)

	c := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/products", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("products status=%d", resp.StatusCode)
		}
		var products []map[string]any
		if err := json.Unmarshal(raw, &products); err != nil {
			t.Fatalf("decode products: %v", err)
		}
		if len(products) != 8 {
			t.Fatalf("products=%d want=8", len(products))
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/cart/items", map[string]any{"product_id": 1})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add status=%d body=%s", resp.StatusCode, string(raw))
		}
		v := decodeCart(t, raw)
		if v.TotalItems != 1 || v.TotalPrice != 131999 {
			t.Fatalf("view=%+v", v)
		}
	}

	{
		_, raw := doJSON(t, c, http.MethodPost, ts.URL+"/cart/items", map[string]any{"product_id": 1})
		v := decodeCart(t, raw)
		if len(v.Items) != 1 || v.Items[0].Quantity != 2 {
			t.Fatalf("repeated add merged wrong: %+v", v)
		}
	}

	{
		_, raw := doJSON(t, c, http.MethodPut, ts.URL+"/cart/items/1", map[string]any{"quantity": 3})
		v := decodeCart(t, raw)
		if v.TotalItems != 3 || v.TotalPrice != 3*131999 {
			t.Fatalf("update view=%+v", v)
		}
	}

	var paymentURL string
	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/checkout", map[string]any{
			"email":      "user@example.com",
			"first_name": "Asha",
			"last_name":  "Shrestha",
			"phone":      "9800000000",
			"address":    "Thamel",
			"city":       "Kathmandu",
			"state":      "Bagmati",
			"zip_code":   "44600",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("checkout status=%d body=%s", resp.StatusCode, string(raw))
		}
		var cr struct {
			PaymentURL string `json:"payment_url"`
		}
		if err := json.Unmarshal(raw, &cr); err != nil {
			t.Fatalf("decode checkout: %v", err)
		}
		paymentURL = cr.PaymentURL
	}
	if paymentURL == "" {
		t.Fatalf("empty payment_url")
	}

	{
		resp, _ := doJSON(t, c, http.MethodGet, ts.URL+"/payment/callback?pidx=pidx-e2e&txnId=tx1&amount=100", nil)
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("callback status=%d", resp.StatusCode)
		}
		loc := resp.Header.Get("Location")
		if !strings.Contains(loc, "/payment-success") {
			t.Fatalf("callback location=%q", loc)
		}
	}

	{
		resp, _ := doJSON(t, c, http.MethodGet, ts.URL+"/payment-success?pidx=pidx-e2e&txnId=tx1&amount=100", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("success status=%d", resp.StatusCode)
		}

		_, raw := doJSON(t, c, http.MethodGet, ts.URL+"/cart", nil)
		v := decodeCart(t, raw)
		if v.TotalItems != 0 || len(v.Items) != 0 {
			t.Fatalf("cart not cleared: %+v", v)
		}
	}
}

func TestStorefront_AddUnknownProduct(t *testing.T) {
	gwTS := newFakeGatewayTS(t, checkout.StatusCompleted)
	ts := newStorefrontTS(t, gwTS.URL)

	c := &http.Client{}
	resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/cart/items", map[string]any{"product_id": 404})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}
}

func TestStorefront_CheckoutEmptyCart(t *testing.T) {
	gwTS := newFakeGatewayTS(t, checkout.StatusCompleted)
	ts := newStorefrontTS(t, gwTS.URL)

	c := &http.Client{}
	resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/checkout", map[string]any{
		"email":      "user@example.com",
		"first_name": "Asha",
		"last_name":  "Shrestha",
		"phone":      "9800000000",
		"address":    "Thamel",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}
}

func TestStorefront_ToggleVisibility(t *testing.T) {
	gwTS := newFakeGatewayTS(t, checkout.StatusCompleted)
	ts := newStorefrontTS(t, gwTS.URL)

	c := &http.Client{}
	_, raw := doJSON(t, c, http.MethodPost, ts.URL+"/cart/toggle", nil)
	if v := decodeCart(t, raw); !v.IsOpen {
		t.Fatalf("expected open cart, got %+v", v)
	}

	_, raw = doJSON(t, c, http.MethodPost, ts.URL+"/cart/toggle", nil)
	if v := decodeCart(t, raw); v.IsOpen {
		t.Fatalf("expected closed cart, got %+v", v)
	}
}
