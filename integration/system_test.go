//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

// TestSystem_E2E drives a running storefront end to end: browse the
// catalog, fill the cart, adjust quantities, and clear it again. The
// checkout hand-off itself needs live gateway credentials and is
// covered by package tests against a fake gateway instead.
func TestSystem_E2E(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var products []map[string]any
	doJSON(t, http.MethodGet, baseURL+"/products", nil, &products, 200)
	if len(products) == 0 {
		t.Fatalf("expected non-empty products")
	}

	pid, ok := products[0]["id"].(float64)
	if !ok || pid == 0 {
		t.Fatalf("product id missing in response: %#v", products[0])
	}

	var view struct {
		Items []struct {
			ID       int64 `json:"id"`
			Quantity int   `json:"quantity"`
		} `json:"items"`
		TotalItems int   `json:"total_items"`
		TotalPrice int64 `json:"total_price"`
	}

	doJSON(t, http.MethodPost, baseURL+"/cart/items", map[string]any{
		"product_id": int64(pid),
	}, &view, 200)
	if view.TotalItems < 1 {
		t.Fatalf("cart empty after add: %+v", view)
	}

	doJSON(t, http.MethodPut, baseURL+"/cart/items/"+strconv.FormatInt(int64(pid), 10), map[string]any{
		"quantity": 3,
	}, &view, 200)
	if len(view.Items) == 0 || view.Items[0].Quantity != 3 {
		t.Fatalf("quantity update failed: %+v", view)
	}

	doJSON(t, http.MethodDelete, baseURL+"/cart", nil, &view, 200)
	if view.TotalItems != 0 {
		t.Fatalf("cart not cleared: %+v", view)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
