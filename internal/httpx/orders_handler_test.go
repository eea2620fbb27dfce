package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefcatur/go-market-checkout/internal/auth"
	"github.com/ariefcatur/go-market-checkout/internal/catalog"
	"github.com/ariefcatur/go-market-checkout/internal/checkout"
	"github.com/ariefcatur/go-market-checkout/internal/orders"
	"github.com/ariefcatur/go-market-checkout/internal/payment"
	"github.com/ariefcatur/go-market-checkout/internal/redisx"
)

type fakeProducts struct{ byID map[string]*catalog.Product }

func (f *fakeProducts) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeOrders struct {
	created *orders.Order
	creates int
}

func (f *fakeOrders) CreateOrderTx(ctx context.Context, ord *orders.Order, items []orders.OrderItem) error {
	f.creates++
	ord.ID = "ord-http-1"
	ord.Status = orders.StatusPending
	f.created = ord
	return nil
}

func (f *fakeOrders) SetPaymentID(ctx context.Context, orderID, txn string) error { return nil }

type fakeFees struct{}

func (fakeFees) AdminFee(ctx context.Context, code string) int64 { return 1500 }

type fakePayments struct{}

func (fakePayments) CreatePayment(ctx context.Context, in payment.CreatePaymentRequest) (*payment.PaymentDetails, error) {
	return &payment.PaymentDetails{TransactionID: "txn-http-1", Status: "PENDING", Amount: in.Amount}, nil
}

type memCache struct{ m map[string]string }

func newMemCache() *memCache { return &memCache{m: map[string]string{}} }

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.m[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	c.m[key] = val
	return nil
}

func (c *memCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.m[key]
	return ok, nil
}

func newOrdersServer(store *fakeOrders, issuer *auth.Issuer, cache Cache) *httptest.Server {
	router := NewRouter()
	h := &OrdersHandler{
		Service: &checkout.Service{
			Products: &fakeProducts{byID: map[string]*catalog.Product{
				"p1": {ID: "p1", SellerID: "seller-1", Name: "Kopi", Price: 10000, Stock: 5},
			}},
			Orders:   store,
			Fees:     fakeFees{},
			Payments: fakePayments{},
		},
		Cache:  cache,
		Issuer: issuer,
	}
	h.Register(router)
	return httptest.NewServer(router)
}

func bearerFor(t *testing.T, issuer *auth.Issuer, id auth.Identity) string {
	t.Helper()
	tok, err := issuer.Sign(id)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func postOrder(t *testing.T, url, authz string, body any) *http.Response {
	return postOrderIdem(t, url, authz, "", body)
}

func postOrderIdem(t *testing.T, url, authz, idemKey string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, url+"/api/orders", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	if idemKey != "" {
		req.Header.Set("x-idempotency-key", idemKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestCreateOrder_Success(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	store := &fakeOrders{}
	srv := newOrdersServer(store, issuer, nil)
	defer srv.Close()

	buyer := auth.Identity{UserID: "buyer-1", Email: "b@x.id", Name: "Budi", Phone: "0812", Role: auth.RoleBuyer}
	resp := postOrder(t, srv.URL, bearerFor(t, issuer, buyer), checkout.Request{
		Items: []checkout.ItemInput{{ProductID: "p1", Quantity: 2}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var env struct {
		Success bool            `json:"success"`
		Data    checkout.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if !env.Success {
		t.Error("success = false, want true")
	}
	if env.Data.OrderID != "ord-http-1" {
		t.Errorf("order_id = %q", env.Data.OrderID)
	}
	if env.Data.TotalAmount != 21500 {
		t.Errorf("total_amount = %d, want 21500", env.Data.TotalAmount)
	}
	if store.created == nil || store.created.BuyerID != "buyer-1" {
		t.Error("order tidak tercatat untuk buyer dari token")
	}
}

func TestCreateOrder_NoToken(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	srv := newOrdersServer(&fakeOrders{}, issuer, nil)
	defer srv.Close()

	resp := postOrder(t, srv.URL, "", checkout.Request{
		Items: []checkout.ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCreateOrder_AdminForbidden(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	srv := newOrdersServer(&fakeOrders{}, issuer, nil)
	defer srv.Close()

	admin := auth.Identity{UserID: "admin-1", Phone: "0812", Role: auth.RoleAdmin}
	resp := postOrder(t, srv.URL, bearerFor(t, issuer, admin), checkout.Request{
		Items: []checkout.ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestCreateOrder_SelfPurchase(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	store := &fakeOrders{}
	srv := newOrdersServer(store, issuer, nil)
	defer srv.Close()

	seller := auth.Identity{UserID: "seller-1", Phone: "0812", Role: auth.RoleSeller}
	resp := postOrder(t, srv.URL, bearerFor(t, issuer, seller), checkout.Request{
		Items: []checkout.ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if store.created != nil {
		t.Error("order tidak boleh dibuat untuk self purchase")
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	srv := newOrdersServer(&fakeOrders{}, issuer, nil)
	defer srv.Close()

	buyer := auth.Identity{UserID: "buyer-1", Phone: "0812", Role: auth.RoleBuyer}
	resp := postOrder(t, srv.URL, bearerFor(t, issuer, buyer), checkout.Request{
		Items: []checkout.ItemInput{{ProductID: "ghost", Quantity: 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	srv := newOrdersServer(&fakeOrders{}, issuer, nil)
	defer srv.Close()

	buyer := auth.Identity{UserID: "buyer-1", Phone: "0812", Role: auth.RoleBuyer}
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/orders", bytes.NewReader([]byte("{")))
	req.Header.Set("Authorization", bearerFor(t, issuer, buyer))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

// Submit ganda dengan x-idempotency-key yang sama: request kedua
// ditolak 409 sebelum menyentuh pipeline, order hanya ada satu.
func TestCreateOrder_IdempotencyKeyRejectsDuplicate(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	store := &fakeOrders{}
	cache := newMemCache()
	srv := newOrdersServer(store, issuer, cache)
	defer srv.Close()

	buyer := auth.Identity{UserID: "buyer-1", Phone: "0812", Role: auth.RoleBuyer}
	body := checkout.Request{Items: []checkout.ItemInput{{ProductID: "p1", Quantity: 1}}}

	resp := postOrderIdem(t, srv.URL, bearerFor(t, issuer, buyer), "key-abc", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first submit: status = %d, want 201", resp.StatusCode)
	}

	resp = postOrderIdem(t, srv.URL, bearerFor(t, issuer, buyer), "key-abc", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second submit: status = %d, want 409", resp.StatusCode)
	}
	if store.creates != 1 {
		t.Errorf("creates = %d, want 1", store.creates)
	}

	// key menyimpan order id hasil submit pertama
	key := fmt.Sprintf(redisx.KeyIdemCheckout, "buyer-1", "key-abc")
	if got := cache.m[key]; got != "ord-http-1" {
		t.Errorf("cache[%s] = %q, want ord-http-1", key, got)
	}
}

// Key di-scope per user: buyer lain boleh pakai key yang sama.
func TestCreateOrder_IdempotencyKeyScopedPerUser(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	store := &fakeOrders{}
	srv := newOrdersServer(store, issuer, newMemCache())
	defer srv.Close()

	body := checkout.Request{Items: []checkout.ItemInput{{ProductID: "p1", Quantity: 1}}}
	for _, uid := range []string{"buyer-1", "buyer-2"} {
		buyer := auth.Identity{UserID: uid, Phone: "0812", Role: auth.RoleBuyer}
		resp := postOrderIdem(t, srv.URL, bearerFor(t, issuer, buyer), "key-abc", body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("user %s: status = %d, want 201", uid, resp.StatusCode)
		}
	}
	if store.creates != 2 {
		t.Errorf("creates = %d, want 2", store.creates)
	}
}

// Tanpa header, tidak ada key yang ditulis; submit ganda lolos dua-duanya
// (klien yang tidak kirim key memang tidak di-dedup).
func TestCreateOrder_NoIdempotencyKeyNoDedup(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	store := &fakeOrders{}
	cache := newMemCache()
	srv := newOrdersServer(store, issuer, cache)
	defer srv.Close()

	buyer := auth.Identity{UserID: "buyer-1", Phone: "0812", Role: auth.RoleBuyer}
	body := checkout.Request{Items: []checkout.ItemInput{{ProductID: "p1", Quantity: 1}}}
	for i := 0; i < 2; i++ {
		resp := postOrder(t, srv.URL, bearerFor(t, issuer, buyer), body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("submit %d: status = %d, want 201", i+1, resp.StatusCode)
		}
	}
	if store.creates != 2 {
		t.Errorf("creates = %d, want 2", store.creates)
	}
	for k := range cache.m {
		if k != fmt.Sprintf(redisx.KeyOrderStatus, "ord-http-1") {
			t.Errorf("unexpected cache key %s", k)
		}
	}
}
