package httpx

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariefcatur/go-market-checkout/internal/orders"
	"github.com/ariefcatur/go-market-checkout/internal/payment"
	"github.com/ariefcatur/go-market-checkout/internal/webhook"
)

type webhookStore struct {
	order       *orders.Order
	transitions []orders.Status
}

func (s *webhookStore) GetByPaymentID(ctx context.Context, txn string) (*orders.Order, error) {
	if s.order == nil || s.order.PaymentID == nil || *s.order.PaymentID != txn {
		return nil, orders.ErrNotFound
	}
	cp := *s.order
	return &cp, nil
}

func (s *webhookStore) TransitionFromPending(ctx context.Context, orderID string, to orders.Status) (bool, error) {
	if s.order.Status != orders.StatusPending {
		return false, nil
	}
	s.order.Status = to
	s.transitions = append(s.transitions, to)
	return true, nil
}

const webhookSecret = "webhook-secret"

func newWebhookServer(store *webhookStore) *httptest.Server {
	router := NewRouter()
	h := &WebhookHandler{
		Reconciler: &webhook.Reconciler{Orders: store},
		Secret:     webhookSecret,
	}
	h.Register(router)
	return httptest.NewServer(router)
}

func pendingOrder() *webhookStore {
	txn := "txn-1"
	return &webhookStore{order: &orders.Order{
		ID: "ord-1", BuyerID: "buyer-1", TotalAmount: 22000,
		Status: orders.StatusPending, PaymentID: &txn,
	}}
}

func postWebhook(t *testing.T, url string, body []byte, sig string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/api/webhook/payment", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set("x-signature", sig)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestWebhook_ValidSuccess(t *testing.T) {
	store := pendingOrder()
	srv := newWebhookServer(store)
	defer srv.Close()

	body := []byte(`{"transaction_id":"txn-1","status":"SUCCESS"}`)
	resp := postWebhook(t, srv.URL, body, payment.Sign(webhookSecret, body))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if store.order.Status != orders.StatusSuccess {
		t.Errorf("order status = %s, want SUCCESS", store.order.Status)
	}
}

func TestWebhook_MissingSignature(t *testing.T) {
	store := pendingOrder()
	srv := newWebhookServer(store)
	defer srv.Close()

	resp := postWebhook(t, srv.URL, []byte(`{"transaction_id":"txn-1","status":"SUCCESS"}`), "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if store.order.Status != orders.StatusPending {
		t.Error("unauthenticated call mutated order state")
	}
}

// Body diubah setelah ditandatangani: signature basi harus ditolak dan
// order tidak boleh berubah.
func TestWebhook_TamperedBody(t *testing.T) {
	store := pendingOrder()
	srv := newWebhookServer(store)
	defer srv.Close()

	sig := payment.Sign(webhookSecret, []byte(`{"transaction_id":"txn-1","status":"FAILED"}`))
	resp := postWebhook(t, srv.URL, []byte(`{"transaction_id":"txn-1","status":"SUCCESS"}`), sig)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if store.order.Status != orders.StatusPending {
		t.Error("tampered call mutated order state")
	}
}

func TestWebhook_UnknownTransaction(t *testing.T) {
	srv := newWebhookServer(pendingOrder())
	defer srv.Close()

	body := []byte(`{"transaction_id":"ghost","status":"SUCCESS"}`)
	resp := postWebhook(t, srv.URL, body, payment.Sign(webhookSecret, body))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestWebhook_MalformedPayload(t *testing.T) {
	srv := newWebhookServer(pendingOrder())
	defer srv.Close()

	for _, body := range [][]byte{
		[]byte(`{`),
		[]byte(`{"transaction_id":"txn-1"}`),
		[]byte(`{"status":"SUCCESS"}`),
	} {
		resp := postWebhook(t, srv.URL, body, payment.Sign(webhookSecret, body))
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestWebhook_ReplayAcked(t *testing.T) {
	store := pendingOrder()
	srv := newWebhookServer(store)
	defer srv.Close()

	body := []byte(`{"transaction_id":"txn-1","status":"SUCCESS"}`)
	sig := payment.Sign(webhookSecret, body)
	for i := 0; i < 2; i++ {
		resp := postWebhook(t, srv.URL, body, sig)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("delivery %d: status = %d, want 200", i+1, resp.StatusCode)
		}
	}
	if len(store.transitions) != 1 {
		t.Errorf("transitions = %v, want exactly one", store.transitions)
	}
}
