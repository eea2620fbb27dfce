package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAdminFee_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/config" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("code") != "BCA_VA" {
			t.Errorf("code = %s", r.URL.Query().Get("code"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"code": "BCA_VA", "admin_fee": 2000},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", time.Second)
	if fee := c.AdminFee(context.Background(), "BCA_VA"); fee != 2000 {
		t.Errorf("fee = %d, want 2000", fee)
	}
}

func TestAdminFee_FailuresDefaultZero(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"non-2xx": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		},
		"not success": func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
		},
		"negative fee": func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true, "data": map[string]any{"admin_fee": -500},
			})
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			c := NewClient(srv.URL, "key", time.Second)
			if fee := c.AdminFee(context.Background(), "BCA_VA"); fee != 0 {
				t.Errorf("fee = %d, want 0", fee)
			}
		})
	}
}

func TestAdminFee_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", 20*time.Millisecond)
	if fee := c.AdminFee(context.Background(), "BCA_VA"); fee != 0 {
		t.Errorf("fee = %d, want 0 on timeout", fee)
	}
}

func TestCreatePayment_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/payments/create" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-server-key") != "server-key" {
			t.Errorf("x-server-key = %q", r.Header.Get("x-server-key"))
		}
		var in CreatePaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if in.ReferenceID != "ord-1" || in.Amount != 22000 {
			t.Errorf("payload: %+v", in)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"transaction_id":  "txn-1",
				"virtual_account": "8808123",
				"status":          "PENDING",
				"amount":          22000,
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "server-key", time.Second)
	details, err := c.CreatePayment(context.Background(), CreatePaymentRequest{
		ReferenceID:   "ord-1",
		Amount:        22000,
		PaymentMethod: "BCA_VA",
		CustomerName:  "Budi",
		CustomerEmail: "budi@example.com",
		CustomerPhone: "0812",
		Description:   "Order #ord-1",
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if details.TransactionID != "txn-1" || details.VirtualAccount != "8808123" {
		t.Errorf("details: %+v", details)
	}
}

func TestCreatePayment_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", time.Second)
	_, err := c.CreatePayment(context.Background(), CreatePaymentRequest{ReferenceID: "ord-1"})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
}

func TestCreatePayment_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", time.Second)
	_, err := c.CreatePayment(context.Background(), CreatePaymentRequest{ReferenceID: "ord-1"})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
}

func TestCreatePayment_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // langsung tutup -> connection refused

	c := NewClient(srv.URL, "key", time.Second)
	_, err := c.CreatePayment(context.Background(), CreatePaymentRequest{ReferenceID: "ord-1"})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
}
