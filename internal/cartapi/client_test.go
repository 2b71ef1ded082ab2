package cartapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestAddItemPostsIntentAndKeepsSessionCookie(t *testing.T) {
	var sessions []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("cart_session"); err == nil {
			sessions = append(sessions, cookie.Value)
		} else {
			http.SetCookie(w, &http.Cookie{Name: "cart_session", Value: "abc", Path: "/"})
			sessions = append(sessions, "")
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/cart/items":
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
			}
			var intent domain.Intent
			if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
				t.Errorf("Failed to decode body: %v", err)
			}
			if intent.VariantID != 7 || intent.Quantity != 2 {
				t.Errorf("Unexpected intent %+v", intent)
			}
			json.NewEncoder(w).Encode(domain.Cart{
				ID:    "cart-1",
				Items: []domain.CartItem{{VariantID: 7, Quantity: 2, UnitPrice: decimal.RequireFromString("9.99")}},
				Total: decimal.RequireFromString("19.98"),
			})
		case r.Method == http.MethodGet && r.URL.Path == "/cart":
			json.NewEncoder(w).Encode(domain.Cart{ID: "cart-1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	client, err := NewClient(upstream.URL+"/", time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	cart, err := client.AddItem(context.Background(), domain.Intent{VariantID: 7, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if cart.ID != "cart-1" || len(cart.Items) != 1 || !cart.Total.Equal(decimal.RequireFromString("19.98")) {
		t.Errorf("Unexpected cart %+v", cart)
	}

	if _, err := client.GetCart(context.Background()); err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}

	if len(sessions) != 2 || sessions[0] != "" || sessions[1] != "abc" {
		t.Errorf("Expected session cookie to be sent on the second call, got %v", sessions)
	}
}

func TestNonSuccessStatusIsRejected(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "variant sold out", http.StatusConflict)
	}))
	defer upstream.Close()

	client, err := NewClient(upstream.URL, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.AddItem(context.Background(), domain.Intent{VariantID: 1, Quantity: 1})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("Expected ErrRejected, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Message != "variant sold out" {
		t.Errorf("Unexpected API error %+v", apiErr)
	}
}

func TestTransportFailureIsUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := upstream.URL
	upstream.Close()

	client, err := NewClient(url, 200*time.Millisecond, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.GetCart(context.Background())
	if err == nil {
		t.Fatal("Expected error from closed upstream")
	}
	if errors.Is(err, ErrRejected) {
		t.Error("Connection failures must not be reported as rejections")
	}
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("Expected ErrUnreachable, got %v", err)
	}
}
