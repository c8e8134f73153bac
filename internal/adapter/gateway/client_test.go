package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/metrics"
	"github.com/polkiloo/prisonmarket/internal/pkg/integrity"
)

type stubTokens struct {
	token       string
	err         error
	invalidated int
}

func (s *stubTokens) Token(context.Context) (string, error) { return s.token, s.err }

func (s *stubTokens) Invalidate(context.Context) error {
	s.invalidated++
	return nil
}

func testSettings(base string) Settings {
	return Settings{
		Username:   "merchant",
		ClientID:   "client-1",
		MerchantID: "m-77",
		Currency:   "860",
		SaltHold:   "hold-salt",
		SaltPay:    "pay-salt",
		HoldURL:    base + "/hold",
		PayURL:     base + "/pay",
		StatusURL:  base + "/status/",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *stubTokens, *metrics.Recorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &stubTokens{token: "bearer-1"}
	rec := metrics.New()
	client, err := NewHTTPClient(testSettings(srv.URL), tokens, srv.Client(), testLogger(), rec)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, tokens, rec
}

func TestNewHTTPClientValidatesURLs(t *testing.T) {
	settings := testSettings("https://gw")
	settings.PayURL = "/relative"
	if _, err := NewHTTPClient(settings, &stubTokens{}, http.DefaultClient, testLogger(), nil); err == nil {
		t.Fatal("expected relative url to be rejected")
	}

	settings = testSettings("https://gw")
	settings.StatusURL = "://bad"
	if _, err := NewHTTPClient(settings, &stubTokens{}, http.DefaultClient, testLogger(), nil); err == nil {
		t.Fatal("expected malformed url to be rejected")
	}
}

func TestHoldSendsSignedPayload(t *testing.T) {
	client, _, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hold" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer bearer-1" {
			t.Errorf("unexpected authorization %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), `"amount":150.50`) {
			t.Errorf("expected amount to be sent as a json number, got %s", raw)
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		want := integrity.ComputeHash("merchant", "8600123412341234", "hold-salt", "150.50", "client-1")
		if body["hashKey"] != want {
			t.Errorf("expected hash %s, got %v", want, body["hashKey"])
		}
		if body["pan"] != "8600123412341234" || body["expire"] != "2812" || body["merchantId"] != "m-77" || body["currency"] != "860" {
			t.Errorf("unexpected payload %v", body)
		}
		_, _ = w.Write([]byte(`{"data":{"transactionId":98765,"phone":"99890***4567"}}`))
	})

	res, err := client.Hold(context.Background(), model.HoldRequest{PAN: "8600123412341234", Expire: "2812", Amount: "150.50", NumericAmount: true})
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if res.TransactionID != "98765" || res.Phone != "99890***4567" {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := testutil.ToFloat64(rec.GatewayRequests().WithLabelValues("hold", "ok")); got != 1 {
		t.Fatalf("expected one ok hold observation, got %v", got)
	}
}

func TestHoldKeepsStringAmount(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), `"amount":"150.50"`) {
			t.Errorf("expected amount to be sent as a json string, got %s", raw)
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		want := integrity.ComputeHash("merchant", "8600123412341234", "hold-salt", "150.50", "client-1")
		if body["hashKey"] != want {
			t.Errorf("expected hash %s, got %v", want, body["hashKey"])
		}
		_, _ = w.Write([]byte(`{"data":{"transactionId":"T1"}}`))
	})

	if _, err := client.Hold(context.Background(), model.HoldRequest{PAN: "8600123412341234", Expire: "2812", Amount: "150.50"}); err != nil {
		t.Fatalf("hold: %v", err)
	}
}

func TestHoldRejections(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"gateway message", http.StatusBadRequest, `{"errorMessage":"Card expired"}`, "Card expired"},
		{"default message", http.StatusInternalServerError, `oops`, defaultHoldError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.Hold(context.Background(), model.HoldRequest{PAN: "1", Expire: "2", Amount: "3"})
			var rejectedErr *domainErrors.GatewayRejectedError
			if !errors.As(err, &rejectedErr) {
				t.Fatalf("expected GatewayRejectedError, got %v", err)
			}
			if rejectedErr.StatusCode != tc.status || rejectedErr.Message != tc.message {
				t.Fatalf("unexpected rejection %+v", rejectedErr)
			}
		})
	}
}

func TestHoldMissingTransactionID(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"phone":"1"}}`))
	})
	_, err := client.Hold(context.Background(), model.HoldRequest{PAN: "1", Expire: "2", Amount: "3"})
	var rejectedErr *domainErrors.GatewayRejectedError
	if !errors.As(err, &rejectedErr) || rejectedErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 rejection, got %v", err)
	}
}

func TestConfirmSendsSignedPayload(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pay" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body confirmPayload
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		want := integrity.ComputeHash("client-1", "pay-salt", "123456", "tx-1")
		if body.HashKey != want || body.TransactionID != "tx-1" || body.SMSCode != "123456" {
			t.Errorf("unexpected payload %+v", body)
		}
		_, _ = w.Write([]byte(`{"data":{"phone":"998901234567","qrCodeUrl":"https://qr/1"}}`))
	})

	res, err := client.Confirm(context.Background(), "tx-1", "123456")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if res.Status != model.TransactionStatusCompleted || res.QRCodeURL != "https://qr/1" || res.Phone != "998901234567" || res.TransactionID != "tx-1" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestConfirmRejectedAndUnauthorized(t *testing.T) {
	client, tokens, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Confirm(context.Background(), "tx-1", "000000")
	var rejectedErr *domainErrors.GatewayRejectedError
	if !errors.As(err, &rejectedErr) || rejectedErr.Message != defaultConfirmError {
		t.Fatalf("expected default confirm rejection, got %v", err)
	}
	if tokens.invalidated != 1 {
		t.Fatalf("expected token to be invalidated on 401, got %d", tokens.invalidated)
	}
	if got := testutil.ToFloat64(rec.GatewayRequests().WithLabelValues("confirm", "rejected")); got != 1 {
		t.Fatalf("expected rejected observation, got %v", got)
	}
}

func TestConfirmMissingQRCode(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	})
	if _, err := client.Confirm(context.Background(), "tx-1", "1"); !errors.Is(err, domainErrors.ErrGatewayRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestCheckStatus(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status/tx-1":
			_, _ = w.Write([]byte(`{"status":"COMPLETED","amount":100}`))
		case "/status/tx-2":
			_, _ = w.Write([]byte(`{"amount":100}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errorMessage":"Transaction not found"}`))
		}
	})

	res, err := client.CheckStatus(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if res.StatusCode != http.StatusOK || res.Status != "COMPLETED" || string(res.Raw) != `{"status":"COMPLETED","amount":100}` {
		t.Fatalf("unexpected result %+v", res)
	}

	res, err = client.CheckStatus(context.Background(), "tx-2")
	if err != nil || res.Status != "Unknown" {
		t.Fatalf("expected Unknown status, got %+v %v", res, err)
	}

	_, err = client.CheckStatus(context.Background(), "missing")
	var rejectedErr *domainErrors.GatewayRejectedError
	if !errors.As(err, &rejectedErr) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if rejectedErr.StatusCode != http.StatusNotFound || string(rejectedErr.Body) != `{"errorMessage":"Transaction not found"}` {
		t.Fatalf("expected gateway body to be preserved, got %+v", rejectedErr)
	}
}

func TestGatewayUnavailableAndAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	rec := metrics.New()
	client, err := NewHTTPClient(testSettings(base), &stubTokens{token: "t"}, http.DefaultClient, testLogger(), rec)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.CheckStatus(context.Background(), "tx"); !errors.Is(err, domainErrors.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	if got := testutil.ToFloat64(rec.GatewayRequests().WithLabelValues("status", "unavailable")); got != 1 {
		t.Fatalf("expected unavailable observation, got %v", got)
	}

	authFailing, _ := NewHTTPClient(testSettings(base), &stubTokens{err: domainErrors.ErrAuth}, http.DefaultClient, testLogger(), nil)
	if _, err := authFailing.Hold(context.Background(), model.HoldRequest{}); !errors.Is(err, domainErrors.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestLooseStringAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A looseString `json:"a"`
		B looseString `json:"b"`
		C looseString `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"x","b":42,"c":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != "x" || v.B != "42" || v.C != "" {
		t.Fatalf("unexpected values %+v", v)
	}
}
