package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
	testhelpers "github.com/polkiloo/prisonmarket/internal/test"
)

func sampleOrder() *model.Order {
	return &model.Order{
		ID:            42,
		RecipientID:   7,
		RecipientName: "Ivan <Petrov>",
		PlacerName:    "Olga",
		Status:        model.OrderStatusPending,
		Total:         decimal.RequireFromString("9.4"),
		Items: []model.OrderItem{
			{ProductName: "Soap", Quantity: 2, PriceAtOrder: decimal.RequireFromString("1.2")},
			{ProductName: "Tea", Quantity: 1, PriceAtOrder: decimal.NewFromInt(7)},
		},
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("/relative", "1", nil, testhelpers.DiscardLogger()); err == nil {
		t.Fatal("expected relative url to be rejected")
	}
	if _, err := NewClient("https://api.telegram.org/botX", "", nil, testhelpers.DiscardLogger()); err == nil {
		t.Fatal("expected missing chat id to be rejected")
	}
}

func TestSendOrderPostsMessageWithButton(t *testing.T) {
	var got sendMessagePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/botTOKEN", "-100", srv.Client(), testhelpers.DiscardLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.SendOrder(context.Background(), sampleOrder()); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got.ChatID != "-100" || got.ParseMode != "HTML" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if got.ReplyMarkup == nil || len(got.ReplyMarkup.InlineKeyboard) != 1 || got.ReplyMarkup.InlineKeyboard[0][0].CallbackData != "pending_42" {
		t.Fatalf("unexpected keyboard %+v", got.ReplyMarkup)
	}
	if !strings.Contains(got.Text, "<code>42</code>") || !strings.Contains(got.Text, "Total: <b>9.40</b>") {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestEditOrderReplacesButton(t *testing.T) {
	var got sendMessagePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/editMessageText" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL+"/botTOKEN", "-100", srv.Client(), testhelpers.DiscardLogger())
	order := sampleOrder()
	order.Status = model.OrderStatusProcessed
	if err := client.EditOrder(context.Background(), "-555", 91, order); err != nil {
		t.Fatalf("edit: %v", err)
	}

	if got.ChatID != "-555" || got.MessageID != 91 || !strings.Contains(got.Text, "Status: <b>processed</b>") {
		t.Fatalf("unexpected payload %+v", got)
	}
	button := got.ReplyMarkup.InlineKeyboard[0][0]
	if button.CallbackData != "deliver_42" || button.Text != "Mark delivered" {
		t.Fatalf("unexpected button %+v", button)
	}

	order.Status = model.OrderStatusDelivered
	if err := client.EditOrder(context.Background(), "-555", 91, order); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got.ReplyMarkup == nil || len(got.ReplyMarkup.InlineKeyboard) != 0 {
		t.Fatalf("expected delivered order to drop its button, got %+v", got.ReplyMarkup)
	}
}

func TestSendTextPostsPlainMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "-100", srv.Client(), testhelpers.DiscardLogger())
	if err := client.SendText(context.Background(), "-7", "Order does not exist."); err != nil {
		t.Fatalf("send text: %v", err)
	}
	if got["chat_id"] != "-7" || got["text"] != "Order does not exist." {
		t.Fatalf("unexpected payload %v", got)
	}
	if _, ok := got["reply_markup"]; ok {
		t.Fatalf("expected no keyboard, got %v", got)
	}
}

func TestSendOrderReportsAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "1", srv.Client(), testhelpers.DiscardLogger())
	err := client.SendOrder(context.Background(), sampleOrder())
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected api failure, got %v", err)
	}
}

func TestFormatOrderEscapesNames(t *testing.T) {
	text := FormatOrder(sampleOrder())
	if !strings.Contains(text, "Ivan &lt;Petrov&gt;") {
		t.Fatalf("expected escaped recipient name, got %q", text)
	}
	if !strings.Contains(text, "<b>2x Soap</b> (each <b>1.20</b>)") {
		t.Fatalf("expected item line, got %q", text)
	}
}

func TestLogSender(t *testing.T) {
	var bot Bot = NewLogSender(testhelpers.DiscardLogger())
	if err := bot.SendOrder(context.Background(), sampleOrder()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bot.EditOrder(context.Background(), "-1", 2, sampleOrder()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bot.SendText(context.Background(), "-1", "Invalid action."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
