package dto

// TelegramUpdate is the subset of a bot update the webhook acts on.
type TelegramUpdate struct {
	UpdateID      int64          `json:"update_id"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

// CallbackQuery is sent when staff press an inline button.
type CallbackQuery struct {
	ID      string           `json:"id"`
	Data    string           `json:"data"`
	Message *CallbackMessage `json:"message"`
}

type CallbackMessage struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

// WebhookAck is the body Telegram expects back.
type WebhookAck struct {
	OK bool `json:"ok"`
}
