package webpush

import (
	"encoding/json"
	"unicode/utf8"
)

type PayloadKind string

const (
	KindEmpty PayloadKind = "empty"
	KindJSON  PayloadKind = "json"
	KindText  PayloadKind = "text"
)

// https://developer.mozilla.org/docs/Web/API/Notification
type PushNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Icon  string `json:"icon,omitempty"` // icon url
}

// Payload is the decoded body of a single push message.
// Notification and Data are nil when the message did not carry them.
type Payload struct {
	Notification *PushNotification `json:"notification,omitempty"`
	Data         map[string]any    `json:"data,omitempty"` // custom data field

	Kind PayloadKind `json:"-"`
}

// Parse never fails. A body that is not a JSON document is treated as the
// notification body text; a body that is not even valid UTF-8 text yields
// an empty payload.
func Parse(body []byte) Payload {
	if len(body) == 0 {
		return Payload{Kind: KindEmpty}
	}

	if json.Valid(body) {
		return decodeJSON(body)
	}

	if !utf8.Valid(body) {
		return Payload{Kind: KindEmpty}
	}

	return Payload{
		Kind:         KindText,
		Notification: &PushNotification{Body: string(body)},
	}
}

// Fields of an unexpected type are dropped one by one instead of
// rejecting the whole document.
func decodeJSON(body []byte) Payload {
	p := Payload{Kind: KindJSON}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// valid JSON, but not an object (string, number, array, null)
		return p
	}

	if raw, ok := fields["notification"]; ok {
		var n map[string]any
		if err := json.Unmarshal(raw, &n); err == nil && n != nil {
			p.Notification = &PushNotification{
				Title: stringField(n, "title"),
				Body:  stringField(n, "body"),
				Icon:  stringField(n, "icon"),
			}
		}
	}

	if raw, ok := fields["data"]; ok {
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err == nil {
			p.Data = data
		}
	}

	return p
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
