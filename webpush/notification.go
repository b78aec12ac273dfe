package webpush

const (
	DefaultTitle = "SparkUp"
	DefaultIcon  = "/icons/Icon-192.png"
	DefaultURL   = "/"
)

// NotificationSpec holds the display parameters handed to the host.
type NotificationSpec struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon"`
	Data  map[string]any `json:"data"`
}

// Spec applies the default substitution chain. Data is never nil.
func (p Payload) Spec() NotificationSpec {
	var n PushNotification
	if p.Notification != nil {
		n = *p.Notification
	}

	spec := NotificationSpec{
		Title: n.Title,
		Body:  n.Body,
		Icon:  n.Icon,
		Data:  p.Data,
	}
	if spec.Title == "" {
		spec.Title = DefaultTitle
	}
	if spec.Icon == "" {
		spec.Icon = DefaultIcon
	}
	if spec.Data == nil {
		spec.Data = map[string]any{}
	}
	return spec
}

// HandlePush turns a raw push message body into the notification to show.
func HandlePush(body []byte) NotificationSpec {
	return Parse(body).Spec()
}
