package autopush

import (
	"context"
	"crypto/ecdh"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/shinosaki/sparkup-push-go/rfc8291"
	"go.uber.org/zap"
)

const EncodingAES128GCM = "aes128gcm"

// Keys are the user agent secrets of a push subscription.
type Keys struct {
	Curve      ecdh.Curve
	AuthSecret []byte
	PrivateKey *ecdh.PrivateKey
}

// DecryptMessage returns the plaintext body of a notification.
// A notification without data yields a nil body and no error.
func DecryptMessage(keys Keys, notification Notification) ([]byte, error) {
	if notification.Data == "" {
		return nil, nil
	}

	if enc := notification.Headers.Encoding; enc != "" && enc != EncodingAES128GCM {
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}

	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(notification.Data, "="))
	if err != nil {
		return nil, fmt.Errorf("base64 decode error: %w", err)
	}

	payload, err := rfc8291.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("rfc8291 decode error: %w", err)
	}

	curve := keys.Curve
	if curve == nil {
		curve = ecdh.P256()
	}

	appserverPublicKey, err := curve.NewPublicKey(payload.KeyID)
	if err != nil {
		return nil, fmt.Errorf("ecdh public key load error: %w", err)
	}

	plaintext, err := rfc8291.NewRFC8291(nil).Decrypt(
		payload.CipherText,
		payload.Salt,
		keys.AuthSecret,
		keys.PrivateKey,
		appserverPublicKey,
	)
	if err != nil {
		return nil, fmt.Errorf("rfc8291 decrypt error: %w", err)
	}

	return plaintext, nil
}

// Messages decrypts notifications as they arrive and emits their bodies in
// delivery order. Messages that fail to decrypt are logged and skipped.
// The returned channel is closed when in is closed or ctx is done.
func Messages(ctx context.Context, logger *zap.Logger, keys Keys, in <-chan Notification) <-chan []byte {
	out := make(chan []byte)

	go func() {
		defer close(out)
		for {
			var (
				notification Notification
				ok           bool
			)
			select {
			case <-ctx.Done():
				return
			case notification, ok = <-in:
				if !ok {
					return
				}
			}

			body, err := DecryptMessage(keys, notification)
			if err != nil {
				logger.Warn("webpush error",
					zap.String("channel_id", notification.ChannelID),
					zap.String("version", notification.Version),
					zap.Error(err),
				)
				continue
			}

			select {
			case out <- body:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
