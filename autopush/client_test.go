package autopush

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleMessageReplies(t *testing.T) {
	ap, _ := NewAutoPushClient(zap.NewNop())

	ap.handleMessage(nil, []byte(`{"messageType":"hello","uaid":"u1","status":200,"use_webpush":true}`))
	ap.handleMessage(nil, []byte(`{"messageType":"register","channelID":"c1","status":200,"pushEndpoint":"https://updates.push.services.mozilla.com/wpush/v2/abc"}`))
	ap.handleMessage(nil, []byte(`{"messageType":"unregister","channelID":"c1","status":200}`))

	hello := <-ap.helloChan
	assert.Equal(t, "u1", hello.UAID)
	assert.Equal(t, OK, hello.Status)

	register := <-ap.registerChan
	assert.Equal(t, "c1", register.ChannelID)
	assert.Equal(t, "https://updates.push.services.mozilla.com/wpush/v2/abc", register.PushEndpoint)

	unregister := <-ap.unregisterChan
	assert.Equal(t, "c1", unregister.ChannelID)
}

func TestHandleMessageDropsUnrequestedReplies(t *testing.T) {
	ap, _ := NewAutoPushClient(zap.NewNop())

	ap.handleMessage(nil, []byte(`{"messageType":"hello","uaid":"u1","status":200}`))
	ap.handleMessage(nil, []byte(`{"messageType":"hello","uaid":"u2","status":200}`))

	hello := <-ap.helloChan
	assert.Equal(t, "u1", hello.UAID)
	assert.Empty(t, ap.helloChan)
}

func TestHandleMessageIgnoresGarbage(t *testing.T) {
	ap, _ := NewAutoPushClient(zap.NewNop())

	ap.handleMessage(nil, []byte(`not json`))
	ap.handleMessage(nil, []byte(`{"messageType":"broadcast"}`))
	ap.handleMessage(nil, []byte(`{"messageType":"hello","status":"bad"}`))

	assert.Empty(t, ap.helloChan)
}

func TestHandleClose(t *testing.T) {
	ap, ch := NewAutoPushClient(zap.NewNop())

	ap.handleClose(nil, true)
	select {
	case <-ap.done:
		t.Fatal("done closed while reconnecting")
	default:
	}

	ap.handleClose(nil, false)
	_, ok := <-ch
	assert.False(t, ok)
	_, ok = <-ap.done
	assert.False(t, ok)
}

func TestHandleCloseTwice(t *testing.T) {
	ap, ch := NewAutoPushClient(zap.NewNop())

	assert.NotPanics(t, func() {
		ap.handleClose(nil, false)
		ap.handleClose(nil, false)
	})
	_, ok := <-ch
	assert.False(t, ok)
}

func TestClose(t *testing.T) {
	ap, ch := NewAutoPushClient(zap.NewNop())

	delivered := make(chan bool, 1)
	go func() { delivered <- ap.deliver(Notification{ChannelID: "c1"}) }()

	ap.Close()
	ap.Close()
	select {
	case ok := <-delivered:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("deliver still blocked after Close")
	}
	assert.False(t, ap.deliver(Notification{ChannelID: "c2"}))

	assert.NotPanics(t, func() { ap.handleClose(nil, false) })
	_, ok := <-ch
	assert.False(t, ok)
}

func TestNewChannelID(t *testing.T) {
	a, err := NewChannelID()
	require.NoError(t, err)
	b, err := NewChannelID()
	require.NoError(t, err)

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
