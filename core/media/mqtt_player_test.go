package media

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubToken completes when done is closed.
type stubToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *stubToken {
	t := &stubToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *stubToken) Wait() bool {
	<-t.done
	return true
}

func (t *stubToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *stubToken) Done() <-chan struct{} { return t.done }
func (t *stubToken) Error() error { return t.err }

type published struct {
	topic    string
	retained bool
	payload  []byte
}

// stubBroker implements only Publish; other mqtt.Client methods are unused.
type stubBroker struct {
	mqtt.Client

	mu    sync.Mutex
	token mqtt.Token
	sent  []published
}

func (b *stubBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return b.token
}

func newStubMQTTPlayer(token mqtt.Token) (*MQTTPlayer, *stubBroker) {
	b := &stubBroker{token: token}
	return &MQTTPlayer{
		client:        b,
		commandsTopic: CommandsTopic("vibewake/bedroom"),
		eventsTopic:   EventsTopic("vibewake/bedroom"),
		publishWait:   defaultPublishWait,
		ended:         make(chan string, 1),
	}, b
}

func TestMQTTPlayerPublishesRetainedCommands(t *testing.T) {
	p, b := newStubMQTTPlayer(completedToken(nil))

	require.NoError(t, p.Load("https://example.com/a.mp3"))
	require.NoError(t, p.Play())

	require.Len(t, b.sent, 2)
	assert.Equal(t, "vibewake/bedroom/player/commands", b.sent[0].topic)
	assert.True(t, b.sent[0].retained)
	var cmd Command
	require.NoError(t, json.Unmarshal(b.sent[0].payload, &cmd))
	assert.Equal(t, ActionLoad, cmd.Action)
	assert.Equal(t, "https://example.com/a.mp3", cmd.URL)
}

func TestMQTTPlayerReportsFailedPublish(t *testing.T) {
	p, _ := newStubMQTTPlayer(completedToken(errors.New("not connected")))
	assert.ErrorContains(t, p.Stop(), "not connected")
}

func TestMQTTPlayerDoesNotBlockOnUnreachableBroker(t *testing.T) {
	pending := &stubToken{done: make(chan struct{})}
	defer close(pending.done)
	p, b := newStubMQTTPlayer(pending)

	start := time.Now()
	require.NoError(t, p.Load("https://example.com/a.mp3"))
	require.NoError(t, p.SetLooping(true))
	require.NoError(t, p.Play())
	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, b.sent, 3)

	cmd, ok := p.state.resume()
	require.True(t, ok, "device state still tracks the command")
	assert.Equal(t, "https://example.com/a.mp3", cmd.URL)
}
