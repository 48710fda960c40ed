package notify

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stut/displayproxy/internal/buttons"
	"github.com/stut/displayproxy/internal/config"
	"github.com/stut/displayproxy/internal/metrics"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload string
}

// fakeMQTT implements the calls the publisher makes; anything else panics.
type fakeMQTT struct {
	mqtt.Client

	err          error
	mu           sync.Mutex
	messages     []published
	disconnected bool
}

func (f *fakeMQTT) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, published{topic: topic, qos: qos, payload: string(payload.([]byte))})
	return newFakeToken(f.err)
}

func (f *fakeMQTT) Disconnect(uint) { f.disconnected = true }

func TestNewMQTTPublisherDisabledWithoutBroker(t *testing.T) {
	cfg, err := config.Resolve("window", "", "")
	require.NoError(t, err)
	p, err := NewMQTTPublisher(cfg)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMQTTPublishTopicAndPayload(t *testing.T) {
	client := &fakeMQTT{}
	p := newMQTTPublisher(client, "frame/buttons/", slog.Default())

	p.Publish(buttons.Press{Label: "A", Time: 12.5})

	client.mu.Lock()
	defer client.mu.Unlock()
	require.Len(t, client.messages, 1)
	assert.Equal(t, "frame/buttons/A", client.messages[0].topic)
	assert.Equal(t, byte(0), client.messages[0].qos)
	assert.JSONEq(t, `{"button":"A","time":12.5}`, client.messages[0].payload)
}

func TestMQTTPublishErrorIsCounted(t *testing.T) {
	before := testutil.ToFloat64(metrics.MQTTPublishErrors)
	p := newMQTTPublisher(&fakeMQTT{err: errors.New("not connected")}, DefaultMQTTTopic, slog.Default())

	p.Publish(buttons.Press{Label: "B", Time: 1})

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.MQTTPublishErrors) == before+1
	}, time.Second, 10*time.Millisecond)
}

func TestMQTTClose(t *testing.T) {
	client := &fakeMQTT{}
	p := newMQTTPublisher(client, DefaultMQTTTopic, slog.Default())
	require.NoError(t, p.Close())
	assert.True(t, client.disconnected)
}
