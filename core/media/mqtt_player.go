package media

import (
	"encoding/json"
	"fmt"
	"time"

	"VibeWake/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttQoS = 1

	// Commands run on the session goroutine, so they only wait briefly for
	// the broker; a slower publish is followed up in the background.
	defaultPublishWait = 100 * time.Millisecond
	publishTimeout     = 30 * time.Second
	subscribeWait      = 5 * time.Second
)

// MQTTPlayer drives a remote speaker over MQTT. Commands are published
// (retained, so a device that reconnects picks up the current state) to
// <prefix>/player/commands; the device reports on <prefix>/player/events.
type MQTTPlayer struct {
	client        mqtt.Client
	commandsTopic string
	eventsTopic   string
	publishWait   time.Duration

	state deviceState
	ended chan string
}

var _ Player = (*MQTTPlayer)(nil)

// CommandsTopic and EventsTopic name the topics for a device prefix.
func CommandsTopic(prefix string) string { return prefix + "/player/commands" }
func EventsTopic(prefix string) string { return prefix + "/player/events" }

// NewMQTTPlayer connects to broker and subscribes to the device's events.
func NewMQTTPlayer(brokerURL, clientID, topicPrefix string) (*MQTTPlayer, error) {
	p := &MQTTPlayer{
		commandsTopic: CommandsTopic(topicPrefix),
		eventsTopic:   EventsTopic(topicPrefix),
		publishWait:   defaultPublishWait,
		ended:         make(chan string, 8),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.OnConnect = func(c mqtt.Client) {
		logger.Info("Connected to MQTT broker", logger.String("broker", brokerURL))
		// Subscriptions do not survive a clean reconnect.
		if token := c.Subscribe(p.eventsTopic, mqttQoS, p.onEvent); token.WaitTimeout(subscribeWait) && token.Error() != nil {
			logger.Error("Failed to subscribe to device events",
				logger.String("topic", p.eventsTopic),
				logger.ErrorField(token.Error()))
		}
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", logger.ErrorField(err))
	}

	p.client = mqtt.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return p, nil
}

func (p *MQTTPlayer) onEvent(_ mqtt.Client, msg mqtt.Message) {
	var ev DeviceEvent
	if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
		logger.Warn("Invalid device event", logger.String("topic", msg.Topic()), logger.ErrorField(err))
		return
	}
	p.handleEvent(ev)
}

func (p *MQTTPlayer) handleEvent(ev DeviceEvent) {
	switch ev.Type {
	case EventEnded:
		p.state.ended(ev.URL)
		if !notifyEnded(p.ended, ev.URL) {
			logger.Warn("ended notification dropped", logger.String("url", ev.URL))
		}
	case EventPlayFailed:
		logger.Warn("Device failed to start playback",
			logger.String("url", ev.URL),
			logger.String("reason", ev.Reason))
	default:
		logger.Debug("Ignoring device event", logger.String("type", ev.Type))
	}
}

func (p *MQTTPlayer) publish(a Action, url string, loop bool) error {
	cmd := p.state.apply(a, url, loop)
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.commandsTopic, mqttQoS, true, payload)
	if !token.WaitTimeout(p.publishWait) {
		// Still queued, typically while reconnecting.
		go p.awaitPublish(a, token)
		return nil
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", a, err)
	}
	return nil
}

func (p *MQTTPlayer) awaitPublish(a Action, token mqtt.Token) {
	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			logger.Warn("Failed to publish player command",
				logger.String("action", string(a)),
				logger.String("topic", p.commandsTopic),
				logger.ErrorField(err))
		}
	case <-timer.C:
		logger.Warn("Player command not acknowledged by broker",
			logger.String("action", string(a)),
			logger.String("topic", p.commandsTopic),
			logger.Duration("waited", publishTimeout))
	}
}

func (p *MQTTPlayer) Load(url string) error { return p.publish(ActionLoad, url, false) }
func (p *MQTTPlayer) Play() error { return p.publish(ActionPlay, "", false) }
func (p *MQTTPlayer) Pause() error { return p.publish(ActionPause, "", false) }
func (p *MQTTPlayer) Stop() error { return p.publish(ActionStop, "", false) }
func (p *MQTTPlayer) SetLooping(loop bool) error { return p.publish(ActionLoop, "", loop) }
func (p *MQTTPlayer) Ended() <-chan string { return p.ended }

// Close disconnects from the broker.
func (p *MQTTPlayer) Close() {
	p.client.Disconnect(250)
}
