package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"thermohub/internal/logger"
	"thermohub/internal/models"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	retryInterval  = 5 * time.Second
)

// RealClient talks to an actual MQTT broker via paho. Reconnects are handled
// by paho; the OnConnect hook re-subscribes the feeds after every (re)connect
// so a broker restart only costs the messages published while disconnected.
type RealClient struct {
	client paho.Client
	topics Topics
	log    *logger.Logger

	sensorCh chan<- models.SensorReading
	statusCh chan<- models.ControllerStatus
}

// NewRealClient connects to the given broker. SubscribeFeeds must be called
// before any feed message is expected.
func NewRealClient(broker, clientID string, topics Topics, log *logger.Logger) (*RealClient, error) {
	c := &RealClient{topics: topics, log: log}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetOnConnectHandler(func(paho.Client) {
			c.log.Infow("mqtt_connected", "broker", broker)
			c.resubscribe()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			c.log.Warnw("mqtt_connection_lost", "err", err)
		})

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// SubscribeFeeds registers the merger's inbound channels and subscribes both
// feed topics. Malformed payloads are logged and dropped.
func (c *RealClient) SubscribeFeeds(sensorCh chan<- models.SensorReading, statusCh chan<- models.ControllerStatus) error {
	c.sensorCh = sensorCh
	c.statusCh = statusCh
	return c.subscribe()
}

func (c *RealClient) subscribe() error {
	if c.sensorCh == nil || c.statusCh == nil {
		return nil
	}

	token := c.client.Subscribe(c.topics.Sensor, 1, func(_ paho.Client, msg paho.Message) {
		reading, err := DecodeSensorReading(msg.Payload(), time.Now())
		if err != nil {
			c.log.Warnw("sensor_payload_dropped", "err", err)
			return
		}
		c.sensorCh <- reading
	})
	if err := waitToken(token, "subscribe "+c.topics.Sensor); err != nil {
		return err
	}

	token = c.client.Subscribe(c.topics.Status, 1, func(_ paho.Client, msg paho.Message) {
		status, err := DecodeControllerStatus(msg.Payload(), time.Now())
		if err != nil {
			c.log.Warnw("status_payload_dropped", "err", err)
			return
		}
		c.statusCh <- status
	})
	return waitToken(token, "subscribe "+c.topics.Status)
}

// resubscribe re-registers the feed subscriptions after a reconnect.
func (c *RealClient) resubscribe() {
	if err := c.subscribe(); err != nil {
		c.log.Errorw("mqtt_resubscribe_failed", "err", err)
	}
}

// PublishCommand sends a command to the controller command topic.
// QoS 1 (at-least-once): a lost command is worse than a duplicate one.
func (c *RealClient) PublishCommand(cmd Command) error {
	payload, err := EncodeCommand(cmd)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	token := c.client.Publish(c.topics.Command, 1, false, payload)
	return waitToken(token, "publish command")
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // milliseconds to flush in-flight work
	return nil
}

func waitToken(token paho.Token, op string) error {
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%s: timeout", op)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
