package rmq

import (
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"text2phenotype.com/hmmtag/logger"
)

type Config struct {
	Host                    string `envconfig:"HMMTAG_RMQ_HOST" required:"true"`
	Port                    string `envconfig:"HMMTAG_RMQ_PORT" required:"true"`
	Username                string `envconfig:"HMMTAG_RMQ_USERNAME" required:"true"`
	Password                string `envconfig:"HMMTAG_RMQ_PASSWORD" required:"true"`
	Exchange                string `envconfig:"HMMTAG_RMQ_EXCHANGE" default:"hmmtag-default-exchange"`
	MaxParallelRequestCount int    `envconfig:"HMMTAG_RMQ_MAX_PARALLEL_REQUESTS" default:"5"`
	TagTaskQueue            string `envconfig:"HMMTAG_RMQ_TAG_QUEUE" default:"hmmtag-tag-tasks"`
	ReplyQueue              string `envconfig:"HMMTAG_RMQ_REPLY_QUEUE" default:"hmmtag-tag-replies"`
}

// Client consumes tag tasks on one connection and publishes replies on a
// second one, so a blocked publisher never stalls deliveries.
type Client struct {
	Deliveries     <-chan amqp.Delivery
	ReqChanErrors  <-chan *amqp.Error
	RespChanErrors <-chan *amqp.Error
	config         Config
	reqConn        *amqp.Connection
	respConn       *amqp.Connection
	respChannel    *amqp.Channel
	hmmLogger      *zerolog.Logger
}

func NewClient() (*Client, error) {
	hmmLogger := logger.NewLogger("RMQ client")
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		hmmLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	url := getURL(config)
	respConn, respChannel, err := setup(url)
	if err != nil {
		return nil, fmt.Errorf("failed connection: %w", err)
	}
	reqConn, reqChannel, err := setup(url)
	if err != nil {
		_ = respConn.Close()
		return nil, fmt.Errorf("failed connection: %w", err)
	}
	client := &Client{
		config:      config,
		reqConn:     reqConn,
		respConn:    respConn,
		respChannel: respChannel,
		hmmLogger:   &hmmLogger,
	}

	if err := declare(reqChannel, config.TagTaskQueue, config.Exchange); err != nil {
		client.Close()
		return nil, err
	}
	if err := declare(respChannel, config.ReplyQueue, config.Exchange); err != nil {
		client.Close()
		return nil, err
	}
	if err := reqChannel.Qos(config.MaxParallelRequestCount, 0, false); err != nil {
		client.Close()
		return nil, fmt.Errorf("qos: %w", err)
	}

	deliveries, err := reqChannel.Consume(
		config.TagTaskQueue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("consume deliveries: %w", err)
	}
	client.Deliveries = deliveries
	client.ReqChanErrors = reqChannel.NotifyClose(make(chan *amqp.Error, 1))
	client.RespChanErrors = respChannel.NotifyClose(make(chan *amqp.Error, 1))
	hmmLogger.Info().Str("queue", config.TagTaskQueue).Msg("Consuming tag tasks")
	return client, nil
}

func declare(ch *amqp.Channel, queue, exchange string) error {
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare %s: %w", queue, err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return ch.QueueBind(queue, queue, exchange, false, nil)
}

func (c *Client) SendReply(msg amqp.Publishing) error {
	return c.respChannel.Publish(
		c.config.Exchange,
		c.config.ReplyQueue,
		false,
		false,
		msg)
}

func (c *Client) Close() {
	_ = c.reqConn.Close()
	_ = c.respConn.Close()
}

func getURL(config Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", config.Username, config.Password, config.Host, config.Port)
}

func setup(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
