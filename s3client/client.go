package s3client

import (
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"strings"
	"sync"
	"text2phenotype.com/hmmtag/logger"
)

const maxRetries = 4

type EnvironmentConfig struct {
	BucketName  string `envconfig:"HMMTAG_S3_BUCKET" required:"true"`
	Env         string `envconfig:"HMMTAG_ENV" default:"prod"`
	Region      string `envconfig:"HMMTAG_AWS_REGION" required:"true"`
	AwsEndpoint string `envconfig:"HMMTAG_AWS_ENDPOINT_URL" default:""`
	AccessKeyID string `envconfig:"HMMTAG_AWS_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"HMMTAG_AWS_ACCESS_KEY" default:""`
}

// Client moves corpora and run results in and out of one bucket. The AWS
// session is re-acquired once when a request fails.
type Client struct {
	env    EnvironmentConfig
	mu     sync.Mutex
	sess   *session.Session
	closed bool
}

var clientLogger = logger.NewLogger("S3Client")
var sdkLogger = logger.NewLogger("S3-SDK")

func New() (*Client, error) {
	var env EnvironmentConfig
	if err := envconfig.Process("", &env); err != nil {
		clientLogger.Err(err).Caller().Msg("Failed to get proper variables from environment")
		return nil, err
	}
	return NewWithConfig(env)
}

func NewWithConfig(env EnvironmentConfig) (*Client, error) {
	client := &Client{env: env}
	if _, err := client.refresh(); err != nil {
		return nil, err
	}
	return client, nil
}

func (client *Client) Bucket() string {
	return client.env.BucketName
}

func (client *Client) Upload(data string, key string) error {
	params := &s3manager.UploadInput{
		Bucket: aws.String(client.env.BucketName),
		Key:    aws.String(key),
		Body:   strings.NewReader(data),
	}
	return client.withSession(func(sess *session.Session) error {
		// the body reader is consumed by a failed attempt
		params.Body = strings.NewReader(data)
		uploader := s3manager.NewUploader(sess.Copy(&aws.Config{Logger: client.sdkLog(key)}))
		fileLogger := client.keyLogger(key)
		fileLogger.Debug().Msg("Uploading the file")
		_, err := uploader.Upload(params)
		return err
	})
}

func (client *Client) Download(key string) ([]byte, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(client.env.BucketName),
		Key:    aws.String(key),
	}
	var res []byte
	err := client.withSession(func(sess *session.Session) error {
		fileLogger := client.keyLogger(key)
		downloader := s3manager.NewDownloader(sess.Copy(&aws.Config{Logger: client.sdkLog(key)}))
		buf := aws.NewWriteAtBuffer([]byte{})

		fileLogger.Debug().Msg("Downloading file")
		size, err := downloader.Download(buf, params)
		if err != nil {
			fileLogger.Error().Err(err).Msg("Failed to download file")
			return err
		}
		fileLogger.Debug().Msgf("Downloaded %v bytes", size)
		res = buf.Bytes()
		return nil
	})
	return res, err
}

func (client *Client) Close() {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.closed = true
	client.sess = nil
	clientLogger.Info().Msg("Closing client")
}

func (client *Client) withSession(op func(sess *session.Session) error) error {
	sess, err := client.current()
	if err != nil {
		return err
	}
	err = op(sess)
	if err == nil {
		return nil
	}
	clientLogger.Error().Err(err).Msg("Caught error while using S3 session, trying to refresh it")
	sess, refreshErr := client.refresh()
	if refreshErr != nil {
		return fmt.Errorf("%v (session refresh failed: %w)", err, refreshErr)
	}
	return op(sess)
}

func (client *Client) current() (*session.Session, error) {
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.closed {
		return nil, errors.New("s3 client is closed")
	}
	if client.sess == nil {
		return nil, errors.New("could not get session")
	}
	return client.sess, nil
}

// refresh tries the instance role first and falls back to static
// credentials from the environment.
func (client *Client) refresh() (*session.Session, error) {
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.closed {
		return nil, errors.New("s3 client is closed")
	}

	sess, err := verifiedSession(client.instanceConfig())
	if err == nil {
		client.sess = sess
		clientLogger.Info().Msg("S3 session successfully initialized using EC2")
		return sess, nil
	}
	clientLogger.Info().Msg("Could not initialize S3 session using EC2, trying env credentials")

	cfg, err := client.envConfig()
	if err != nil {
		client.sess = nil
		return nil, err
	}
	sess, err = verifiedSession(cfg)
	if err != nil {
		client.sess = nil
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, errors.New("could not initialize S3 session")
	}
	client.sess = sess
	clientLogger.Info().Msg("S3 session successfully initialized using env credentials")
	return sess, nil
}

func verifiedSession(cfg *aws.Config) (*session.Session, error) {
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	if _, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err != nil {
		return nil, err
	}
	return sess, nil
}

func (client *Client) instanceConfig() *aws.Config {
	return &aws.Config{
		Region:     aws.String(client.env.Region),
		MaxRetries: aws.Int(maxRetries),
		LogLevel:   aws.LogLevel(aws.LogDebug),
	}
}

func (client *Client) envConfig() (*aws.Config, error) {
	creds := credentials.NewStaticCredentials(client.env.AccessKeyID, client.env.AccessKey, "")
	if _, err := creds.Get(); err != nil {
		clientLogger.Error().Err(err).Msg("Error with credentials from environment")
		return nil, err
	}
	cfg := aws.NewConfig().
		WithRegion(client.env.Region).
		WithMaxRetries(maxRetries).
		WithCredentials(creds).
		WithLogLevel(aws.LogDebug)

	if client.env.Env == "dev" && len(client.env.AwsEndpoint) > 0 {
		cfg = cfg.WithEndpoint(client.env.AwsEndpoint).
			WithS3ForcePathStyle(true)
	}
	return cfg, nil
}

func (client *Client) keyLogger(key string) zerolog.Logger {
	return clientLogger.With().
		Str("key", key).
		Str("bucket", client.env.BucketName).Logger()
}

func (client *Client) sdkLog(key string) *s3Logger {
	return &s3Logger{sdkLogger.With().
		Str("key", key).
		Str("bucket", client.env.BucketName).Logger()}
}

type s3Logger struct {
	hmmLogger zerolog.Logger
}

func (logger *s3Logger) Log(v ...interface{}) {
	logger.hmmLogger.Debug().Msg(fmt.Sprint(v...))
}
