package notifications

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ucond/ucond_backend/config"
	"golang.org/x/time/rate"
)

const acsAPIVersion = "2023-03-31"

const (
	acsStatusSucceeded = "Succeeded"
	acsStatusFailed    = "Failed"
	acsStatusCanceled  = "Canceled"
)

var (
	ErrInvalidConnectionString = errors.New("invalid email connection string")
	ErrSendTimeout             = errors.New("email send did not finish in time")
)

// ACSMailer sends mail through the Azure Communication Services Email REST API,
// signing every request with the resource access key.
type ACSMailer struct {
	endpoint     *url.URL
	accessKey    []byte
	sender       string
	client       *http.Client
	limiter      *rate.Limiter
	pollInterval time.Duration
	maxPolls     int
	now          func() time.Time
}

type ACSOption func(*ACSMailer)

func WithHTTPClient(client *http.Client) ACSOption {
	return func(m *ACSMailer) { m.client = client }
}

func WithPolling(interval time.Duration, maxPolls int) ACSOption {
	return func(m *ACSMailer) {
		m.pollInterval = interval
		m.maxPolls = maxPolls
	}
}

// WithRatePerMinute caps how many messages are started per minute. 0 disables the cap.
func WithRatePerMinute(perMinute int) ACSOption {
	return func(m *ACSMailer) {
		if perMinute <= 0 {
			m.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		m.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
}

// ParseConnectionString splits "endpoint=https://...;accesskey=..." into its parts.
func ParseConnectionString(conn string) (endpoint string, accessKey string, err error) {
	for _, part := range strings.Split(conn, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.ToLower(key) {
		case "endpoint":
			endpoint = value
		case "accesskey":
			accessKey = value
		}
	}
	if endpoint == "" || accessKey == "" {
		return "", "", ErrInvalidConnectionString
	}
	return endpoint, accessKey, nil
}

func NewACSMailer(connectionString, sender string, opts ...ACSOption) (*ACSMailer, error) {
	rawEndpoint, rawKey, err := ParseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}
	endpoint, err := url.Parse(rawEndpoint)
	if err != nil || endpoint.Host == "" {
		return nil, ErrInvalidConnectionString
	}
	key, err := base64.StdEncoding.DecodeString(rawKey)
	if err != nil {
		return nil, fmt.Errorf("%w: access key is not base64", ErrInvalidConnectionString)
	}
	m := &ACSMailer{
		endpoint:     endpoint,
		accessKey:    key,
		sender:       sender,
		client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: 10 * time.Second,
		maxPolls:     18,
		now:          time.Now,
	}
	WithRatePerMinute(30)(m)
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// NewACSMailerFromEnv reads EMAIL_CONN, MAIL_FROM, EMAIL_RATE_PER_MIN,
// EMAIL_POLL_SECONDS and EMAIL_MAX_POLLS.
func NewACSMailerFromEnv() (*ACSMailer, error) {
	return NewACSMailer(os.Getenv("EMAIL_CONN"), os.Getenv("MAIL_FROM"),
		WithRatePerMinute(config.IntFromEnv("EMAIL_RATE_PER_MIN", 30)),
		WithPolling(
			time.Duration(config.IntFromEnv("EMAIL_POLL_SECONDS", 10))*time.Second,
			config.IntFromEnv("EMAIL_MAX_POLLS", 18),
		),
	)
}

type acsAddress struct {
	Address     string `json:"address"`
	DisplayName string `json:"displayName,omitempty"`
}

type acsMessage struct {
	SenderAddress string `json:"senderAddress"`
	Content       struct {
		Subject   string `json:"subject"`
		PlainText string `json:"plainText"`
	} `json:"content"`
	Recipients struct {
		To []acsAddress `json:"to"`
	} `json:"recipients"`
}

type acsOperation struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Send starts the delivery and polls the operation until it finishes, fails or runs
// out of polls.
func (m *ACSMailer) Send(ctx context.Context, email Email) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	location, op, err := m.beginSend(ctx, email)
	if err != nil {
		return err
	}
	for poll := 0; ; poll++ {
		switch op.Status {
		case acsStatusSucceeded:
			return nil
		case acsStatusFailed, acsStatusCanceled:
			return operationError(op)
		}
		if poll >= m.maxPolls {
			return ErrSendTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.pollInterval):
		}
		op, err = m.getOperation(ctx, location)
		if err != nil {
			return err
		}
	}
}

func operationError(op *acsOperation) error {
	if op.Error != nil {
		return fmt.Errorf("email %s %s: %s %s", op.ID, strings.ToLower(op.Status), op.Error.Code, op.Error.Message)
	}
	return fmt.Errorf("email %s %s", op.ID, strings.ToLower(op.Status))
}

func (m *ACSMailer) beginSend(ctx context.Context, email Email) (string, *acsOperation, error) {
	var msg acsMessage
	msg.SenderAddress = m.sender
	msg.Content.Subject = email.Subject
	msg.Content.PlainText = email.PlainText
	msg.Recipients.To = []acsAddress{{Address: email.To, DisplayName: email.ToName}}
	body, err := json.Marshal(msg)
	if err != nil {
		return "", nil, err
	}

	u := *m.endpoint
	u.Path = strings.TrimRight(u.Path, "/") + "/emails:send"
	u.RawQuery = url.Values{"api-version": {acsAPIVersion}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("repeatability-request-id", uuid.NewString())
	req.Header.Set("repeatability-first-sent", m.now().UTC().Format(http.TimeFormat))
	m.sign(req, body)

	op, resp, err := m.do(req)
	if err != nil {
		return "", nil, err
	}
	location := resp.Header.Get("Operation-Location")
	if location == "" {
		opURL := *m.endpoint
		opURL.Path = strings.TrimRight(opURL.Path, "/") + "/emails/operations/" + url.PathEscape(op.ID)
		opURL.RawQuery = url.Values{"api-version": {acsAPIVersion}}.Encode()
		location = opURL.String()
	}
	return location, op, nil
}

func (m *ACSMailer) getOperation(ctx context.Context, location string) (*acsOperation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	m.sign(req, nil)
	op, _, err := m.do(req)
	return op, err
}

func (m *ACSMailer) do(req *http.Request) (*acsOperation, *http.Response, error) {
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("email api %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	var op acsOperation
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, nil, err
	}
	return &op, resp, nil
}

// sign adds the HMAC-SHA256 authorization headers over date, host and body hash.
func (m *ACSMailer) sign(req *http.Request, body []byte) {
	date := m.now().UTC().Format(http.TimeFormat)
	sum := sha256.Sum256(body)
	contentHash := base64.StdEncoding.EncodeToString(sum[:])

	stringToSign := req.Method + "\n" + req.URL.RequestURI() + "\n" + date + ";" + req.URL.Host + ";" + contentHash
	mac := hmac.New(sha256.New, m.accessKey)
	mac.Write([]byte(stringToSign))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("x-ms-date", date)
	req.Header.Set("x-ms-content-sha256", contentHash)
	req.Header.Set("Authorization", "HMAC-SHA256 SignedHeaders=x-ms-date;host;x-ms-content-sha256&Signature="+signature)
}
