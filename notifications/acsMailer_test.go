package notifications_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucond/ucond_backend/notifications"
)

const testAccessKey = "clave-de-prueba"

type fakeACS struct {
	t        *testing.T
	server   *httptest.Server
	polls    atomic.Int32
	statuses []string
	lastBody map[string]interface{}
}

func newFakeACS(t *testing.T, statuses ...string) *fakeACS {
	f := &fakeACS{t: t, statuses: statuses}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeACS) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.verifySignature(r, body)

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/emails:send":
		assert.Equal(f.t, "2023-03-31", r.URL.Query().Get("api-version"))
		_ = json.Unmarshal(body, &f.lastBody)
		w.Header().Set("Operation-Location", f.server.URL+"/emails/operations/op-1?api-version=2023-03-31")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id":"op-1","status":"Running"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/emails/operations/op-1":
		n := int(f.polls.Add(1))
		status := f.statuses[len(f.statuses)-1]
		if n <= len(f.statuses) {
			status = f.statuses[n-1]
		}
		if status == "Failed" {
			_, _ = w.Write([]byte(`{"id":"op-1","status":"Failed","error":{"code":"EmailDroppedAllRecipientsSuppressed","message":"suppressed"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"op-1","status":"` + status + `"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeACS) verifySignature(r *http.Request, body []byte) {
	sum := sha256.Sum256(body)
	hash := base64.StdEncoding.EncodeToString(sum[:])
	assert.Equal(f.t, hash, r.Header.Get("x-ms-content-sha256"))

	stringToSign := r.Method + "\n" + r.URL.RequestURI() + "\n" + r.Header.Get("x-ms-date") + ";" + r.Host + ";" + hash
	mac := hmac.New(sha256.New, []byte(testAccessKey))
	mac.Write([]byte(stringToSign))
	want := "HMAC-SHA256 SignedHeaders=x-ms-date;host;x-ms-content-sha256&Signature=" + base64.StdEncoding.EncodeToString(mac.Sum(nil))
	assert.Equal(f.t, want, r.Header.Get("Authorization"))
}

func (f *fakeACS) mailer(t *testing.T, maxPolls int) *notifications.ACSMailer {
	conn := "endpoint=" + f.server.URL + "/;accesskey=" + base64.StdEncoding.EncodeToString([]byte(testAccessKey))
	m, err := notifications.NewACSMailer(conn, "DoNotReply@ucond.test",
		notifications.WithHTTPClient(f.server.Client()),
		notifications.WithPolling(time.Millisecond, maxPolls),
		notifications.WithRatePerMinute(0),
	)
	require.NoError(t, err)
	return m
}

var testEmail = notifications.Email{To: "ana@ucond.test", ToName: "Ana Pérez", Subject: "Asunto", PlainText: "Cuerpo"}

func TestACSMailerSendsAndPollsUntilSucceeded(t *testing.T) {
	fake := newFakeACS(t, "Running", "Succeeded")
	err := fake.mailer(t, 18).Send(context.Background(), testEmail)
	require.NoError(t, err)
	assert.EqualValues(t, 2, fake.polls.Load())

	assert.Equal(t, "DoNotReply@ucond.test", fake.lastBody["senderAddress"])
	content := fake.lastBody["content"].(map[string]interface{})
	assert.Equal(t, "Asunto", content["subject"])
	assert.Equal(t, "Cuerpo", content["plainText"])
	to := fake.lastBody["recipients"].(map[string]interface{})["to"].([]interface{})
	assert.Equal(t, "ana@ucond.test", to[0].(map[string]interface{})["address"])
}

func TestACSMailerTimesOut(t *testing.T) {
	fake := newFakeACS(t, "Running")
	err := fake.mailer(t, 3).Send(context.Background(), testEmail)
	assert.ErrorIs(t, err, notifications.ErrSendTimeout)
	assert.EqualValues(t, 3, fake.polls.Load())
}

func TestACSMailerReportsFailedOperation(t *testing.T) {
	fake := newFakeACS(t, "Failed")
	err := fake.mailer(t, 5).Send(context.Background(), testEmail)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EmailDroppedAllRecipientsSuppressed")
}

func TestParseConnectionString(t *testing.T) {
	endpoint, key, err := notifications.ParseConnectionString("endpoint=https://ucond.communication.azure.com/;accesskey=abc==")
	require.NoError(t, err)
	assert.Equal(t, "https://ucond.communication.azure.com/", endpoint)
	assert.Equal(t, "abc==", key)

	_, _, err = notifications.ParseConnectionString("endpoint=https://ucond.communication.azure.com/")
	assert.ErrorIs(t, err, notifications.ErrInvalidConnectionString)

	_, err = notifications.NewACSMailer("endpoint=https://x/;accesskey=***", "a@b.c")
	assert.ErrorIs(t, err, notifications.ErrInvalidConnectionString)
}
