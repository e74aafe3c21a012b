package sender

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/voiceminder/voiceminder/internal/lib/smtp"
	"github.com/voiceminder/voiceminder/internal/models"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func happyClient(t *testing.T) (*MockTransport, *MockSMTPClient, *MockSMTPWriter) {
	t.Helper()
	transport := new(MockTransport)
	client := new(MockSMTPClient)
	writer := new(MockSMTPWriter)

	transport.On("GetSMTPUser").Return("noreply@voiceminder.app")
	transport.On("Connect").Return(client, nil)
	client.On("Mail", "noreply@voiceminder.app").Return(nil)
	client.On("Rcpt", "user@example.com").Return(nil)
	client.On("Data").Return(writer, nil)
	writer.On("Write", mock.Anything).Return(0, nil)
	writer.On("Close").Return(nil)
	client.On("Quit").Return(nil)
	client.On("Close").Return(nil)
	return transport, client, writer
}

func TestSendPlanApproved(t *testing.T) {
	transport, client, writer := happyClient(t)

	svc := NewSenderService(transport, newNoopLogger())

	body, _ := json.Marshal(models.UserEvent{Email: "user@example.com", Plan: models.PlanYearly})
	err := svc.SendPlanApproved(body)

	assert.NoError(t, err)
	client.AssertExpectations(t)
	writer.AssertExpectations(t)
}

func TestSendTrialExpired(t *testing.T) {
	transport, client, _ := happyClient(t)

	svc := NewSenderService(transport, newNoopLogger())

	body, _ := json.Marshal(models.UserEvent{Email: "user@example.com", Name: "Alex"})
	err := svc.SendTrialExpired(body)

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSendPlanApproved_BadBody(t *testing.T) {
	svc := NewSenderService(new(MockTransport), newNoopLogger())

	err := svc.SendPlanApproved([]byte("{not json"))
	assert.Error(t, err)
}

func TestSendPlanApproved_ConnectError(t *testing.T) {
	transport := new(MockTransport)
	transport.On("GetSMTPUser").Return("noreply@voiceminder.app")
	transport.On("Connect").Return(nil, errors.New("dial tcp: connection refused"))

	svc := NewSenderService(transport, newNoopLogger())

	body, _ := json.Marshal(models.UserEvent{Email: "user@example.com"})
	err := svc.SendPlanApproved(body)
	assert.Error(t, err)
}
