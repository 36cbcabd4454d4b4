package service_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/contactrelay/contactrelay/internal/config"
	"github.com/contactrelay/contactrelay/internal/email"
	"github.com/contactrelay/contactrelay/internal/logger"
	"github.com/contactrelay/contactrelay/internal/model"
	"github.com/contactrelay/contactrelay/internal/service"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Name() string { return "mock" }

func (m *MockSender) Check() error {
	return m.Called().Error(0)
}

func (m *MockSender) Send(ctx context.Context, env email.Envelope) (*email.Receipt, error) {
	args := m.Called(ctx, env)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*email.Receipt), args.Error(1)
}

func contactConfig() config.ContactConfig {
	return config.ContactConfig{
		ToEmail:     "inbox@example.com",
		FromEmail:   "site@example.com",
		StrictEmail: true,
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	svc := service.NewRelayService(new(MockSender), contactConfig(), logger.Nop())

	tests := []struct {
		name string
		in   model.ContactInput
		want string
	}{
		{"empty name", model.ContactInput{FullName: "", Email: "a@b.co", Message: "Hi"}, "Full name is required"},
		{"blank name", model.ContactInput{FullName: " \t\n", Email: "a@b.co", Message: "Hi"}, "Full name is required"},
		{"blank email", model.ContactInput{FullName: "Jane", Email: "  ", Message: "Hi"}, "Email is required"},
		{"blank message", model.ContactInput{FullName: "Jane", Email: "a@b.co", Message: "\r\n"}, "Message is required"},
		{"first failure wins", model.ContactInput{}, "Full name is required"},
		{"malformed email", model.ContactInput{FullName: "Jane", Email: "not-an-email", Message: "Hi"}, "Email is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.in)
			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestValidate_TrimsAndIsIdempotent(t *testing.T) {
	svc := service.NewRelayService(new(MockSender), contactConfig(), logger.Nop())
	in := model.ContactInput{FullName: "  Jane Doe ", Email: " jane@x.com ", Message: " Hi\n", Subject: "  "}

	first, err1 := svc.Validate(in)
	second, err2 := svc.Validate(in)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	assert.Equal(t, model.ContactSubmission{FullName: "Jane Doe", Email: "jane@x.com", Message: "Hi"}, first)
}

func TestValidate_PermissiveEmail(t *testing.T) {
	cfg := contactConfig()
	cfg.StrictEmail = false
	svc := service.NewRelayService(new(MockSender), cfg, logger.Nop())

	_, err := svc.Validate(model.ContactInput{FullName: "Jane", Email: "not-an-email", Message: "Hi"})
	assert.NoError(t, err)
}

func TestRelay_RejectsWithoutCallingTransport(t *testing.T) {
	sender := new(MockSender)
	svc := service.NewRelayService(sender, contactConfig(), logger.Nop())

	_, err := svc.Relay(context.Background(), model.ContactInput{FullName: "", Email: "jane@x.com", Message: "Hi"})
	assert.EqualError(t, err, "Full name is required")
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "Check")
}

func TestRelay_SendsDefaultSubject(t *testing.T) {
	sender := new(MockSender)
	sender.On("Check").Return(nil)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(env email.Envelope) bool {
		return env.Subject == "Inquiry - Jane Doe" &&
			env.To == "inbox@example.com" &&
			env.From == "site@example.com" &&
			env.ReplyTo == "jane@x.com"
	})).Return(&email.Receipt{ID: "r1", Transport: "mock"}, nil).Once()

	svc := service.NewRelayService(sender, contactConfig(), logger.Nop())
	receipt, err := svc.Relay(context.Background(), model.ContactInput{FullName: "Jane Doe", Email: "jane@x.com", Message: "Hi"})

	require.NoError(t, err)
	assert.Equal(t, "r1", receipt.ID)
	sender.AssertExpectations(t)
}

func TestRelay_BlankCallerSubjectFallsBackToDefault(t *testing.T) {
	sender := new(MockSender)
	sender.On("Check").Return(nil)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(env email.Envelope) bool {
		return env.Subject == "Inquiry - Jane Doe"
	})).Return(&email.Receipt{ID: "r1"}, nil).Once()

	svc := service.NewRelayService(sender, contactConfig(), logger.Nop())
	_, err := svc.Relay(context.Background(), model.ContactInput{
		FullName: "Jane Doe", Email: "jane@x.com", Message: "Hi", Subject: " \t\r\n ",
	})

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

// transitions returns the from->to pairs logged for one submission
func transitions(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	var out []string
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		if entry["message"] == "submission state" {
			out = append(out, entry["from"].(string)+"->"+entry["to"].(string))
		}
	}
	return out
}

func TestRelay_LogsStateTransitions(t *testing.T) {
	t.Run("sent", func(t *testing.T) {
		var buf bytes.Buffer
		sender := new(MockSender)
		sender.On("Check").Return(nil)
		sender.On("Send", mock.Anything, mock.Anything).Return(&email.Receipt{ID: "r1"}, nil).Once()

		svc := service.NewRelayService(sender, contactConfig(), logger.NewWithWriter(&buf, "info", "json"))
		_, err := svc.Relay(context.Background(), model.ContactInput{FullName: "Jane", Email: "jane@x.com", Message: "Hi"})

		require.NoError(t, err)
		assert.Equal(t, []string{"idle->validating", "validating->sending", "sending->sent"}, transitions(t, &buf))
	})

	t.Run("rejected", func(t *testing.T) {
		var buf bytes.Buffer
		svc := service.NewRelayService(new(MockSender), contactConfig(), logger.NewWithWriter(&buf, "info", "json"))
		_, err := svc.Relay(context.Background(), model.ContactInput{Email: "jane@x.com", Message: "Hi"})

		require.Error(t, err)
		assert.Equal(t, []string{"idle->validating", "validating->rejected"}, transitions(t, &buf))
	})

	t.Run("failed", func(t *testing.T) {
		var buf bytes.Buffer
		sender := new(MockSender)
		sender.On("Check").Return(nil)
		sender.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("554 relay denied")).Once()

		svc := service.NewRelayService(sender, contactConfig(), logger.NewWithWriter(&buf, "info", "json"))
		_, err := svc.Relay(context.Background(), model.ContactInput{FullName: "Jane", Email: "jane@x.com", Message: "Hi"})

		require.Error(t, err)
		assert.Equal(t, []string{"idle->validating", "validating->sending", "sending->failed"}, transitions(t, &buf))
	})
}

func TestRelay_SanitizesHeaderInjection(t *testing.T) {
	sender := new(MockSender)
	sender.On("Check").Return(nil)
	sender.On("Send", mock.Anything, mock.Anything).Return(&email.Receipt{}, nil).Once()

	svc := service.NewRelayService(sender, contactConfig(), logger.Nop())
	_, err := svc.Relay(context.Background(), model.ContactInput{
		FullName: "Evil\r\nBcc:attacker@x.com",
		Email:    "jane@x.com",
		Message:  "line one\r\nline two",
	})
	require.NoError(t, err)

	env := sender.Calls[1].Arguments.Get(1).(email.Envelope)
	assert.Equal(t, "Evil Bcc:attacker@x.com", env.SubmitterName)
	assert.Equal(t, "Inquiry - Evil Bcc:attacker@x.com", env.Subject)
	assert.Contains(t, env.TextBody, "line one\r\nline two", "message body is kept verbatim")
}

func TestRelay_ConfigurationError(t *testing.T) {
	sender := new(MockSender)
	cfg := contactConfig()
	cfg.ToEmail = ""

	svc := service.NewRelayService(sender, cfg, logger.Nop())
	_, err := svc.Relay(context.Background(), model.ContactInput{FullName: "Jane", Email: "jane@x.com", Message: "Hi"})

	var cfgErr *email.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "CONTACT_TO_EMAIL")
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRelay_TransportFailureIsNotRetried(t *testing.T) {
	sender := new(MockSender)
	sender.On("Check").Return(nil)
	sender.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused")).Once()

	svc := service.NewRelayService(sender, contactConfig(), logger.Nop())
	_, err := svc.Relay(context.Background(), model.ContactInput{FullName: "Jane", Email: "jane@x.com", Message: "Hi"})

	var transportErr *email.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "dial tcp: connection refused", err.Error())
	sender.AssertNumberOfCalls(t, "Send", 1)
}
