package invalidation

import (
	"context"
	"errors"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	called int
	last   Message
	err    error
}

func (h *stubHandler) Handle(_ context.Context, msg Message) (Result, error) {
	h.called++
	h.last = msg
	if h.err != nil {
		return Result{}, h.err
	}
	return Result{Deleted: map[string]int64{msg.Dataset: 4}}, nil
}

type stubReceiver struct {
	messages []*gcppubsub.Message
}

func (r *stubReceiver) Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error {
	for _, m := range r.messages {
		f(ctx, m)
	}
	return nil
}

func newTestService(t *testing.T, handler Handler) *Service {
	t.Helper()
	svc, err := NewService(&stubReceiver{}, handler, logger.New(logger.Options{ServiceName: "invalidation-test"}))
	require.NoError(t, err)
	return svc
}

func TestProcessHandlesMessage(t *testing.T) {
	handler := &stubHandler{}
	svc := newTestService(t, handler)

	res := svc.process(context.Background(), &gcppubsub.Message{ID: "m-1", Data: []byte(`{"dataset":"sales"}`)})
	assert.False(t, res.nack)
	assert.Equal(t, 1, handler.called)
	assert.Equal(t, "sales", handler.last.Dataset)
}

func TestProcessInvalidPayloadAcks(t *testing.T) {
	handler := &stubHandler{}
	svc := newTestService(t, handler)

	res := svc.process(context.Background(), &gcppubsub.Message{Data: []byte("invalid json")})
	assert.False(t, res.nack, "invalid payload should ack")
	assert.Zero(t, handler.called)
}

func TestProcessValidationErrorAcks(t *testing.T) {
	handler := &stubHandler{err: pkgerrors.New(pkgerrors.CodeValidation, "unknown dataset")}
	svc := newTestService(t, handler)

	res := svc.process(context.Background(), &gcppubsub.Message{Data: []byte(`{"dataset":"orders"}`)})
	assert.False(t, res.nack)
	assert.Equal(t, 1, handler.called)
}

func TestProcessHandlerErrorRetries(t *testing.T) {
	handler := &stubHandler{err: errors.New("boom")}
	svc := newTestService(t, handler)

	res := svc.process(context.Background(), &gcppubsub.Message{Data: []byte(`{"dataset":"sales"}`)})
	assert.True(t, res.nack, "expected nack on handler error")
}

func TestRunDeliversEveryMessage(t *testing.T) {
	handler := &stubHandler{}
	receiver := &stubReceiver{messages: []*gcppubsub.Message{
		{ID: "1", Data: []byte(`{"dataset":"sales"}`)},
		{ID: "2", Data: []byte(`{"dataset":"watchtower"}`)},
	}}
	svc, err := NewService(receiver, handler, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, svc.Run(context.Background()))
	assert.Equal(t, 2, handler.called)
}

func TestNewServiceValidatesDeps(t *testing.T) {
	logg := logger.Nop()
	_, err := NewService(nil, &stubHandler{}, logg)
	assert.Error(t, err)
	_, err = NewService(&stubReceiver{}, nil, logg)
	assert.Error(t, err)
	_, err = NewService(&stubReceiver{}, &stubHandler{}, nil)
	assert.Error(t, err)
}
