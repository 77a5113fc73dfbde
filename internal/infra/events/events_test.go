package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	mock.Mock
}

func (m *mockConn) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *mockConn) Publish(subj string, data []byte) error {
	return m.Called(subj, data).Error(0)
}

func TestNatsPublisher_PublishStatusChanged(t *testing.T) {
	conn := &mockConn{}
	conn.On("IsConnected").Return(true)

	var published []byte
	conn.On("Publish", SubjectStatusChanged, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(1).([]byte) }).
		Return(nil)

	ev := StatusChanged{
		AppointmentID: "ap-1",
		From:          "pending",
		To:            "scheduled",
		Reason:        "all invitees accepted",
		Actor:         "system",
		At:            time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, NewNatsPublisher(conn).PublishStatusChanged(context.Background(), ev))

	var got StatusChanged
	require.NoError(t, json.Unmarshal(published, &got))
	assert.Equal(t, ev, got)
	conn.AssertExpectations(t)
}

func TestNatsPublisher_Errors(t *testing.T) {
	disconnected := &mockConn{}
	disconnected.On("IsConnected").Return(false)
	err := NewNatsPublisher(disconnected).PublishStatusChanged(context.Background(), StatusChanged{})
	assert.ErrorIs(t, err, ErrNotConnected)
	disconnected.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)

	failing := &mockConn{}
	failing.On("IsConnected").Return(true)
	failing.On("Publish", SubjectStatusChanged, mock.Anything).Return(errors.New("slow consumer"))
	err = NewNatsPublisher(failing).PublishStatusChanged(context.Background(), StatusChanged{})
	assert.EqualError(t, err, "slow consumer")
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.PublishStatusChanged(context.Background(), StatusChanged{AppointmentID: "ap-1"}))
}
