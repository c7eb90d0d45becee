package game

import (
	"api/domain"
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// --- Conn ---

type closeCall struct {
	code   int
	reason string
}

// fakeConn is a scripted transport: tests feed inbound frames through in and
// observe outbound frames on out. Closing in ends the read pump like a
// dropped connection would.
type fakeConn struct {
	in     chan []byte
	out    chan []byte
	closed chan closeCall
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 64),
		closed: make(chan closeCall, 4),
	}
}

func (f *fakeConn) Read() ([]byte, error) {
	data, ok := <-f.in
	if !ok {
		return nil, io.EOF
	}
	return data, nil
}

func (f *fakeConn) Write(data []byte) error {
	f.out <- data
	return nil
}

func (f *fakeConn) Ping() error { return nil }

func (f *fakeConn) Close(code int, reason string) {
	select {
	case f.closed <- closeCall{code: code, reason: reason}:
	default:
	}
}

// --- Storage ---

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetRoomById(ctx context.Context, id string) (domain.Room, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Room), args.Error(1)
}

func (m *MockStorage) GetUsersByIds(ctx context.Context, ids []string) ([]domain.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockStorage) LoadGameByRoomId(ctx context.Context, roomId string) (int64, []byte, error) {
	args := m.Called(ctx, roomId)
	return args.Get(0).(int64), args.Get(1).([]byte), args.Error(2)
}

func (m *MockStorage) SaveGame(ctx context.Context, gameId int64, data []byte) error {
	args := m.Called(ctx, gameId, data)
	return args.Error(0)
}

// --- TokenVerifier ---

type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(token string) (domain.TokenPayload, error) {
	args := m.Called(token)
	return args.Get(0).(domain.TokenPayload), args.Error(1)
}
