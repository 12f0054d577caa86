package service

import (
	"context"
	"errors"
	"time"

	"language-mirror-be/internal/entity"
	"language-mirror-be/internal/repository/contract"
	"language-mirror-be/internal/repository/memory"

	"github.com/google/uuid"
)

// nopLogger keeps test output quiet.
type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newStore(timeout time.Duration, window int) (ISessionService, *memory.Backend, *memory.Backend) {
	primary := memory.NewBackend()
	fallback := memory.NewBackend()
	return NewSessionService(primary, fallback, timeout, window, nopLogger{}), primary, fallback
}

var errBackendDown = errors.New("backend down")

// downBackend simulates a persistence layer that fails every call.
type downBackend struct{}

func (downBackend) FindUser(context.Context, int64) (*entity.User, error) {
	return nil, errBackendDown
}
func (downBackend) CreateUser(context.Context, int64, contract.NewUserProfile) (*entity.User, error) {
	return nil, errBackendDown
}
func (downBackend) UpdateUser(context.Context, *entity.User) error { return errBackendDown }
func (downBackend) GetActiveSession(context.Context, uuid.UUID) (*entity.Session, error) {
	return nil, errBackendDown
}
func (downBackend) CreateSession(context.Context, uuid.UUID, map[string]interface{}) (*entity.Session, error) {
	return nil, errBackendDown
}
func (downBackend) UpdateSession(context.Context, uuid.UUID, map[string]interface{}) error {
	return errBackendDown
}
func (downBackend) EndSession(context.Context, uuid.UUID) error { return errBackendDown }
func (downBackend) AppendTurn(context.Context, uuid.UUID, string, string) (*entity.Turn, error) {
	return nil, errBackendDown
}
func (downBackend) ListTurns(context.Context, uuid.UUID) ([]*entity.Turn, error) {
	return nil, errBackendDown
}
func (downBackend) AddFeedback(context.Context, uuid.UUID, string, *string, *uuid.UUID) (*entity.Feedback, error) {
	return nil, errBackendDown
}
func (downBackend) ListFeedback(context.Context) ([]*entity.Feedback, error) {
	return nil, errBackendDown
}
func (downBackend) ListUsers(context.Context) ([]*entity.User, error) { return nil, errBackendDown }
func (downBackend) HealthCheck(context.Context) bool                  { return false }
