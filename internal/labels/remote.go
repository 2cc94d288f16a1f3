package labels

import (
	"context"
	"errors"
)

// ErrRemoteUnavailable is returned by the stub for every remote call.
var ErrRemoteUnavailable = errors.New("labels: remote registry unavailable")

// RemoteRegistry mirrors the external label service surface. The local
// Service remains authoritative for the note-taking features; this
// interface exists so a future backend can be slotted in without touching
// callers.
type RemoteRegistry interface {
	AddLabel(ctx context.Context, id, name string) (bool, error)
	DeleteLabel(ctx context.Context, id string) (bool, error)
	GetAllLabels(ctx context.Context) (map[string]string, error)
	GetLabel(ctx context.Context, id string) (string, error)
	InitializeDefaultLabels(ctx context.Context) error
	RenameLabel(ctx context.Context, id, newName string) (bool, error)
}

type remoteStub struct{}

// NewRemoteStub returns a RemoteRegistry whose every call reports the
// remote as unavailable.
func NewRemoteStub() RemoteRegistry {
	return remoteStub{}
}

func (remoteStub) AddLabel(context.Context, string, string) (bool, error) {
	return false, ErrRemoteUnavailable
}

func (remoteStub) DeleteLabel(context.Context, string) (bool, error) {
	return false, ErrRemoteUnavailable
}

func (remoteStub) GetAllLabels(context.Context) (map[string]string, error) {
	return nil, ErrRemoteUnavailable
}

func (remoteStub) GetLabel(context.Context, string) (string, error) {
	return "", ErrRemoteUnavailable
}

func (remoteStub) InitializeDefaultLabels(context.Context) error {
	return ErrRemoteUnavailable
}

func (remoteStub) RenameLabel(context.Context, string, string) (bool, error) {
	return false, ErrRemoteUnavailable
}
