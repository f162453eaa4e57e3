package docker

import (
	"errors"
	"fmt"
)

// ErrConnectionFailed is returned when the engine cannot be reached.
var ErrConnectionFailed = errors.New("docker connection failed")

// DockerError wraps engine and CLI errors with the operation and entity involved.
type DockerError struct {
	Op      string // Operation that failed
	Entity  string // network, volume, stack
	ID      string // Entity name if applicable
	Message string
	Err     error
}

func (e *DockerError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.ID, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *DockerError) Unwrap() error {
	return e.Err
}

// NewDockerError creates a new DockerError.
func NewDockerError(op, entity, id, message string, err error) *DockerError {
	return &DockerError{
		Op:      op,
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}
