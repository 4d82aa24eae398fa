package identity

import "errors"

// ErrManagerOnly carries the caller-facing contract message verbatim.
var ErrManagerOnly = errors.New("Only the warehouse manager can perform this function.")

// Actor is an opaque caller identity supplied by the transport on every call.
type Actor string

func (a Actor) String() string { return string(a) }

// AccessControl holds the sole manager identity, fixed at construction.
type AccessControl struct {
	manager Actor
}

func NewAccessControl(manager Actor) *AccessControl {
	return &AccessControl{manager: manager}
}

func (a *AccessControl) Manager() Actor { return a.manager }

func (a *AccessControl) IsManager(caller Actor) bool {
	return caller == a.manager
}

// RequireManager gates manager-only operations.
func (a *AccessControl) RequireManager(caller Actor) error {
	if !a.IsManager(caller) {
		return ErrManagerOnly
	}
	return nil
}
