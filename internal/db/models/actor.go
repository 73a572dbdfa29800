package models

import (
	"encoding/json"
	"fmt"
)

// ActorRole represents the marketplace role of an authenticated actor.
// Credential verification happens outside the core; the role is trusted input.
type ActorRole int

// Actor role constants
const (
	// ActorRoleUnknown represents an unknown or invalid role
	ActorRoleUnknown ActorRole = iota
	// ActorRoleRequester represents a property owner posting jobs
	ActorRoleRequester
	// ActorRoleContractor represents a service provider bidding on jobs
	ActorRoleContractor
)

var actorRoleNames = []string{
	"unknown",
	"requester",
	"contractor",
}

// Actor identifies the authenticated caller of a core operation.
type Actor struct {
	ID   uint      `json:"id"`
	Role ActorRole `json:"role"`
}

// ParseActorRole converts a string representation of a role to ActorRole type
func ParseActorRole(str string) (ActorRole, error) {
	for i, role := range actorRoleNames {
		if role == str {
			return ActorRole(i), nil
		}
	}
	return ActorRoleUnknown, fmt.Errorf("invalid actor role: %s", str)
}

func (r ActorRole) String() string {
	if int(r) < 0 || int(r) >= len(actorRoleNames) {
		return actorRoleNames[ActorRoleUnknown]
	}
	return actorRoleNames[r]
}

// MarshalJSON implements the json.Marshaler interface for ActorRole
func (r ActorRole) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for ActorRole
func (r *ActorRole) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	role, err := ParseActorRole(str)
	if err != nil {
		return err
	}

	*r = role
	return nil
}
