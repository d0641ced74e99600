package auth

import "github.com/frahmantamala/meal-scan/internal"

type PermissionChecker interface {
	CanGrantOvertime(actor internal.Actor) bool
	CanRevokeGrants(actor internal.Actor) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

// CanGrantOvertime holds for every signed-in approver.
func (c *DefaultPermissionChecker) CanGrantOvertime(actor internal.Actor) bool {
	return actor.Username != ""
}

func (c *DefaultPermissionChecker) CanRevokeGrants(actor internal.Actor) bool {
	return actor.IsAdmin
}
