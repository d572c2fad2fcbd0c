package services

import "github.com/devlog/blog-api/models"

// CanModify decides whether a caller may mutate a resource owned by
// resourceOwner: allowed when the caller is the owner, or when the caller
// holds the ADMIN role. Pure function, no side effects.
//
// Note posts deliberately do NOT consult this policy: their update/delete
// path is owner-only with no admin bypass, while comments do allow the
// bypass. The divergence matches observed product behavior and is pinned
// by tests.
func CanModify(resourceOwner, callerSubject string, callerRole models.Role) bool {
	if resourceOwner == callerSubject {
		return true
	}
	return callerRole == models.RoleAdmin
}
