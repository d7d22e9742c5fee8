// Package scope centralizes role-based visibility for inventory and sales
// queries. Every list operation in the system resolves a Scope from the
// authenticated user and passes it to the repository layer; handlers never
// build their own site filters.
package scope

import "stallsync/internal/model"

// Scope is the effective visibility of one authenticated user.
//
//   - admin: All=true, no restriction.
//   - manager: SiteIDs holds the managed site union (empty = sees nothing).
//   - staff: SiteID pins one site; StallID additionally pins one stall.
//     A staff user with a site but no stall sees the whole site ("master
//     stock" view). A staff user with no site assigned sees nothing.
type Scope struct {
	All     bool
	SiteIDs []string
	SiteID  string
	StallID string
}

// Resolve computes the visibility scope for a user.
func Resolve(u *model.User) Scope {
	switch u.Role {
	case model.RoleAdmin:
		return Scope{All: true}
	case model.RoleManager:
		return Scope{SiteIDs: u.ManagedSiteIDs}
	default:
		return Scope{SiteID: u.DefaultSiteID, StallID: u.DefaultStallID}
	}
}

// Empty reports whether the scope can never match any document.
func (s Scope) Empty() bool {
	return !s.All && len(s.SiteIDs) == 0 && s.SiteID == ""
}

// AllowsSite reports whether documents in the given site are visible.
func (s Scope) AllowsSite(siteID string) bool {
	if s.All {
		return true
	}
	if s.SiteID != "" {
		return s.SiteID == siteID
	}
	for _, id := range s.SiteIDs {
		if id == siteID {
			return true
		}
	}
	return false
}

// Allows reports whether a document scoped to site+stall is visible.
// Stall pinning only applies to staff; managers and admins see every stall
// of their visible sites.
func (s Scope) Allows(siteID, stallID string) bool {
	if !s.AllowsSite(siteID) {
		return false
	}
	if s.StallID != "" && stallID != s.StallID {
		return false
	}
	return true
}
