// Package policy holds the authorization guards applied before mutating or
// sensitive operations. Guards are pure functions of the active session; a nil
// session means the caller is not logged in.
package policy

import (
	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/session"
)

func RequireLogin(s *session.Session) error {
	if s == nil {
		return apperror.Unauthenticated()
	}
	return nil
}

// RequireRole passes when the session's role satisfies role. Admin satisfies anything.
func RequireRole(s *session.Session, role models.Role) error {
	if err := RequireLogin(s); err != nil {
		return err
	}
	if !s.User.Role.Satisfies(role) {
		return apperror.Forbidden(string(role) + " access required")
	}
	return nil
}

func RequireOwnerOrAdmin(s *session.Session, ownerID uint64) error {
	if err := RequireLogin(s); err != nil {
		return err
	}
	if !IsAdmin(s) && s.User.ID != ownerID {
		return apperror.Forbidden("not the owner of this resource")
	}
	return nil
}

// RequireParticipantOrAdmin passes when the caller is any of participants or an admin.
func RequireParticipantOrAdmin(s *session.Session, participants ...uint64) error {
	if err := RequireLogin(s); err != nil {
		return err
	}
	if IsAdmin(s) {
		return nil
	}
	for _, id := range participants {
		if s.User.ID == id {
			return nil
		}
	}
	return apperror.Forbidden("not a participant of this resource")
}

// IsAdmin reports whether s belongs to an admin. A nil session is never admin.
func IsAdmin(s *session.Session) bool {
	return s != nil && s.User.Role == models.RoleAdmin
}
