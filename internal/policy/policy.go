// Package policy holds the authorization rules for ledger operations.
// The functions are pure: callers load whatever records they need first.
package policy

import "github.com/Domenick1991/flightbooking/internal/domain"

// CanBook reports whether p may reserve a seat.
func CanBook(p domain.Principal) bool {
	return p.Authenticated()
}

// CanMutateFlight reports whether p may create or delete flights.
func CanMutateFlight(p domain.Principal) bool {
	return p.Authenticated() && p.IsAdmin()
}

// CanCancelBooking reports whether p owns b or is an administrator.
func CanCancelBooking(p domain.Principal, b *domain.Booking) bool {
	if !p.Authenticated() || b == nil {
		return false
	}
	return p.UserID == b.UserID || p.IsAdmin()
}
