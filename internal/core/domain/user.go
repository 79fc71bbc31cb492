package domain

// GuestID is the sentinel identity used when bootstrap cannot establish a
// real user.
const GuestID int64 = 0

// User models the single live identity in the process. Identity fields are
// immutable once bootstrapped; Balance and Referrals change only via an
// authority refresh.
type User struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Balance      float64 `json:"balance"`
	Referrals    int     `json:"referrals"`
	ReferralLink string  `json:"referral_link"`
	IsAdmin      bool    `json:"is_admin"`
}

// Guest returns the degraded fallback identity.
func Guest() User {
	return User{ID: GuestID, Username: "guest"}
}
