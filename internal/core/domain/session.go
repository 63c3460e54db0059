package domain

// Session is the server-side state behind an opaque cookie token.
type Session struct {
	Token     string `json:"-"`
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	Admin     bool   `json:"admin"`
}

// Caller converts the session into the identity descriptor services accept.
func (s Session) Caller() Caller {
	return Caller{AccountID: s.AccountID, Username: s.Username, Admin: s.Admin}
}
