package session

// Session represents the authenticated identity of the portal operator.
// The token is the opaque bearer credential issued by the backend; the county
// binding is fixed for regular county users and absent for super-admins.
type Session struct {
	Token       string `json:"token"`
	IsSuperUser bool   `json:"is_super_user"`
	CountyID    string `json:"county_id,omitempty"`
	CountyName  string `json:"county_name,omitempty"`
}

// Valid returns whether the session carries a usable bearer token.
// A session without one is treated as "logged out".
func (session *Session) Valid() bool {
	return session != nil && session.Token != ""
}

// Copy returns a value copy of the session so that callers only ever observe snapshots
func (session *Session) Copy() *Session {
	if session == nil {
		return nil
	}
	copied := *session
	return &copied
}
