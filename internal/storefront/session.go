package storefront

// AuthMode selects what the credentials form does.
type AuthMode string

const (
	AuthModeLogin    AuthMode = "login"
	AuthModeRegister AuthMode = "register"
)

// DemoToken is handed out when the backend cannot be reached during login.
const DemoToken = "demo-token"

// Session holds the whole client state: cart, credentials and form mode.
type Session struct {
	Cart     *Cart
	Token    string
	Email    string
	AuthMode AuthMode
}

func NewSession() *Session {
	return &Session{Cart: &Cart{}, AuthMode: AuthModeLogin}
}

func (s *Session) SignedIn() bool {
	return s.Token != ""
}

// Demo reports whether the session was opened without a backend.
func (s *Session) Demo() bool {
	return s.Token == DemoToken
}

func (s *Session) ToggleAuthMode() {
	if s.AuthMode == AuthModeLogin {
		s.AuthMode = AuthModeRegister
		return
	}
	s.AuthMode = AuthModeLogin
}

// Logout drops the token and empties the cart.
func (s *Session) Logout() {
	s.Token = ""
	s.Email = ""
	s.Cart.Clear()
}
