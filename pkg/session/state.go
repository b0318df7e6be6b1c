package session

type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	// Expired is an instantaneous intermediate between Authenticated and
	// Unauthenticated. It exists so observers can tell a lost session apart
	// from never having signed in.
	Expired
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}
