// internal/model/models.go
package model

// Profile is the public profile of a GitHub user as returned by a lookup.
// Pointer fields are optional upstream and may be absent or null.
type Profile struct {
	Login       string  `json:"login"`
	Name        *string `json:"name"`
	AvatarURL   string  `json:"avatar_url"`
	PublicRepos int     `json:"public_repos"`
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`
	Bio         *string `json:"bio"`
	Email       *string `json:"email"`
	Hireable    *bool   `json:"hireable"`
}

// DisplayName returns the user's name, falling back to the login.
func (p *Profile) DisplayName() string {
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	return p.Login
}

func (p *Profile) HasBio() bool {
	return p.Bio != nil && *p.Bio != ""
}

func (p *Profile) HasEmail() bool {
	return p.Email != nil && *p.Email != ""
}

// IsHireable reports true only for an explicit true; false and absent look the same.
func (p *Profile) IsHireable() bool {
	return p.Hireable != nil && *p.Hireable
}

// Phase is the visible state of a query.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
	PhaseSuccess
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseSuccess:
		return "success"
	default:
		return "idle"
	}
}

// State is a snapshot of a query controller.
//
// Err and Profile hold the payload of the last settled request. They are kept
// while a newer request is in flight and replaced when it settles, but Phase
// never exposes them while Loading is set.
type State struct {
	Identifier string
	Submitted  bool
	Loading    bool
	Err        error
	Profile    *Profile
	Seq        uint64
}

// Phase picks the single visible phase: Loading, then Error, then Success, then Idle.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Err != nil:
		return PhaseError
	case s.Profile != nil:
		return PhaseSuccess
	default:
		return PhaseIdle
	}
}

// ErrorMessage returns the user-visible failure text, or "" outside the Error phase.
func (s State) ErrorMessage() string {
	if s.Phase() != PhaseError {
		return ""
	}
	return s.Err.Error()
}
