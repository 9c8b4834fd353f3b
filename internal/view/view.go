// internal/view/view.go
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github-profile-finder/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadingRefreshSeconds is how often a Loading page reloads itself to pick up
// the settled result.
const LoadingRefreshSeconds = 1

// Renderer renders a query state as the finder page.
type Renderer struct {
	templates *template.Template
}

// pageData is what the page template sees. Exactly one of the phase blocks is
// rendered, chosen by Phase.
type pageData struct {
	Identifier string
	Phase      string
	Error      string
	Profile    *model.Profile
	Refresh    int
}

// NewRenderer parses the embedded page templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render writes the HTML page for state. Nothing is written to w if the
// template fails.
func (r *Renderer) Render(w io.Writer, state model.State) error {
	data := pageData{
		Identifier: state.Identifier,
		Phase:      state.Phase().String(),
	}
	switch state.Phase() {
	case model.PhaseLoading:
		data.Refresh = LoadingRefreshSeconds
	case model.PhaseError:
		data.Error = state.ErrorMessage()
	case model.PhaseSuccess:
		data.Profile = state.Profile
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "page", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderText writes a plain-text rendering of state, one fragment per line.
// Optional profile fields are omitted entirely when absent.
func RenderText(w io.Writer, state model.State) error {
	var buf bytes.Buffer

	switch state.Phase() {
	case model.PhaseLoading:
		fmt.Fprintln(&buf, "Loading...")
	case model.PhaseError:
		fmt.Fprintf(&buf, "Error: %s\n", state.ErrorMessage())
	case model.PhaseSuccess:
		writeProfileText(&buf, state.Profile)
	default:
		fmt.Fprintln(&buf, "No profile searched. Enter a GitHub username to begin.")
	}

	_, err := buf.WriteTo(w)
	return err
}

func writeProfileText(buf *bytes.Buffer, p *model.Profile) {
	fmt.Fprint(buf, p.DisplayName())
	if p.IsHireable() {
		fmt.Fprint(buf, " [Available for hire]")
	}
	fmt.Fprintf(buf, "\n@%s\n", p.Login)
	fmt.Fprintf(buf, "Avatar: %s\n", p.AvatarURL)
	if p.HasBio() {
		fmt.Fprintf(buf, "Bio: %s\n", *p.Bio)
	}
	if p.HasEmail() {
		fmt.Fprintf(buf, "Email: mailto:%s\n", *p.Email)
	}
	fmt.Fprintf(buf, "Repositories: %d\n", p.PublicRepos)
	fmt.Fprintf(buf, "Followers: %d\n", p.Followers)
	fmt.Fprintf(buf, "Following: %d\n", p.Following)
}
