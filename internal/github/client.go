// internal/github/client.go
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"

	custom_errors "github-profile-finder/internal/errors"
	"github-profile-finder/internal/model"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com/"

// Client is a wrapper around the go-github client.
// It never authenticates: every lookup is an anonymous GET.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// An empty baseURL keeps go-github's default endpoint; a nil httpClient uses
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	gh := github.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
		}
		gh.BaseURL = u
	}

	return &Client{
		gh:     gh,
		logger: logger,
	}, nil
}

// FetchProfile issues GET users/{identifier} and translates the body to our
// internal model. The identifier is used verbatim, including the empty string;
// only bytes that would stop the URL from parsing are percent-encoded.
//
// Every call reaches the API: go-github's local rate-limit check is bypassed.
// A JSON null body yields a nil profile and no error.
func (c *Client) FetchProfile(ctx context.Context, identifier string) (*model.Profile, error) {
	logger := c.logger.With("identifier", identifier)

	req, err := c.gh.NewRequest(http.MethodGet, "users/"+escapeIdentifier(identifier), nil)
	if err != nil {
		logger.Warn("Failed to build profile request", "error", err)
		return nil, &custom_errors.ErrNetwork{Err: err}
	}
	logger.Debug("Fetching profile", "url", req.URL.String())

	ctx = context.WithValue(ctx, github.BypassRateLimitCheck, true)

	var user *github.User
	resp, err := c.gh.Do(ctx, req, &user)
	if err != nil {
		var accepted *github.AcceptedError
		if errors.As(err, &accepted) {
			// 202 is still a success; decode whatever body came with it.
			return decodeAccepted(accepted.Raw)
		}
		classified := classify(err)
		logger.Warn("Profile lookup failed", "cause", causeOf(classified))
		return nil, classified
	}

	if user == nil {
		logger.Debug("Profile body was empty", "status", resp.StatusCode)
		return nil, nil
	}
	logger.Debug("Profile fetched", "status", resp.StatusCode, "login", user.GetLogin())
	return toInternalProfile(user), nil
}

// escapeIdentifier encodes a lone '%' and ASCII control bytes, which url.Parse
// rejects. Everything else, valid escapes included, is left for the URL parser.
func escapeIdentifier(identifier string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	for i := 0; i < len(identifier); i++ {
		ch := identifier[i]
		switch {
		case ch == '%' && !(i+2 < len(identifier) && isHex(identifier[i+1]) && isHex(identifier[i+2])):
			b.WriteString("%25")
		case ch < 0x20 || ch == 0x7f:
			b.WriteByte('%')
			b.WriteByte(hex[ch>>4])
			b.WriteByte(hex[ch&0x0f])
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func isHex(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

// classify maps go-github and transport errors onto our two failure kinds.
func classify(err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse

	switch {
	case errors.As(err, &rateErr):
		return &custom_errors.ErrHTTPStatus{StatusCode: statusOf(rateErr.Response)}
	case errors.As(err, &abuseErr):
		return &custom_errors.ErrHTTPStatus{StatusCode: statusOf(abuseErr.Response)}
	case errors.As(err, &respErr):
		return &custom_errors.ErrHTTPStatus{StatusCode: statusOf(respErr.Response)}
	default:
		return &custom_errors.ErrNetwork{Err: err}
	}
}

func decodeAccepted(raw []byte) (*model.Profile, error) {
	if len(raw) == 0 {
		return toInternalProfile(&github.User{}), nil
	}
	var user *github.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, &custom_errors.ErrNetwork{Err: err}
	}
	if user == nil {
		return nil, nil
	}
	return toInternalProfile(user), nil
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func causeOf(err error) string {
	var netErr *custom_errors.ErrNetwork
	var statusErr *custom_errors.ErrHTTPStatus
	switch {
	case errors.As(err, &netErr):
		return netErr.Cause()
	case errors.As(err, &statusErr):
		return statusErr.Cause()
	default:
		return err.Error()
	}
}

// toInternalProfile translates a github.User object to our internal model.Profile.
// Optional fields keep their nil-ness so the view can tell absent from empty.
func toInternalProfile(u *github.User) *model.Profile {
	return &model.Profile{
		Login:       u.GetLogin(),
		Name:        u.Name,
		AvatarURL:   u.GetAvatarURL(),
		PublicRepos: u.GetPublicRepos(),
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
		Bio:         u.Bio,
		Email:       u.Email,
		Hireable:    u.Hireable,
	}
}
