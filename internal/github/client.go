package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"ciboard/internal/config"
)

// NewClient builds an authenticated GitHub client from the configured
// credentials. A static token is preferred; otherwise the App installation
// triple is used. The caller is expected to have validated that at least one
// credential mode is present.
func NewClient(ctx context.Context, auth config.AuthConfig) (*gh.Client, error) {
	if auth.HasToken() {
		slog.Info("github: authenticating with static token")
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: auth.Token})
		return gh.NewClient(oauth2.NewClient(ctx, ts)), nil
	}

	if !auth.HasApp() {
		return nil, fmt.Errorf("no credentials configured")
	}

	slog.Info("github: authenticating as app installation",
		"app_id", auth.AppID, "installation_id", auth.AppInstallationID)
	itr, err := ghinstallation.New(http.DefaultTransport,
		auth.AppID, auth.AppInstallationID, []byte(auth.AppPrivateKey))
	if err != nil {
		return nil, fmt.Errorf("building installation transport: %w", err)
	}
	return gh.NewClient(&http.Client{Transport: itr}), nil
}
