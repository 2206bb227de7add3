package drive

import (
	"fmt"
	"time"

	"github.com/coder7564-glitch/Learning-Hub/backend/config"
	"github.com/go-resty/resty/v2"
)

// Client talks to the Google OAuth token endpoint and the Drive file API on
// behalf of a user whose tokens we store.
type Client struct {
	http *resty.Client
	cfg  *config.Config
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http: resty.New().SetTimeout(15 * time.Second),
		cfg:  cfg,
	}
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	IDToken      string `json:"id_token"`
}

// ExchangeCode swaps an OAuth authorization code for tokens.
func (c *Client) ExchangeCode(code, redirectURI string) (*TokenResponse, error) {
	var token TokenResponse
	resp, err := c.http.R().
		SetFormData(map[string]string{
			"code":          code,
			"client_id":     c.cfg.GoogleClientID,
			"client_secret": c.cfg.GoogleClientSecret,
			"redirect_uri":  redirectURI,
			"grant_type":    "authorization_code",
		}).
		SetResult(&token).
		Post(c.cfg.GoogleTokenURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("token exchange failed: %s", resp.Status())
	}
	return &token, nil
}

// RefreshToken obtains a fresh access token from a stored refresh token.
func (c *Client) RefreshToken(refreshToken string) (*TokenResponse, error) {
	var token TokenResponse
	resp, err := c.http.R().
		SetFormData(map[string]string{
			"refresh_token": refreshToken,
			"client_id":     c.cfg.GoogleClientID,
			"client_secret": c.cfg.GoogleClientSecret,
			"grant_type":    "refresh_token",
		}).
		SetResult(&token).
		Post(c.cfg.GoogleTokenURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("token refresh failed: %s", resp.Status())
	}
	return &token, nil
}

type UserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// UserInfo fetches the profile of the token's owner.
func (c *Client) UserInfo(accessToken string) (*UserInfo, error) {
	var info UserInfo
	resp, err := c.http.R().
		SetAuthToken(accessToken).
		SetResult(&info).
		Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("userinfo request failed: %s", resp.Status())
	}
	return &info, nil
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	Size         string `json:"size"`
	ThumbnailURL string `json:"thumbnailLink"`
	WebViewLink  string `json:"webViewLink"`
}

type FileList struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken"`
}

type ListOptions struct {
	FolderID  string
	FileType  string // video, document or empty for everything
	PageSize  int
	PageToken string
}

// ListFiles proxies a Drive file listing with the user's access token.
func (c *Client) ListFiles(accessToken string, opts ListOptions) (*FileList, error) {
	query := "trashed = false"
	switch opts.FileType {
	case "video":
		query += " and mimeType contains 'video/'"
	case "document":
		query += " and mimeType contains 'application/'"
	}
	if opts.FolderID != "" {
		query += fmt.Sprintf(" and '%s' in parents", opts.FolderID)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}

	req := c.http.R().
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"q":        query,
			"pageSize": fmt.Sprintf("%d", pageSize),
			"fields":   "nextPageToken, files(id, name, mimeType, size, thumbnailLink, webViewLink)",
		})
	if opts.PageToken != "" {
		req.SetQueryParam("pageToken", opts.PageToken)
	}

	var list FileList
	resp, err := req.SetResult(&list).Get(c.cfg.DriveAPIBaseURL + "/files")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("drive listing failed: %s", resp.Status())
	}
	return &list, nil
}
