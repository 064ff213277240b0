package social

import (
	"context"

	"github.com/go-resty/resty/v2"
)

type facebookPostResponse struct {
	ID    string `json:"id"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// PostFacebook publishes message and link to the account's feed and returns the post id.
func (c *Client) PostFacebook(ctx context.Context, accessToken, message, link string) (string, error) {
	var out facebookPostResponse
	resp, err := c.facebook.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"message":      message,
			"link":         link,
			"access_token": accessToken,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/v18.0/me/feed")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiError("facebook", resp, out.Error.Message)
	}
	return out.ID, nil
}

func apiError(platform string, resp *resty.Response, msg string) error {
	return &APIError{Platform: platform, StatusCode: resp.StatusCode(), Message: msg}
}
