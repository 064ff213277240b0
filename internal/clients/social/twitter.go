package social

import "context"

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	Detail string `json:"detail"`
}

// PostTweet creates a tweet with the v2 API and returns its id.
func (c *Client) PostTweet(ctx context.Context, accessToken, text string) (string, error) {
	var out tweetResponse
	resp, err := c.twitter.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(map[string]string{"text": text}).
		SetResult(&out).
		SetError(&out).
		Post("/2/tweets")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiError("twitter", resp, out.Detail)
	}
	return out.Data.ID, nil
}
