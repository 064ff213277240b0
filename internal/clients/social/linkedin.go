package social

import "context"

type LinkedInArticle struct {
	AuthorID    string
	Commentary  string
	URL         string
	Title       string
	Description string
}

type linkedInError struct {
	Message string `json:"message"`
}

type text struct {
	Text string `json:"text"`
}

func (a LinkedInArticle) payload() map[string]any {
	return map[string]any{
		"author":         "urn:li:person:" + a.AuthorID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    text{Text: a.Commentary},
				"shareMediaCategory": "ARTICLE",
				"media": []map[string]any{{
					"status":      "READY",
					"originalUrl": a.URL,
					"title":       text{Text: a.Title},
					"description": text{Text: a.Description},
				}},
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
}

// PostLinkedIn shares an article as a UGC post. LinkedIn returns the new
// post urn in the x-restli-id header rather than the body.
func (c *Client) PostLinkedIn(ctx context.Context, accessToken string, a LinkedInArticle) (string, error) {
	var errBody linkedInError
	resp, err := c.linkedin.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("X-Restli-Protocol-Version", "2.0.0").
		SetBody(a.payload()).
		SetError(&errBody).
		Post("/v2/ugcPosts")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiError("linkedin", resp, errBody.Message)
	}
	return resp.Header().Get("X-Restli-Id"), nil
}
