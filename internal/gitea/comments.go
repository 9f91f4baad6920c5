package gitea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CommentsClient publishes markdown comments on a pull request (Gitea
// treats PRs as issues for commenting purposes).
type CommentsClient struct {
	Client *Client
	Owner  string
	Repo   string
	Index  int64
}

// Publish posts body as a new comment. Best-effort single attempt.
func (c *CommentsClient) Publish(ctx context.Context, body string) error {
	payload, _ := json.Marshal(map[string]string{"body": body})
	u := fmt.Sprintf("%s/api/v1/repos/%s/%s/issues/%d/comments",
		c.Client.BaseURL, c.Owner, c.Repo, c.Index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	res, err := c.Client.do(req)
	if err != nil {
		return fmt.Errorf("gitea: comment: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("gitea: comment: %s", res.Status)
	}
	return nil
}
