package gitea

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a Gitea server's REST API with a static token.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
}

func New(baseURL, token string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Token:   token,
	}
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "token "+c.Token)
	req.Header.Set("Content-Type", "application/json")
	return c.HTTP.Do(req)
}

// contentsURL builds {base}/api/v1/repos/{owner}/{repo}/contents/{path}.
func (c *Client) contentsURL(owner, repo, path string) string {
	return fmt.Sprintf("%s/api/v1/repos/%s/%s/contents/%s", c.BaseURL, owner, repo, path)
}

// ContentsStore exposes one repository's contents API as a RecordStore.
type ContentsStore struct {
	Client *Client
	Owner  string
	Repo   string
	Branch string
}

// NewContentsStore parses metadataRepo in "owner/repo" form.
func NewContentsStore(client *Client, metadataRepo, branch string) (*ContentsStore, error) {
	owner, repo, ok := strings.Cut(metadataRepo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("gitea: invalid metadata repo %q, want owner/repo", metadataRepo)
	}
	if branch == "" {
		branch = "main"
	}
	return &ContentsStore{Client: client, Owner: owner, Repo: repo, Branch: branch}, nil
}

type contentsItem struct {
	Type    string `json:"type"` // file|dir
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Put creates the file at path on the configured branch. The store is
// append-only: re-writing an existing path is a server-side conflict,
// surfaced as an error.
func (s *ContentsStore) Put(ctx context.Context, path string, data []byte, message string) error {
	body, _ := json.Marshal(map[string]string{
		"content": base64.StdEncoding.EncodeToString(data),
		"message": message,
		"branch":  s.Branch,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.Client.contentsURL(s.Owner, s.Repo, path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	res, err := s.Client.do(req)
	if err != nil {
		return fmt.Errorf("gitea: put %s: %w", path, err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("gitea: put %s: %s", path, res.Status)
	}
	return nil
}

// List walks prefix depth-first, one request per directory, keeping the
// server's file order within each directory. A 404 on the prefix means
// no records yet.
func (s *ContentsStore) List(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	if err := s.listDir(ctx, prefix, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ContentsStore) listDir(ctx context.Context, dir string, out *[]string) error {
	items, status, err := s.fetchContents(ctx, dir)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return nil
	}
	for _, it := range items {
		switch {
		case it.Type == "dir":
			if err := s.listDir(ctx, it.Path, out); err != nil {
				return err
			}
		case it.Type == "file" && strings.HasSuffix(it.Path, ".json"):
			*out = append(*out, it.Path)
		}
	}
	return nil
}

// Get fetches one file and decodes its base64 content. Gitea may embed
// newlines in the encoded payload.
func (s *ContentsStore) Get(ctx context.Context, path string) ([]byte, error) {
	items, status, err := s.fetchContents(ctx, path)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("gitea: %s not found", path)
	}
	if len(items) != 1 || items[0].Type != "file" {
		return nil, fmt.Errorf("gitea: %s is not a file", path)
	}
	encoded := strings.ReplaceAll(items[0].Content, "\n", "")
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("gitea: decode %s: %w", path, err)
	}
	return data, nil
}

// fetchContents GETs a contents path, normalizing the API's habit of
// returning a bare object for files and an array for directories.
func (s *ContentsStore) fetchContents(ctx context.Context, path string) ([]contentsItem, int, error) {
	u := s.Client.contentsURL(s.Owner, s.Repo, path) + "?ref=" + url.QueryEscape(s.Branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	res, err := s.Client.do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("gitea: get %s: %w", path, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, http.StatusNotFound, nil
	}
	if res.StatusCode/100 != 2 {
		return nil, res.StatusCode, fmt.Errorf("gitea: get %s: %s", path, res.Status)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, res.StatusCode, fmt.Errorf("gitea: get %s: %w", path, err)
	}
	if len(raw) > 0 && raw[0] == '[' {
		var items []contentsItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, res.StatusCode, err
		}
		return items, res.StatusCode, nil
	}
	var item contentsItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, res.StatusCode, err
	}
	return []contentsItem{item}, res.StatusCode, nil
}
