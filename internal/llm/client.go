package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/h-lu/gitea-autograde/internal/grading"
)

// Client talks to an OpenAI-compatible chat-completions endpoint and
// implements grading.Oracle. Calls are single-attempt: callers treat
// any failure as a recoverable "needs review" outcome.
type Client struct {
	HTTP  *http.Client
	URL   string
	Key   string
	Model string
}

// New builds a client with a short connect timeout and a longer overall
// deadline, matching the expected latency profile of a scoring model.
func New(url, key, model string) *Client {
	return &Client{
		HTTP: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			},
		},
		URL:   url,
		Key:   key,
		Model: model,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float64       `json:"temperature"`
	TopP           float64       `json:"top_p"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat formatSpec    `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Judge sends the prompt at temperature 0 and decodes the JSON body the
// model returns as a Judgment.
func (c *Client) Judge(ctx context.Context, prompt string) (grading.Judgment, error) {
	body, _ := json.Marshal(chatRequest{
		Model:          c.Model,
		Temperature:    0,
		TopP:           1,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: formatSpec{Type: "json_object"},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return grading.Judgment{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return grading.Judgment{}, fmt.Errorf("oracle request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return grading.Judgment{}, fmt.Errorf("oracle request: %s", res.Status)
	}

	var cr chatResponse
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return grading.Judgment{}, fmt.Errorf("oracle response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return grading.Judgment{}, fmt.Errorf("oracle response: no choices")
	}
	var j grading.Judgment
	if err := json.Unmarshal([]byte(cr.Choices[0].Message.Content), &j); err != nil {
		return grading.Judgment{}, fmt.Errorf("oracle judgment: %w", err)
	}
	return j, nil
}
