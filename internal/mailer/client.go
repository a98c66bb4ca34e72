package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the external invitation-delivery service. Delivery
// failures are the caller's problem to swallow; this client just reports
// them.
type Client struct {
	baseURL     string
	frontendURL string
	httpClient  *http.Client
}

func NewClient(baseURL, frontendURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		frontendURL: frontendURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type inviteEmailRequest struct {
	To            string `json:"to"`
	Name          string `json:"name"`
	DocumentTitle string `json:"document_title"`
	Link          string `json:"link"`
}

func (c *Client) SendInvite(ctx context.Context, to, name, documentTitle, token string) error {
	url := fmt.Sprintf("%s/internal/emails/invite", c.baseURL)

	payload := inviteEmailRequest{
		To:            to,
		Name:          name,
		DocumentTitle: documentTitle,
		Link:          fmt.Sprintf("%s/invite/%s", c.frontendURL, token),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"mailer error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	return nil
}
