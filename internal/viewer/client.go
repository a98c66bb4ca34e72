package viewer

import (
	"bytes"
	"collaborative-annotation-engine/internal/annotation"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls the annotation API over HTTP. The owner and guest
// constructors only differ in how requests are addressed and authenticated;
// every operation behaves identically after that.
type Client struct {
	baseURL     string
	accessToken string
	inviteToken string
	documentID  uint64
	httpClient  *http.Client
}

// NewOwnerClient addresses the session-authenticated document routes
func NewOwnerClient(baseURL, accessToken string, documentID uint64) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		documentID:  documentID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewGuestClient addresses the invite-token routes
func NewGuestClient(baseURL, inviteToken string) *Client {
	return &Client{
		baseURL:     baseURL,
		inviteToken: inviteToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) annotationsURL() string {
	if c.inviteToken != "" {
		return fmt.Sprintf("%s/invite/%s/annotations", c.baseURL, c.inviteToken)
	}
	return fmt.Sprintf("%s/documents/%d/annotations", c.baseURL, c.documentID)
}

type listEnvelope struct {
	Success     bool                            `json:"success"`
	Annotations []annotation.AnnotationResponse `json:"annotations"`
	Error       string                          `json:"error"`
}

type annotationEnvelope struct {
	Success    bool                           `json:"success"`
	Annotation *annotation.AnnotationResponse `json:"annotation"`
	Error      string                         `json:"error"`
}

type replyEnvelope struct {
	Success bool                      `json:"success"`
	Reply   *annotation.ReplyResponse `json:"reply"`
	Error   string                    `json:"error"`
}

type messageEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, url string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		var envelope messageEnvelope
		if json.Unmarshal(b, &envelope) == nil && envelope.Error != "" {
			return fmt.Errorf("annotation api error: status=%d %s", resp.StatusCode, envelope.Error)
		}
		return fmt.Errorf(
			"annotation api error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) List(ctx context.Context) ([]annotation.AnnotationResponse, error) {
	var envelope listEnvelope
	if err := c.do(ctx, http.MethodGet, c.annotationsURL(), nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Annotations, nil
}

func (c *Client) Create(ctx context.Context, req annotation.CreateAnnotationRequest) (*annotation.AnnotationResponse, error) {
	var envelope annotationEnvelope
	if err := c.do(ctx, http.MethodPost, c.annotationsURL(), req, &envelope); err != nil {
		return nil, err
	}
	return envelope.Annotation, nil
}

func (c *Client) Update(ctx context.Context, req annotation.UpdateAnnotationRequest) (*annotation.AnnotationResponse, error) {
	var envelope annotationEnvelope
	if err := c.do(ctx, http.MethodPut, c.annotationsURL(), req, &envelope); err != nil {
		return nil, err
	}
	return envelope.Annotation, nil
}

func (c *Client) Delete(ctx context.Context, annotationID uint64) error {
	url := fmt.Sprintf("%s?id=%d", c.annotationsURL(), annotationID)
	return c.do(ctx, http.MethodDelete, url, nil, nil)
}

func (c *Client) AddReply(ctx context.Context, annotationID uint64, text string) (*annotation.ReplyResponse, error) {
	var envelope replyEnvelope
	req := annotation.AddReplyRequest{AnnotationID: annotationID, Text: text}
	if err := c.do(ctx, http.MethodPost, c.annotationsURL()+"/replies", req, &envelope); err != nil {
		return nil, err
	}
	return envelope.Reply, nil
}

func (c *Client) UpdateReply(ctx context.Context, annotationID, replyID uint64, text string) (*annotation.ReplyResponse, error) {
	var envelope replyEnvelope
	req := annotation.UpdateReplyRequest{AnnotationID: annotationID, ReplyID: replyID, Text: text}
	if err := c.do(ctx, http.MethodPut, c.annotationsURL()+"/replies", req, &envelope); err != nil {
		return nil, err
	}
	return envelope.Reply, nil
}

func (c *Client) DeleteReply(ctx context.Context, annotationID, replyID uint64) error {
	url := fmt.Sprintf("%s/replies?annotation_id=%d&reply_id=%d", c.annotationsURL(), annotationID, replyID)
	return c.do(ctx, http.MethodDelete, url, nil, nil)
}
