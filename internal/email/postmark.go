package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

type Client struct {
	serverToken string
	fromEmail   string
	baseURL     string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(serverToken, fromEmail, baseURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		baseURL:     baseURL,
		apiURL:      defaultAPIURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendWelcome sends the post-registration welcome email.
func (c *Client) SendWelcome(toEmail, name string) error {
	if name == "" {
		name = "there"
	}
	textBody := fmt.Sprintf(
		"Hi %s,\n\nYour MintKit Hub account is ready. Set up your storefront and start your free trial here:\n\n%s/dashboard\n",
		name, c.baseURL,
	)
	htmlBody := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your MintKit Hub account is ready. <a href="%s/dashboard">Set up your storefront</a> and start your free trial.</p>`,
		name, c.baseURL,
	)
	return c.send(toEmail, "Welcome to MintKit Hub", htmlBody, textBody)
}

// SendSubscriptionConfirmed sends the payment confirmation email.
func (c *Client) SendSubscriptionConfirmed(toEmail, planName string) error {
	textBody := fmt.Sprintf(
		"Subscription active: %s\n\nThanks for subscribing to MintKit.\nStudio access has been unlocked on your dashboard:\n\n%s/dashboard\n",
		planName, c.baseURL,
	)
	htmlBody := fmt.Sprintf(
		`<p>Subscription active: <strong>%s</strong></p><p>Thanks for subscribing to MintKit. Studio access has been unlocked on <a href="%s/dashboard">your dashboard</a>.</p>`,
		planName, c.baseURL,
	)
	return c.send(toEmail, "MintKit subscription confirmed", htmlBody, textBody)
}

// SendCardReceived notifies a recipient that a card link was created for them.
func (c *Client) SendCardReceived(toEmail, viewerURL string) error {
	textBody := fmt.Sprintf("You've received a card. View it here:\n\n%s\n", viewerURL)
	htmlBody := fmt.Sprintf(`<p>You've received a card. <a href="%s">View it here</a>.</p>`, viewerURL)
	return c.send(toEmail, "You've received a card", htmlBody, textBody)
}

func (c *Client) send(toEmail, subject, htmlBody, textBody string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
