// Package whatsapp sends template messages through the WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultBaseURL  = "https://graph.facebook.com/v18.0"
	defaultLanguage = "en"

	HotLeadTemplate = "hot_lead_alert"
)

type Config struct {
	AccessToken string
	PhoneID     string
	BaseURL     string
	Language    string
}

type Client struct {
	accessToken string
	phoneID     string
	baseURL     string
	language    string
	http        *http.Client
}

// NewClient returns nil unless both the token and the phone id are set.
func NewClient(cfg Config) *Client {
	if cfg.AccessToken == "" || cfg.PhoneID == "" {
		return nil
	}
	c := &Client{
		accessToken: cfg.AccessToken,
		phoneID:     cfg.PhoneID,
		baseURL:     cfg.BaseURL,
		language:    cfg.Language,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.language == "" {
		c.language = defaultLanguage
	}
	return c
}

// SendHotLeadAlert pings the dealer with the buyer and vehicle names.
func (c *Client) SendHotLeadAlert(ctx context.Context, phone, buyer, vehicle string) error {
	return c.SendMessage(ctx, SendMessageInput{
		PhoneNumber:  phone,
		TemplateName: HotLeadTemplate,
		Parameters:   []string{buyer, vehicle},
	})
}

func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                input.PhoneNumber,
		"type":              "template",
		"template": map[string]any{
			"name":     input.TemplateName,
			"language": map[string]string{"code": c.language},
			"components": []map[string]any{
				{
					"type":       "body",
					"parameters": convertParametersToAPI(input.Parameters),
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var result SendMessageResponse
	_ = json.Unmarshal(respBody, &result)
	if result.Error != nil {
		return fmt.Errorf("whatsapp api: %s (code %d)", result.Error.Message, result.Error.Code)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("whatsapp api status %d", resp.StatusCode)
	}

	slog.DebugContext(ctx, "whatsapp message sent", "template", input.TemplateName)
	return nil
}

func convertParametersToAPI(params []string) []map[string]string {
	result := make([]map[string]string, 0, len(params))
	for _, param := range params {
		result = append(result, map[string]string{
			"type": "text",
			"text": param,
		})
	}
	return result
}
