package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultModel = "google/gemini-2.0-flash-001"

// Classifier assesses an e-waste photo and returns a structured toxicity and
// resale-value assessment. Failures propagate unchanged to the caller; there
// is no retry and no silent defaulting of classification data.
type Classifier interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*Assessment, error)
}

const analysisPrompt = `
Identify the e-waste item in this image.
Provide the output in JSON format with these exact keys:
- product_name: Name of the device.
- components: A list of main internal parts (as an array).
- toxicity_level: High, Medium, or Low.
- recyclable: Boolean (true/false).
- harmful_substances: List of chemicals/metals present (as an array).
- resell_value: Estimated resell value in Indian Rupees (INR) as a number. Calculate this as 30-35% of the estimated retail value of the device when it was new. Consider the device type, brand, and condition shown in the image.
- market_estimate_min: Lower bound of the price range in INR.
- market_estimate_max: Upper bound of the price range in INR.

Return ONLY valid JSON, no additional text.
`

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentItem `json:"content"`
}

type contentItem struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// HTTPClient is a Classifier backed by the OpenRouter chat-completions API.
type HTTPClient struct {
	BaseURL  string // default https://openrouter.ai/api/v1
	APIKey   string
	Model    string // default google/gemini-2.0-flash-001
	Referer  string // http-referer header OpenRouter attributes requests to
	Client  *http.Client
}

func (c *HTTPClient) Analyze(ctx context.Context, image []byte, mimeType string) (*Assessment, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("classifier: OPENROUTER_API_KEY is not set")
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("classifier: no image provided")
	}
	// Never mutate the receiver; handlers share one instance across requests.
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = "https://openrouter.ai/api/v1"
	}
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	reqBody, _ := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentItem{
				{Type: "text", Text: analysisPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.Referer != "" {
		req.Header.Set("http-referer", c.Referer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("classifier API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("classifier response decode: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("classifier returned no choices")
	}

	raw, err := extractJSON(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return Normalize(raw)
}

// extractJSON pulls the first {...} object out of the model's reply, which
// may wrap it in markdown fences or prose despite the prompt.
func extractJSON(content string) ([]byte, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("failed to parse classifier response")
	}
	return []byte(content[start : end+1]), nil
}
