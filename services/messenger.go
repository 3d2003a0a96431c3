package services

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

// SendPlatformMessage delivers a text message to a platform identity via the
// messaging channel's send API.
func SendPlatformMessage(ctx context.Context, sendURL, accessToken, recipientID, message string) error {
	url := fmt.Sprintf("%s?access_token=%s", sendURL, accessToken)

	payload := map[string]interface{}{
		"recipient": map[string]string{
			"id": recipientID,
		},
		"message": map[string]string{
			"text": message,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("Failed to send platform message", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("failed to send message: %s", resp.Status)
	}

	return nil
}
