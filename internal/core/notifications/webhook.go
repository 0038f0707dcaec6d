// Package notifications delivers best-effort webhooks about reconciled
// payments. Delivery failures are the caller's problem to retry; nothing
// here ever blocks or fails a payment state transition.
package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SendWebhook sends the JSON payload to the configured notification URL.
func SendWebhook(url string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "GuriHub-Payments-Webhook/1.0")

	// Bounded timeout so a slow receiver cannot stall the worker
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return fmt.Errorf("notification receiver returned status %d", resp.StatusCode)
}
