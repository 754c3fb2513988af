package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
)

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Bcc      []toRecipient `json:"bcc,omitempty"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// SendEmail sends an HTML email using the ZeptoMail HTTP API. bcc may
// be nil; it is how broadcast blasts keep the recipient list private.
func SendEmail(to string, bcc []string, subject, body string) error {
	apiURL := os.Getenv("ZEPTO_API_URL") // e.g. https://api.zeptomail.com/v1.1/email
	apiKey := os.Getenv("ZEPTO_API_KEY") // e.g. Zoho-enczapikey xxxxx
	from := os.Getenv("EMAIL_FROM")      // e.g. noreply@dopalstech.com

	if apiURL == "" || apiKey == "" || from == "" {
		logrus.Warn("missing ZEPTO_API_URL, ZEPTO_API_KEY, or EMAIL_FROM")
		return fmt.Errorf("missing required email config")
	}

	payload := emailRequest{
		From:     emailAddress{Address: from},
		To:       []toRecipient{{Email: emailWithName{Address: to}}},
		Subject:  subject,
		HtmlBody: body,
	}
	for _, addr := range bcc {
		payload.Bcc = append(payload.Bcc, toRecipient{Email: emailWithName{Address: addr}})
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal email payload")
		return err
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		logrus.WithError(err).Error("failed to create email request")
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", apiKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		logrus.WithError(err).Error("failed to send email")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		logrus.WithField("status", resp.Status).Error("zeptomail returned non-success status")
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}

	logrus.WithFields(logrus.Fields{"to": to, "bcc": len(bcc)}).Info("email sent")
	return nil
}

// SendEmailAsync fires an email in the background. Failures are logged,
// never surfaced to the caller; registration and broadcast flows must
// not block on delivery.
func SendEmailAsync(to string, bcc []string, subject, body string) {
	go func() {
		if err := SendEmail(to, bcc, subject, body); err != nil {
			logrus.WithError(err).WithField("to", to).Warn("background email failed")
		}
	}()
}
