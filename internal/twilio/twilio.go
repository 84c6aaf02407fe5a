// Package twilio delivers passenger alerts as SMS and voice calls.
package twilio

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Domenick1991/busalert/config"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrNotConfigured is returned by every send when credentials or the sender
// number are missing. Delivery then fails without reaching the network.
var ErrNotConfigured = errors.New("twilio is not configured")

type messagingAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
	CreateCall(params *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error)
}

type Channel struct {
	api      messagingAPI
	from     string
	voiceURL string
}

func NewChannel(cfg config.TwilioConfig) *Channel {
	c := &Channel{from: cfg.FromNumber, voiceURL: cfg.VoiceURL}
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		return c
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	c.api = client.Api
	return c
}

func (c *Channel) Configured() bool {
	return c.api != nil
}

func (c *Channel) SendText(ctx context.Context, phone, body string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(c.from)
	params.SetBody(body)

	msg, err := c.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms to %s: %w", phone, err)
	}
	if msg != nil && msg.Sid != nil {
		log.Printf("twilio sms queued phone=%s sid=%s", phone, *msg.Sid)
	}
	return nil
}

// PlaceVoiceCall dials phone. With a voice URL configured Twilio fetches the
// call script from it, otherwise body is read out through inline TwiML.
func (c *Channel) PlaceVoiceCall(ctx context.Context, phone, body string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(phone)
	params.SetFrom(c.from)
	if c.voiceURL != "" {
		params.SetUrl(c.voiceURL)
	} else {
		params.SetTwiml(SayTwiML(body))
	}

	call, err := c.api.CreateCall(params)
	if err != nil {
		return fmt.Errorf("place call to %s: %w", phone, err)
	}
	if call != nil && call.Sid != nil {
		log.Printf("twilio call queued phone=%s sid=%s", phone, *call.Sid)
	}
	return nil
}

func SayTwiML(text string) string {
	var b strings.Builder
	b.WriteString("<Response><Say>")
	_ = xml.EscapeText(&b, []byte(text))
	b.WriteString("</Say></Response>")
	return b.String()
}
