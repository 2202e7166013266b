package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VoiceResponse is the provider's reply to a call initiation.
type VoiceResponse struct {
	ErrorMessage string `json:"errorMessage"`
	Entries      []struct {
		PhoneNumber string `json:"phoneNumber"`
		Status      string `json:"status"`
		SessionID   string `json:"sessionId"`
	} `json:"entries"`

	// SessionID identifies the call for callback lookups; set only for
	// calls that stage text-to-speech or audio playback instructions.
	SessionID string `json:"session_id,omitempty"`

	// XMLResponse is the call instruction document the callback server
	// will serve, included for reference.
	XMLResponse string `json:"xml_response,omitempty"`

	// AudioURLToPlay echoes the staged audio URL for play-audio calls.
	AudioURLToPlay string `json:"audio_url_to_play,omitempty"`
}

// MakeVoiceCall initiates a plain voice call between two numbers.
func (c *Client) MakeVoiceCall(ctx context.Context, fromNumber, toNumber string) (*VoiceResponse, error) {
	c.logger.Info("making voice call",
		zap.String("to_number", maskPhone(toNumber)),
		zap.String("from_number", maskPhone(fromNumber)),
	)
	return c.call(ctx, fromNumber, toNumber)
}

// MakeVoiceCallWithText initiates a call that reads message aloud with
// the given voice ("man" or "woman"). The message is staged on the voice
// callback server keyed by session ID before the call is placed; staging
// failures are logged but don't abort the call.
func (c *Client) MakeVoiceCallWithText(ctx context.Context, fromNumber, toNumber, message, voiceType string) (*VoiceResponse, error) {
	sessionID := uuid.NewString()

	err := c.postJSON(ctx, c.cfg.VoiceCallbackURL+"/voice/store", map[string]string{
		"session_id": sessionID,
		"to_number":  toNumber,
		"message":    message,
		"voice_type": voiceType,
	}, nil)
	if err != nil {
		c.logger.Warn("could not stage message on voice callback server", zap.Error(err))
	}

	c.logger.Info("making voice call with text",
		zap.String("to_number", maskPhone(toNumber)),
		zap.String("from_number", maskPhone(fromNumber)),
		zap.String("session_id", sessionID),
		zap.String("voice_type", voiceType),
	)

	resp, err := c.call(ctx, fromNumber, toNumber)
	if err != nil {
		return nil, err
	}
	resp.SessionID = sessionID
	resp.XMLResponse = fmt.Sprintf(
		"<?xml version=\"1.0\"?>\n<Response>\n    <Say voice=%q>%s</Say>\n</Response>",
		voiceType, message)
	return resp, nil
}

// MakeVoiceCallAndPlayAudio initiates a call that plays the audio file at
// audioURL. The URL is staged on the voice callback server so it can
// serve a <Play> instruction document when the provider asks for call
// instructions.
func (c *Client) MakeVoiceCallAndPlayAudio(ctx context.Context, fromNumber, toNumber, audioURL string) (*VoiceResponse, error) {
	sessionID := uuid.NewString()

	err := c.postJSON(ctx, c.cfg.VoiceCallbackURL+"/voice/store_play_info", map[string]string{
		"session_id": sessionID,
		"audio_url":  audioURL,
	}, nil)
	if err != nil {
		c.logger.Warn("could not stage audio URL on voice callback server", zap.Error(err))
	}

	c.logger.Info("making voice call with audio",
		zap.String("to_number", maskPhone(toNumber)),
		zap.String("from_number", maskPhone(fromNumber)),
		zap.String("session_id", sessionID),
		zap.String("audio_url", audioURL),
	)

	resp, err := c.call(ctx, fromNumber, toNumber)
	if err != nil {
		return nil, err
	}
	resp.SessionID = sessionID
	resp.AudioURLToPlay = audioURL
	return resp, nil
}

func (c *Client) call(ctx context.Context, fromNumber, toNumber string) (*VoiceResponse, error) {
	form := url.Values{}
	form.Set("username", c.cfg.Username)
	form.Set("from", fromNumber)
	form.Set("to", toNumber)

	var out VoiceResponse
	if err := c.postForm(ctx, c.voiceHost+"/call", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
