package twilio

import (
	"encoding/xml"
	"strings"
	"unicode"
)

type twimlResponse struct {
	XMLName xml.Name   `xml:"Response"`
	Dial    *twimlDial `xml:"Dial,omitempty"`
	Say     string     `xml:"Say,omitempty"`
}

type twimlDial struct {
	CallerID string `xml:"callerId,attr,omitempty"`
	Number   string `xml:",chardata"`
}

// VoiceResponse renders TwiML that dials to from the configured caller ID.
// All whitespace is removed from to.
func (c *Client) VoiceResponse(to string) (string, error) {
	return render(twimlResponse{Dial: &twimlDial{CallerID: c.phoneNumber, Number: CleanNumber(to)}})
}

// SayResponse renders TwiML that speaks message and hangs up.
func SayResponse(message string) (string, error) {
	return render(twimlResponse{Say: message})
}

// CleanNumber removes every whitespace character.
func CleanNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, number)
}

func render(resp twimlResponse) (string, error) {
	out, err := xml.Marshal(resp)
	if err != nil {
		return "", err
	}
	return xml.Header + string(out), nil
}
