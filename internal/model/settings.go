package model

import "strings"

type ConnectionSettings struct {
	APIURL string `json:"apiUrl"`
	APIKey string `json:"apiKey"`
}

func (s ConnectionSettings) Trimmed() ConnectionSettings {
	return ConnectionSettings{
		APIURL: strings.TrimSpace(s.APIURL),
		APIKey: strings.TrimSpace(s.APIKey),
	}
}

func (s ConnectionSettings) Complete() bool {
	return s.APIURL != "" && s.APIKey != ""
}

type CharacterProfile struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

func (c CharacterProfile) Trimmed() CharacterProfile {
	return CharacterProfile{
		Name:   strings.TrimSpace(c.Name),
		Prompt: strings.TrimSpace(c.Prompt),
	}
}
