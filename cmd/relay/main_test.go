package main

import (
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"voice-relay/config"
	"voice-relay/internal/infra/keychain"
)

func TestStoreSecret(t *testing.T) {
	keyring.MockInit()

	if err := storeSecret("relay-test", config.AccountBotToken, strings.NewReader("  123:abc  \nignored\n")); err != nil {
		t.Fatalf("storeSecret: %v", err)
	}

	got, err := keychain.Get("relay-test", config.AccountBotToken)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "123:abc" {
		t.Errorf("stored secret: got %q, want 123:abc", got)
	}
}

func TestStoreSecret_Rejects(t *testing.T) {
	keyring.MockInit()

	tests := []struct {
		name    string
		account string
		input   string
		wantErr string
	}{
		{"unknown account", "password", "x\n", "unknown account"},
		{"no input", config.AccountOpenAIKey, "", "no secret"},
		{"blank line", config.AccountOpenAIKey, "   \n", "empty secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storeSecret("relay-test", tt.account, strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
