package config

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMarshalJSON_MasksSecrets(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.WeatherAPIKey = "owm-secret-key"
	cfg.MapsAPIKey = "gmaps-secret-key"
	cfg.AlphaVantageKey = "av-secret-key"

	b, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	out := string(b)
	for _, secret := range []string{"owm-secret-key", "gmaps-secret-key", "av-secret-key"} {
		if strings.Contains(out, secret) {
			t.Errorf("marshaled config leaks secret %q: %s", secret, out)
		}
	}
	if !strings.Contains(out, `"weather_api_key":"***"`) {
		t.Errorf("expected masked weather key, got: %s", out)
	}
}

func TestMarshalJSON_EmptySecretsStayEmpty(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(validConfig())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(b), `"weather_api_key":""`) {
		t.Errorf("empty secret should not be masked, got: %s", b)
	}
}

func TestMaskSecret(t *testing.T) {
	t.Parallel()

	if got := maskSecret(""); got != "" {
		t.Errorf("maskSecret(\"\") = %q, want empty", got)
	}
	if got := maskSecret("abcd1234"); got != "***" {
		t.Errorf("maskSecret() = %q, want ***", got)
	}
}
