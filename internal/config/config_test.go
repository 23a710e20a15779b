package config

import "testing"

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "voicedesk", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
		Voice: VoicePlatformConfig{BaseURL: "https://voice.example.com", APIToken: "tok"},
		Payment: PaymentConfig{
			BaseURL:     "https://pay.example.com",
			MerchantID:  "M1",
			MerchantKey: "k",
			KeyIndex:    "1",
		},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "voicedesk"
	c.Auth.JWTAudience = "dashboard"
	c.Voice.WebhookSecret = "whsec"
	c.DB.SSLMode = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_RequiresVoiceAndPaymentSettings(t *testing.T) {
	c := validBase()
	c.Voice.APIToken = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing VOICE_API_TOKEN")
	}

	c = validBase()
	c.Payment.MerchantKey = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing PAYMENT_MERCHANT_KEY")
	}
}

func TestValidate_KeyIndexDefaultsToOne(t *testing.T) {
	c := validBase()
	c.Payment.KeyIndex = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Payment.KeyIndex != "1" {
		t.Fatalf("expected key index default %q, got %q", "1", c.Payment.KeyIndex)
	}
}

func TestValidate_TokenTTLDefaults(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		t.Fatalf("expected TTL defaults, got access=%v refresh=%v", c.Auth.AccessTokenTTL, c.Auth.RefreshTokenTTL)
	}
}

func TestValidate_AppDefaults(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.App.MaxConcurrentCalls != 10 {
		t.Fatalf("expected concurrent call default 10, got %d", c.App.MaxConcurrentCalls)
	}
	if c.App.PendingSignupTTL <= 0 {
		t.Fatalf("expected pending signup TTL default, got %v", c.App.PendingSignupTTL)
	}

	c = validBase()
	c.App.MaxConcurrentCalls = -1
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for negative concurrent call cap")
	}
}
