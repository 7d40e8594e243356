package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	cfg := &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/tmp/inkwell"},
		Server: ServerConfig{Port: "8080", ReadTimeout: 15 * time.Second},
		Pricing: PricingConfig{
			GSTPercent:           18,
			GiftCardExpiryDays:   365,
			FeeBound:             51,
			DiscountPercentBound: 16,
			DiscountCap:          100,
		},
	}

	require.NoError(t, cfg.Validate())
}

func TestValidate_InvalidEnvironment(t *testing.T) {
	cfg := &Config{
		App:    AppConfig{Environment: "testing"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/tmp/inkwell"},
		Pricing: PricingConfig{
			GSTPercent:         18,
			GiftCardExpiryDays: 365,
			FeeBound:           51,
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment")
}

func TestValidate_GSTRange(t *testing.T) {
	cfg := &Config{
		App:    AppConfig{Environment: "production"},
		Logger: LoggerConfig{Level: "warn"},
		Data:   DataConfig{BasePath: "/tmp/inkwell"},
		Pricing: PricingConfig{
			GSTPercent:         180,
			GiftCardExpiryDays: 365,
			FeeBound:           51,
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GST percent")
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("INKWELL_TEST_KEY", "from-env")

	// Flag beats env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "INKWELL_TEST_KEY", "default"))
	// Env beats default.
	assert.Equal(t, "from-env", getConfigValue("", "INKWELL_TEST_KEY", "default"))
	// Default when nothing else is set.
	assert.Equal(t, "default", getConfigValue("", "INKWELL_TEST_KEY_UNSET", "default"))
}

func TestGetFloatConfigValue(t *testing.T) {
	t.Setenv("INKWELL_TEST_GST", "12.5")

	assert.InDelta(t, 12.5, getFloatConfigValue("", "INKWELL_TEST_GST", 18), 1e-9)
	assert.InDelta(t, 18, getFloatConfigValue("", "INKWELL_TEST_GST_UNSET", 18), 1e-9)

	t.Setenv("INKWELL_TEST_GST_BAD", "not-a-number")
	assert.InDelta(t, 18, getFloatConfigValue("", "INKWELL_TEST_GST_BAD", 18), 1e-9)
}
