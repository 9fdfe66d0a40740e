package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadLedgerConfig_Defaults(t *testing.T) {
	t.Setenv("TRANSFER_TIMEOUT", "")
	t.Setenv("SEARCH_RESULT_LIMIT", "")
	t.Setenv("IDEMPOTENCY_TTL", "")

	cfg := LoadLedgerConfig()
	assert.Equal(t, 5*time.Second, cfg.TransferTimeout)
	assert.Equal(t, 100, cfg.SearchResultLimit)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func TestLoadLedgerConfig_Overrides(t *testing.T) {
	t.Setenv("TRANSFER_TIMEOUT", "750ms")
	t.Setenv("SEARCH_RESULT_LIMIT", "25")
	t.Setenv("PORT", "9090")

	cfg := LoadLedgerConfig()
	assert.Equal(t, 750*time.Millisecond, cfg.TransferTimeout)
	assert.Equal(t, 25, cfg.SearchResultLimit)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoadLedgerConfig_IgnoresGarbage(t *testing.T) {
	t.Setenv("TRANSFER_TIMEOUT", "soon")
	t.Setenv("SEARCH_RESULT_LIMIT", "-3")

	cfg := LoadLedgerConfig()
	assert.Equal(t, 5*time.Second, cfg.TransferTimeout)
	assert.Equal(t, 100, cfg.SearchResultLimit)
}
