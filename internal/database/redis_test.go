package database

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitRedis_Unreachable(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("redis.host", "127.0.0.1")
	viper.Set("redis.port", "1")

	core, logs := observer.New(zapcore.InfoLevel)

	assert.Nil(t, InitRedis(zap.New(core)))

	warnings := logs.FilterMessage("redis connection failed, continuing without redis").All()
	if assert.Len(t, warnings, 1) {
		assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)
		assert.Equal(t, "127.0.0.1:1", warnings[0].ContextMap()["addr"])
	}
}
