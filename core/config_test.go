package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Redis(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		address string
		want    string
	}{
		{name: "empty address", address: "", want: ""},
		{name: "address set", address: "redis:6379", want: "redis:6379"},
		{name: "TEST env", env: "TEST", address: "cache:6379", want: "cache:6379"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			prefix := "DEV"
			if tt.env != "" {
				prefix = tt.env
			}
			t.Setenv(prefix+"_REDIS_ADDRESS", tt.address)

			conf := NewConfig()
			assert.Equal(t, tt.want, conf.Redis.Address)
			assert.Equal(t, 24*time.Hour, conf.Redis.DraftTTL)
		})
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "")

	conf := NewConfig()
	assert.Equal(t, "DEV", conf.Env)
	assert.True(t, conf.Debug)
	assert.False(t, conf.TestMode)
	assert.Equal(t, "Academia", conf.AppName)
	assert.Equal(t, 5432, conf.Database.Port)
	assert.Equal(t, "localhost:5432", conf.Database.Address())
	assert.Equal(t, 10, conf.Schedule.DefaultInstallments)
}
