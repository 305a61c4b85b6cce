package logx

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pangan/internal/config"
)

func TestInitLevels(t *testing.T) {
	tests := []struct {
		name string
		opts LoggerOpts
		want zerolog.Level
	}{
		{"development defaults to debug", LoggerOpts{Environment: config.Development}, zerolog.DebugLevel},
		{"production defaults to info", LoggerOpts{Environment: config.Production}, zerolog.InfoLevel},
		{"explicit level wins", LoggerOpts{Environment: config.Production, Level: "warn"}, zerolog.WarnLevel},
		{"bad level ignored", LoggerOpts{Environment: config.Development, Level: "loud"}, zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.opts)
			if got := log.Logger.GetLevel(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
