package panel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSetting(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"valid", "welcome_channel", "123456", false},
		{"empty key", "", "value", true},
		{"blank key", "   ", "value", true},
		{"key too long", strings.Repeat("k", maxSettingKeyLen+1), "value", true},
		{"value too long", "key", strings.Repeat("v", maxSettingValueLen+1), true},
		{"empty value allowed", "key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSetting(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
