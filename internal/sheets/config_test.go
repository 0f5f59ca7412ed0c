package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comexar/despacho/internal/model"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "service account",
			config: Config{ServiceAccountPath: "/tmp/key.json", RetryAttempts: 3, RetryDelay: time.Second},
		},
		{
			name:   "oauth",
			config: Config{ClientID: "id", ClientSecret: "secret", RefreshToken: "token"},
		},
		{
			name:    "no auth",
			config:  Config{},
			wantErr: true,
		},
		{
			name: "both auth methods",
			config: Config{
				ServiceAccountPath: "/tmp/key.json",
				ClientID:           "id", ClientSecret: "secret", RefreshToken: "token",
			},
			wantErr: true,
		},
		{
			name:    "negative retries",
			config:  Config{ServiceAccountPath: "/tmp/key.json", RetryAttempts: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPrepareReportData(t *testing.T) {
	w := &Writer{config: DefaultConfig()}

	rows := w.prepareReportData([]model.Classification{
		{
			ClassifiedAt:         time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Input:                "Smart TV",
			Code:                 "8528.72.00 100W",
			Source:               model.SourceExactDBMatch,
			Confidence:           model.ConfidenceHigh,
			Interventions:        []string{"INTI-CIE"},
			Duty:                 model.DutyTreatment{DutyRate: 20},
			RequiresManualReview: true,
		},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "Fecha", rows[0][0])
	assert.Equal(t, "8528.72.00 100W", rows[1][2])
	assert.Equal(t, "SI", rows[1][10])
}
