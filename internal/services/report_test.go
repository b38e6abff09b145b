package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SayanChouni/osint/internal/models"
)

func TestBuildNumberReport(t *testing.T) {
	result := &LookupResult{
		Phone:      "9876543210",
		NameFinder: `{"name":"test"}`,
		AadhaarErr: "upstream returned 502 Bad Gateway",
	}

	filename, content := BuildNumberReport(result)

	assert.Equal(t, "num_report_9876543210.txt", filename)
	assert.Contains(t, content, "Phone: 9876543210")
	assert.Contains(t, content, "name_finder")
	assert.Contains(t, content, "aadhaar_info_error")
}

func TestOutcomeSummary(t *testing.T) {
	tests := []struct {
		name   string
		result LookupResult
		want   string
	}{
		{
			name:   "both sources ok",
			result: LookupResult{NameFinder: "a", AadhaarInfo: "b"},
			want:   "name=ok aadhaar=ok",
		},
		{
			name:   "partial failure",
			result: LookupResult{NameFinder: "a", AadhaarErr: "timeout"},
			want:   "name=ok aadhaar=failed",
		},
		{
			name:   "cached result marked",
			result: LookupResult{NameFinder: "a", AadhaarInfo: "b", FromCache: true},
			want:   "name=ok aadhaar=ok (cached)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutcomeSummary(&tt.result))
		})
	}
}

func TestBuildLogsReport(t *testing.T) {
	entries := []models.SearchLogEntry{
		{UserID: 1, Target: "111", OutcomeSummary: "name=ok aadhaar=ok"},
		{UserID: 2, Target: "222", WasBlocked: true},
	}

	filename, content := BuildLogsReport(entries, 2)

	assert.Equal(t, "logs_last_2.txt", filename)
	assert.Contains(t, content, `"target": "111"`)
	assert.Contains(t, content, `"was_blocked": true`)
}
