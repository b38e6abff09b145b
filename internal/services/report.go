package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SayanChouni/osint/internal/models"
)

// BuildNumberReport renders a lookup result into the text file sent back to
// the user. Returns the filename and its content.
func BuildNumberReport(result *LookupResult) (string, string) {
	payload, _ := json.MarshalIndent(result, "", "  ")

	var b strings.Builder
	b.WriteString("--- INFORA PRO REPORT ---\n")
	fmt.Fprintf(&b, "Phone: %s\n\n", result.Phone)
	b.Write(payload)
	b.WriteString("\n")

	return fmt.Sprintf("num_report_%s.txt", result.Phone), b.String()
}

// BuildLogsReport renders recent audit entries into the file attached to the
// admin view-logs reply.
func BuildLogsReport(entries []models.SearchLogEntry, n int) (string, string) {
	payload, _ := json.MarshalIndent(entries, "", "  ")
	return fmt.Sprintf("logs_last_%d.txt", n), string(payload)
}

// FormatAccountStatus renders an account for the admin status reply.
func FormatAccountStatus(acc *models.UserAccount) string {
	payload, _ := json.MarshalIndent(acc, "", "  ")
	return "USER STATUS:\n" + string(payload)
}

// OutcomeSummary condenses a lookup result into the audit log column.
func OutcomeSummary(result *LookupResult) string {
	status := func(body, errText string) string {
		if errText != "" {
			return "failed"
		}
		if body == "" {
			return "empty"
		}
		return "ok"
	}
	summary := fmt.Sprintf("name=%s aadhaar=%s",
		status(result.NameFinder, result.NameErr),
		status(result.AadhaarInfo, result.AadhaarErr))
	if result.FromCache {
		summary += " (cached)"
	}
	return summary
}
