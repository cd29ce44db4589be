package chat

import "strings"

// quotaIndicators are the substrings that mark an error as quota/rate-limit
// exhaustion. Matching is case-insensitive. The list is data, not control
// flow: extend it here without touching the failover loop.
var quotaIndicators = []string{
	"quota",
	"rate limit",
	"rate_limit",
	"429",
	"exceeded your current quota",
	"requests per day",
	"free tier",
	"billing details",
	"resource_exhausted",
	"resourceexhausted",
	"quota_metric",
	"quota_value",
	"generate_content_free_tier_requests",
}

// IsQuotaMessage reports whether an error text looks like quota or rate-limit
// exhaustion. Quota failures are the only class eligible for automatic
// failover; everything else propagates untouched.
func IsQuotaMessage(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range quotaIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// IsQuotaError applies IsQuotaMessage to an error, tolerating nil.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	return IsQuotaMessage(err.Error())
}
