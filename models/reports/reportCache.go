package reports

import (
	"os"
	"strconv"
	"time"

	"github.com/edulinkhq/crm_backend/config"
	"github.com/sirupsen/logrus"
)

// Report caching is opt-in via ENABLE_REPORT_CACHE. Derived numbers stay a
// pure function of (window, scope); the cache only shortcuts recomputation.

func reportCacheEnabled() bool {
	return os.Getenv("ENABLE_REPORT_CACHE") == "true"
}

func reportCacheTTL() time.Duration {
	seconds := 60
	if v := os.Getenv("REPORT_CACHE_TTL_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			seconds = parsed
		}
	}
	return time.Duration(seconds) * time.Second
}

func getCachedReport(key string, dest interface{}) bool {
	if !reportCacheEnabled() {
		return false
	}
	found, err := config.GetRedisObject(key, dest)
	if err != nil {
		config.LogError(config.GetLogger(), "reports", "getCachedReport", "cache read failed", key, err)
		return false
	}
	return found
}

func setCachedReport(key string, value interface{}) {
	if !reportCacheEnabled() {
		return
	}
	if err := config.SetRedisObject(key, value, reportCacheTTL()); err != nil {
		config.LogError(config.GetLogger(), "reports", "setCachedReport", "cache write failed", key, err)
	}
}

// logIfSlow flags aggregation runs that exceed REPORT_SLOW_MS (default 1s);
// the engine re-scans the ledgers on every call, so slow runs here are the
// first sign the client base has outgrown on-demand aggregation.
func logIfSlow(funcName string, started time.Time) {
	thresholdMs := 1000
	if v := os.Getenv("REPORT_SLOW_MS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			thresholdMs = parsed
		}
	}
	elapsed := time.Since(started)
	if elapsed > time.Duration(thresholdMs)*time.Millisecond {
		config.GetLogger().WithFields(logrus.Fields{
			"module":   "reports",
			"funcName": funcName,
			"tookMs":   elapsed.Milliseconds(),
		}).Warn("slow report query")
	}
}
