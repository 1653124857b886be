package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot for the summary endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	NumbersIssued            uint64    `json:"numbers_issued"`
	LettersGenerated         uint64    `json:"letters_generated"`
	LetterFailures           uint64    `json:"letter_failures"`
	EmailsSent               uint64    `json:"emails_sent"`
	EmailFailures            uint64    `json:"email_failures"`
	Verifications            uint64    `json:"verifications"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
