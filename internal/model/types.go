// Package model defines shared data structures.
package model

import "time"

// Config defines reader settings.
type Config struct {
	WidthPct     float64
	Threshold    float64
	RewardBase   float64
	RewardMult   float64
	Observer     string
	PollInterval time.Duration
}

// WalletConfig defines filters and options for wallet output.
type WalletConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Article is a loaded document split into paragraphs.
type Article struct {
	ID         string
	Path       string
	Title      string
	Paragraphs []string
}

// ClaimResult is the outcome reported by a reward claimer.
type ClaimResult struct {
	Success         bool
	AmountCollected float64
	AlreadyClaimed  bool
}

// ClaimRecord is a stored reward claim.
type ClaimRecord struct {
	ArticleID  string
	Title      string
	Base       float64
	Multiplier float64
	Amount     float64
	ClaimedAt  time.Time
}

// ReadingRecord is the stored reading progress for an article.
type ReadingRecord struct {
	ArticleID string
	Path      string
	Title     string
	Progress  float64
	UpdatedAt time.Time
}
