package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for domain operations
var (
	// ErrRateLimited marks a tracker API rate limit; sync sleeps and retries
	ErrRateLimited = goerr.New("tracker API rate limit reached")
	// ErrMilestoneNotFound marks a report request for an undeclared milestone
	ErrMilestoneNotFound = goerr.New("logical milestone not found")
)
