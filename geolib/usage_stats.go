package geolib

import (
	"encoding/json"
	"sync"
	"time"
)

// UsageStats tracks how often some stage of locate pipeline was used
// and how often it has failed.
type UsageStats struct {
	Name string

	mutex        sync.Mutex
	lastUsed     time.Time
	lastFailed   time.Time
	successCount uint64
	failureCount uint64
}

func (u *UsageStats) Used(success bool) {
	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUsed = now

	if success {
		u.successCount++
	} else {
		u.failureCount++
		u.lastFailed = now
	}
}

func (u *UsageStats) Counters() (uint64, uint64) {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	return u.successCount, u.failureCount
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	var lastUsedTime, lastFailedTime int64

	u.mutex.Lock()

	if !u.lastUsed.IsZero() {
		lastUsedTime = u.lastUsed.Unix()
	}

	if !u.lastFailed.IsZero() {
		lastFailedTime = u.lastFailed.Unix()
	}

	rawStruct := struct {
		Name         string `json:"name"`
		LastUsed     int64  `json:"last_used"`
		LastFailed   int64  `json:"last_failed"`
		SuccessCount uint64 `json:"success_count"`
		FailureCount uint64 `json:"failure_count"`
	}{
		Name:         u.Name,
		LastUsed:     lastUsedTime,
		LastFailed:   lastFailedTime,
		SuccessCount: u.successCount,
		FailureCount: u.failureCount,
	}

	u.mutex.Unlock()

	return json.Marshal(&rawStruct)
}
