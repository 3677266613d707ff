package rebalance

import (
	"errors"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/common/cache"
)

// DefaultCacheSize is the number of schedules a Scheduler keeps
const DefaultCacheSize = 32

type kind uint8

const (
	everyNDays kind = iota + 1
	weekday
	monthStart
	monthEnd
	quarterStart
	quarterEnd
)

var (
	errInvalidFrequency = errors.New("invalid rebalance frequency")
	errEndBeforeStart   = errors.New("end date is before start date")
	errZeroDate         = errors.New("start and end dates must be set")
)

// Frequency is a calendar rule selecting rebalance dates. The zero value is
// invalid, use the constructors or ParseFrequency. Frequencies are comparable
// and equal rules compare equal.
type Frequency struct {
	kind    kind
	n       int
	weekday time.Weekday
}

type scheduleKey struct {
	start, end int64
	frequency  Frequency
}

// Scheduler computes rebalance schedules and caches them by start, end and
// frequency. It is safe for concurrent use.
type Scheduler struct {
	cache *cache.LRU[scheduleKey, []time.Time]
}
