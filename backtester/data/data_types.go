package data

import (
	"errors"
	"time"
)

const (
	dateColumn  = "date"
	assetColumn = "asset"
)

var (
	errNoHeader       = errors.New("csv has no header row")
	errMissingColumn  = errors.New("required column missing")
	errDuplicateCol   = errors.New("duplicate column")
	errNoRows         = errors.New("csv has no data rows")
	errInvalidDate    = errors.New("invalid date")
	errInvalidValue   = errors.New("invalid value")
	errEmptyAsset     = errors.New("empty asset")
	errDuplicateEntry = errors.New("duplicate date and asset")
)

// dateLayouts are tried in order when parsing the date column
var dateLayouts = []string{time.DateOnly, time.RFC3339, time.DateTime}
