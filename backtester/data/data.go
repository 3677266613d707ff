// Package data loads universe input from long format CSV files, one row per
// date and asset:
//
//	date,asset,price,volume,amount,market_cap
//	2023-01-01,BTC-USDT,16547.5,,19250000,
//
// Only date, asset and price are required. Empty cells and "nan" are missing
// observations, as are date and asset pairs absent from the file.
package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
)

// Load reads the universe input stored at path
func Load(path string) (*universe.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	in, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof(log.DataHandler, "loaded %d dates and %d assets from %s", len(in.Dates), len(in.Assets), path)
	return in, nil
}

type cell struct {
	day   int64
	asset string
}

// Read parses a long format CSV into universe input. Dates are truncated to
// the UTC day and sorted, assets are sorted by name.
func Read(r io.Reader) (*universe.Input, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errNoHeader
	}
	if err != nil {
		return nil, err
	}
	dateIdx, assetIdx, fields, fieldIdx, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	rows := make(map[cell][]float64)
	days := make(map[int64]struct{})
	assets := make(map[string]struct{})
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		day, err := parseDay(rec[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		asset := strings.TrimSpace(rec[assetIdx])
		if asset == "" {
			return nil, fmt.Errorf("line %d: %w", line, errEmptyAsset)
		}
		k := cell{day: day, asset: asset}
		if _, ok := rows[k]; ok {
			return nil, fmt.Errorf("line %d: %w %s %s", line, errDuplicateEntry, rec[dateIdx], asset)
		}
		values := make([]float64, len(fields))
		for i, idx := range fieldIdx {
			if values[i], err = parseValue(rec[idx]); err != nil {
				return nil, fmt.Errorf("line %d %s: %w", line, fields[i], err)
			}
		}
		rows[k] = values
		days[day] = struct{}{}
		assets[asset] = struct{}{}
	}
	if len(rows) == 0 {
		return nil, errNoRows
	}

	dayKeys := make([]int64, 0, len(days))
	for d := range days {
		dayKeys = append(dayKeys, d)
	}
	slices.Sort(dayKeys)
	in := &universe.Input{
		Dates:   make([]time.Time, len(dayKeys)),
		Assets:  make([]string, 0, len(assets)),
		Columns: make(map[universe.Field][][]float64, len(fields)),
	}
	dateRow := make(map[int64]int, len(dayKeys))
	for i, d := range dayKeys {
		in.Dates[i] = time.Unix(d, 0).UTC()
		dateRow[d] = i
	}
	for a := range assets {
		in.Assets = append(in.Assets, a)
	}
	slices.Sort(in.Assets)
	assetCol := make(map[string]int, len(in.Assets))
	for i, a := range in.Assets {
		assetCol[a] = i
	}
	for _, f := range fields {
		cols := make([][]float64, len(in.Assets))
		for a := range cols {
			cols[a] = make([]float64, len(in.Dates))
			for t := range cols[a] {
				cols[a][t] = math.NaN()
			}
		}
		in.Columns[f] = cols
	}
	for k, values := range rows {
		a, t := assetCol[k.asset], dateRow[k.day]
		for i, f := range fields {
			in.Columns[f][a][t] = values[i]
		}
	}
	if missing := len(in.Dates)*len(in.Assets) - len(rows); missing > 0 {
		log.Debugf(log.DataHandler, "%d date and asset pairs missing, filled with NaN", missing)
	}
	return in, nil
}

func parseHeader(header []string) (dateIdx, assetIdx int, fields []universe.Field, fieldIdx []int, err error) {
	dateIdx, assetIdx = -1, -1
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if seen[name] {
			return 0, 0, nil, nil, fmt.Errorf("%w: %s", errDuplicateCol, name)
		}
		seen[name] = true
		switch name {
		case dateColumn, "timestamp", "time":
			dateIdx = i
			continue
		case assetColumn, "symbol", "ticker":
			assetIdx = i
			continue
		}
		f, perr := universe.ParseField(name)
		if perr != nil || !f.IsRaw() {
			log.Warnf(log.DataHandler, "ignoring column %q", h)
			continue
		}
		if slices.Contains(fields, f) {
			return 0, 0, nil, nil, fmt.Errorf("%w: %s", errDuplicateCol, f)
		}
		fields = append(fields, f)
		fieldIdx = append(fieldIdx, i)
	}
	switch {
	case dateIdx < 0:
		return 0, 0, nil, nil, fmt.Errorf("%w: %s", errMissingColumn, dateColumn)
	case assetIdx < 0:
		return 0, 0, nil, nil, fmt.Errorf("%w: %s", errMissingColumn, assetColumn)
	case !slices.Contains(fields, universe.Price):
		return 0, 0, nil, nil, fmt.Errorf("%w: %s", errMissingColumn, universe.Price)
	}
	return dateIdx, assetIdx, fields, fieldIdx, nil
}

// parseDay returns the unix second of the start of the UTC day
func parseDay(s string) (int64, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(24 * time.Hour).Unix(), nil
		}
	}
	return 0, fmt.Errorf("%w: '%s'", errInvalidDate, s)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "na":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s'", errInvalidValue, s)
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: '%s'", errInvalidValue, s)
	}
	return v, nil
}
