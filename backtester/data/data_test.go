package data

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longCSV = `date,asset,price,volume,market_cap,exchange
2023-01-02,ETH-USDT,1210,5,,binance
2023-01-01,BTC-USDT,16500,10,320000,binance
2023-01-01,ETH-USDT,1200,nan,145000,binance
2023-01-02T15:04:05Z,BTC-USDT,16600,12,321000,binance
2023-01-03,ETH-USDT,1230,6,146000,binance
`

func TestRead(t *testing.T) {
	t.Parallel()
	in, err := Read(strings.NewReader(longCSV))
	require.NoError(t, err, "Read must not error")

	require.Len(t, in.Dates, 3)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), in.Dates[0])
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), in.Dates[1])
	assert.Equal(t, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), in.Dates[2])
	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT"}, in.Assets)

	require.Len(t, in.Columns, 3, "exchange column should be ignored")
	price := in.Columns[universe.Price]
	assert.Equal(t, 16500.0, price[0][0])
	assert.Equal(t, 16600.0, price[0][1])
	assert.True(t, math.IsNaN(price[0][2]), "missing pair should be NaN")
	assert.Equal(t, []float64{1200, 1210, 1230}, price[1])

	volume := in.Columns[universe.Volume]
	assert.True(t, math.IsNaN(volume[1][0]), "nan cell should be NaN")
	assert.Equal(t, 5.0, volume[1][1])

	caps := in.Columns[universe.MarketCap]
	assert.True(t, math.IsNaN(caps[1][1]), "empty cell should be NaN")
	assert.Equal(t, 321000.0, caps[0][1])
}

func TestReadHeaderAliases(t *testing.T) {
	t.Parallel()
	in, err := Read(strings.NewReader("\ufeffSymbol, Timestamp, Price, Capitalization\nBTC,2023-05-01,1,2\n"))
	require.NoError(t, err, "Read must not error")
	assert.Equal(t, []string{"BTC"}, in.Assets)
	assert.Equal(t, 2.0, in.Columns[universe.MarketCap][0][0])
}

func TestReadErrors(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name  string
		input string
		err   error
	}{
		{"empty", "", errNoHeader},
		{"header only", "date,asset,price\n", errNoRows},
		{"no price", "date,asset,volume\n2023-01-01,BTC,1\n", errMissingColumn},
		{"no asset", "date,price\n2023-01-01,1\n", errMissingColumn},
		{"no date", "asset,price\nBTC,1\n", errMissingColumn},
		{"duplicate column", "date,asset,price,price\n", errDuplicateCol},
		{"bad date", "date,asset,price\n01/02/2023,BTC,1\n", errInvalidDate},
		{"bad value", "date,asset,price\n2023-01-01,BTC,one\n", errInvalidValue},
		{"infinite value", "date,asset,price\n2023-01-01,BTC,+Inf\n", errInvalidValue},
		{"empty asset", "date,asset,price\n2023-01-01, ,1\n", errEmptyAsset},
		{"duplicate entry", "date,asset,price\n2023-01-01,BTC,1\n2023-01-01T12:00:00Z,BTC,2\n", errDuplicateEntry},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Read(strings.NewReader(tc.input))
			assert.ErrorIs(t, err, tc.err)
		})
	}

	_, err := Read(strings.NewReader("date,asset,price\n2023-01-01,BTC\n"))
	assert.Error(t, err, "a short record should error")
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "universe.csv")
	require.NoError(t, os.WriteFile(path, []byte(longCSV), 0o600), "WriteFile must not error")
	in, err := Load(path)
	require.NoError(t, err, "Load must not error")
	assert.Len(t, in.Dates, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
