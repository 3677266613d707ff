package report

import (
	"fmt"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/statistics"
	"github.com/vicanso/go-charts/v2"
)

// createEquityChart compounds each return series into a value curve starting
// at one
func createEquityChart(dates []time.Time, names []string, series [][]float64) (*Chart, error) {
	if dates == nil || series == nil {
		return nil, fmt.Errorf("%w missing dates or series", common.ErrNilPointer)
	}
	c := &Chart{Title: "Cumulative value"}
	for i := range series {
		line := ChartLine{Name: names[i], LinePlots: make([]LinePlot, len(series[i]))}
		value := 1.0
		for t, r := range series[i] {
			value *= 1 + r
			line.LinePlots[t] = LinePlot{Value: value, UnixMilli: dates[t].UnixMilli()}
		}
		c.Data = append(c.Data, line)
	}
	return c, nil
}

// createDrawdownChart shows the running loss from the last peak of each
// series
func createDrawdownChart(dates []time.Time, names []string, series [][]float64) (*Chart, error) {
	if dates == nil || series == nil {
		return nil, fmt.Errorf("%w missing dates or series", common.ErrNilPointer)
	}
	c := &Chart{Title: "Drawdown"}
	for i := range series {
		line := ChartLine{Name: names[i], LinePlots: make([]LinePlot, len(series[i]))}
		value, peak := 1.0, 1.0
		for t, r := range series[i] {
			value *= 1 + r
			peak = max(peak, value)
			line.LinePlots[t] = LinePlot{Value: value/peak - 1, UnixMilli: dates[t].UnixMilli()}
		}
		c.Data = append(c.Data, line)
	}
	return c, nil
}

// render draws the chart as a PNG
func (c *Chart) render() ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w chart", common.ErrNilPointer)
	}
	if len(c.Data) == 0 || len(c.Data[0].LinePlots) == 0 {
		return nil, errNoPlots
	}
	labels := make([]string, len(c.Data[0].LinePlots))
	for i, p := range c.Data[0].LinePlots {
		labels[i] = time.UnixMilli(p.UnixMilli).UTC().Format(time.DateOnly)
	}
	values := make([][]float64, len(c.Data))
	names := make([]string, len(c.Data))
	for i := range c.Data {
		names[i] = c.Data[i].Name
		values[i] = make([]float64, len(c.Data[i].LinePlots))
		for j, p := range c.Data[i].LinePlots {
			values[i][j] = p.Value
		}
	}
	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(c.Title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: min(chartLabelSplits, len(labels)),
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Top:  charts.PositionTop,
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(chartWidth),
		charts.HeightOptionFunc(chartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering %s chart: %w", c.Title, err)
	}
	return p.Bytes()
}

func drawdownRow(dates []time.Time, s statistics.Swing) DrawdownRow {
	at := func(offset int) time.Time {
		if len(dates) == 0 {
			return time.Time{}
		}
		return dates[max(0, min(offset, len(dates)-1))]
	}
	return DrawdownRow{
		Peak:     at(s.Highest.Offset),
		Trough:   at(s.Lowest.Offset),
		Drawdown: toDecimal(s.Drawdown),
		Duration: s.Duration,
	}
}
