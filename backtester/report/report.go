// Package report turns a strategy run and its evaluation into text, JSON or
// HTML output.
package report

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/benchmark"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/engine"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/statistics"
	cmpmath "github.com/BaptisteZloch/Crypto-momentum-portfolios/common/math"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
	"github.com/shopspring/decimal"
)

//go:embed tpl.gohtml
var templates embed.FS

var hundred = decimal.NewFromInt(100)

// ParseFormat converts text, json or html into a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "json":
		return JSON, nil
	case "html":
		return HTML, nil
	}
	return 0, fmt.Errorf("%w '%s'", errUnknownFormat, s)
}

// New gathers the report data of a run. The benchmark set is optional and
// only feeds the charts.
func New(res *engine.Result, set *benchmark.Set, benchmarkName string, rep *statistics.Report) (*Data, error) {
	if res == nil {
		return nil, fmt.Errorf("%w result", common.ErrNilPointer)
	}
	if rep == nil {
		return nil, fmt.Errorf("%w statistics report", common.ErrNilPointer)
	}
	d := &Data{
		Name:              res.Settings.String(),
		Benchmark:         benchmarkName,
		Settings:          res.Settings,
		Observations:      rep.Observations,
		Rebalances:        len(res.Rebalances),
		RiskLevel:         rep.RiskLevel,
		StrategyDrawdown:  drawdownRow(res.Dates, rep.StrategyDrawdown),
		BenchmarkDrawdown: drawdownRow(res.Dates, rep.BenchmarkDrawdown),
		Warnings:          res.Warnings,
	}
	if len(res.Dates) > 0 {
		d.Start, d.End = res.Dates[0], res.Dates[len(res.Dates)-1]
	}
	if len(res.Selections) > 0 {
		d.LastSelection = res.Selections[len(res.Selections)-1]
	}
	for _, m := range statistics.Metrics() {
		s, b, err := rep.Value(m)
		if err != nil {
			return nil, err
		}
		d.Metrics = append(d.Metrics, MetricRow{
			Metric:    m,
			Percent:   m.IsPercent(),
			Strategy:  toDecimal(s),
			Benchmark: toDecimal(b),
		})
	}
	for i := range rep.Tests {
		t := &rep.Tests[i]
		d.Tests = append(d.Tests, TestRow{
			Metric:  t.Metric,
			Samples: t.Samples,
			Mean:    toDecimal(t.Mean),
			StdDev:  toDecimal(t.StdDev),
			T:       toDecimal(t.T),
			P:       toDecimal(t.P),
			Verdict: t.Verdict(),
		})
	}

	names := []string{d.Name}
	series := [][]float64{res.Returns}
	if set != nil && set.Len() == len(res.Returns) {
		for _, n := range set.Names() {
			r, err := set.Series(n)
			if err != nil {
				return nil, err
			}
			names = append(names, n)
			series = append(series, r)
		}
	}
	var err error
	if d.equity, err = createEquityChart(res.Dates, names, series); err != nil {
		return nil, err
	}
	if d.drawdown, err = createDrawdownChart(res.Dates, names, series); err != nil {
		return nil, err
	}
	return d, nil
}

// Write outputs the report in the requested format
func (d *Data) Write(w io.Writer, f Format) error {
	if d == nil {
		return fmt.Errorf("%w report data", common.ErrNilPointer)
	}
	switch f {
	case Text:
		return d.writeText(w)
	case JSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(d)
	case HTML:
		return d.writeHTML(w)
	}
	return fmt.Errorf("%w %d", errUnknownFormat, f)
}

func (d *Data) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Strategy\t%s\n", d.Name)
	fmt.Fprintf(tw, "Period\t%s to %s, %d observations, %d rebalances\n",
		d.Start.Format(time.DateOnly), d.End.Format(time.DateOnly), d.Observations, d.Rebalances)
	fmt.Fprintf(tw, "Benchmark\t%s\n", d.Benchmark)
	if len(d.LastSelection) > 0 {
		fmt.Fprintf(tw, "Last selection\t%s\n", strings.Join(d.LastSelection, ", "))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Metric\tPortfolio\tBenchmark")
	for i := range d.Metrics {
		m := &d.Metrics[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Metric, formatValue(m.Strategy, m.Percent), formatValue(m.Benchmark, m.Percent))
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Worst drawdown\t%s\tfrom %s to %s over %d periods\n",
		formatValue(d.StrategyDrawdown.Drawdown, true),
		d.StrategyDrawdown.Peak.Format(time.DateOnly),
		d.StrategyDrawdown.Trough.Format(time.DateOnly),
		d.StrategyDrawdown.Duration)
	if len(d.Tests) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "Bootstrap t-test at %s\n", formatValue(toDecimal(d.RiskLevel), true))
		fmt.Fprintln(tw, "Metric\tMean\tt-stat\tp-value\tVerdict")
		for i := range d.Tests {
			t := &d.Tests[i]
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Metric,
				formatValue(t.Mean, t.Metric.IsPercent()), formatValue(t.T, false), formatValue(t.P, false), t.Verdict)
		}
	}
	if len(d.Warnings) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "Warnings\t%d\n", len(d.Warnings))
		for _, warning := range d.Warnings {
			fmt.Fprintf(tw, "\t%s\n", warning)
		}
	}
	return tw.Flush()
}

type htmlData struct {
	*Data
	EquityChart   template.URL
	DrawdownChart template.URL
}

func (d *Data) writeHTML(w io.Writer) error {
	tmpl, err := template.New("tpl.gohtml").Funcs(template.FuncMap{
		"value": formatValue,
		"date":  func(t time.Time) string { return t.Format(time.DateOnly) },
	}).ParseFS(templates, "tpl.gohtml")
	if err != nil {
		return err
	}
	hd := htmlData{Data: d}
	for _, c := range []struct {
		chart *Chart
		dst   *template.URL
	}{
		{d.equity, &hd.EquityChart},
		{d.drawdown, &hd.DrawdownChart},
	} {
		img, err := c.chart.render()
		if err != nil {
			log.Warnf(log.Backtester, "skipping chart: %v", err)
			continue
		}
		*c.dst = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img))
	}
	return tmpl.Execute(w, hd)
}

func toDecimal(v float64) decimal.NullDecimal {
	if !cmpmath.IsFinite(v) {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v).Round(precision), Valid: true}
}

func formatValue(v decimal.NullDecimal, percent bool) string {
	if !v.Valid {
		return missing
	}
	if percent {
		return v.Decimal.Mul(hundred).StringFixed(2) + "%"
	}
	return v.Decimal.StringFixed(4)
}
