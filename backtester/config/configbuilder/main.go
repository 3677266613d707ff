package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/allocation"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/config"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/rebalance"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/selection"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/common/file"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
	"github.com/shopspring/decimal"
)

const (
	yes = "yes"
	y   = "y"
)

func main() {
	fmt.Print(common.ASCIILogo)
	fmt.Println("Welcome to the config generator! Leave a prompt blank to keep its default")
	reader := bufio.NewReader(os.Stdin)
	cfg, err := config.DefaultConfig()
	if err != nil {
		fatal(err)
	}

	for _, section := range []struct {
		title string
		parse func(*config.Config, *bufio.Reader) error
	}{
		{"Data Settings", parseDataSettings},
		{"Strategy Settings", parseStrategySettings},
		{"Portfolio Settings", parsePortfolioSettings},
		{"Benchmark Settings", parseBenchmarkSettings},
		{"Statistics Settings", parseStatisticsSettings},
	} {
		fmt.Printf("-----%s-----\n", section.title)
		for {
			if err = section.parse(cfg, reader); err == nil {
				break
			}
			log.Errorln(log.ConfigMgr, err)
		}
	}
	if err = cfg.Validate(); err != nil {
		fatal(err)
	}

	resp, err := json.MarshalIndent(cfg, "", " ")
	if err != nil {
		fatal(err)
	}

	fmt.Println("Write config to file? If no, the output will be on screen y/n")
	yn := quickParse(reader)
	if yn != y && yn != yes {
		fmt.Println(string(resp))
		return
	}
	wd, err := os.Getwd()
	if err != nil {
		fatal(err)
	}
	es := cfg.EngineSettings()
	fn := es.String()
	wd = filepath.Join(wd, strings.ReplaceAll(fn, " ", "_")+".json")
	fmt.Printf("Enter output file. If blank, will output to \"%v\"\n", wd)
	path := quickParse(reader)
	if path == "" {
		path = wd
	}
	if err = file.Write(path, resp); err != nil {
		fatal(err)
	}
	log.Infof(log.ConfigMgr, "config written to %s", path)
}

func parseDataSettings(cfg *config.Config, reader *bufio.Reader) error {
	fmt.Println("Enter the path to the long format universe CSV (date,asset,price[,volume,amount,market_cap])")
	cfg.DataSettings.Path = quickParse(reader)
	if err := cfg.RequireDataPath(); err != nil {
		return err
	}
	var err error
	fmt.Println("Enter the start date, eg 2022-01-01. Blank uses the first date of the data")
	if cfg.DataSettings.StartDate, err = parseDate(reader); err != nil {
		return err
	}
	fmt.Println("Enter the end date, eg 2023-01-01. Blank uses the last date of the data")
	if cfg.DataSettings.EndDate, err = parseDate(reader); err != nil {
		return err
	}
	fmt.Printf("Enter the indicator lookback in periods. Default %d\n", cfg.DataSettings.Lookback)
	return parseInt(reader, &cfg.DataSettings.Lookback)
}

func parseStrategySettings(cfg *config.Config, reader *bufio.Reader) error {
	s := &cfg.StrategySettings
	fmt.Println("Enter a nickname for this run")
	cfg.Nickname = quickParse(reader)

	names := make([]string, 0, len(universe.Fields()))
	for _, f := range universe.Fields() {
		if f != universe.Price && f != universe.Amount {
			names = append(names, f.String())
		}
	}
	fmt.Printf("Which field ranks the assets? Default %v\nOptions: %s\n", s.RankingField, strings.Join(names, ", "))
	if v := quickParse(reader); v != "" {
		f, err := universe.ParseField(v)
		if err != nil {
			return err
		}
		s.RankingField = f
	}
	fmt.Printf("Rank %v or %v? Default %v\n", selection.Descending, selection.Ascending, s.RankingMode)
	if v := quickParse(reader); v != "" {
		m, err := selection.ParseMode(v)
		if err != nil {
			return err
		}
		s.RankingMode = m
	}
	fmt.Printf("How many assets should be held? Default %d\n", s.TopK)
	if err := parseInt(reader, &s.TopK); err != nil {
		return err
	}

	methods := make([]string, 0, len(allocation.Methods()))
	for _, m := range allocation.Methods() {
		methods = append(methods, m.String())
	}
	fmt.Printf("Which allocation method? Default %v\nOptions: %s\n", s.Allocation, strings.Join(methods, ", "))
	if v := quickParse(reader); v != "" {
		m, err := allocation.ParseMethod(v)
		if err != nil {
			return err
		}
		s.Allocation = m
	}
	fmt.Printf("Allocate %v or %v? Default %v\n", allocation.Classic, allocation.Inverse, s.AllocationMode)
	if v := quickParse(reader); v != "" {
		m, err := allocation.ParseMode(v)
		if err != nil {
			return err
		}
		s.AllocationMode = m
	}
	fmt.Printf("How often to rebalance? eg daily, W-FRI, every-3-days, month-start. Default %v\n", s.Frequency)
	if err := parseFrequency(reader, &s.Frequency); err != nil {
		return err
	}
	fmt.Printf("Hold the portfolio %v or %v? Default %v\n", common.Long, common.Short, s.Side)
	if v := quickParse(reader); v != "" {
		side, err := common.ParseSide(v)
		if err != nil {
			return err
		}
		s.Side = side
	}
	return nil
}

func parsePortfolioSettings(cfg *config.Config, reader *bufio.Reader) error {
	p := &cfg.PortfolioSettings
	fmt.Printf("Enter the transaction cost per traded asset, eg 0.001. Default %v\n", p.TransactionCost)
	if err := parseDecimal(reader, &p.TransactionCost); err != nil {
		return err
	}
	fmt.Printf("Enter the slippage per rebalance, eg 0.0005. Default %v\n", p.Slippage)
	return parseDecimal(reader, &p.Slippage)
}

func parseBenchmarkSettings(cfg *config.Config, reader *bufio.Reader) error {
	b := &cfg.BenchmarkSettings
	fmt.Printf("Which benchmark should the strategy be tested against? Default %v\n", b.Name)
	if v := quickParse(reader); v != "" {
		b.Name = v
	}
	fmt.Printf("Which asset is the reference benchmark? Default %v\n", b.ReferenceAsset)
	if v := quickParse(reader); v != "" {
		b.ReferenceAsset = v
	}
	fmt.Printf("How often do the benchmarks rebalance? Default %v\n", b.Frequency)
	return parseFrequency(reader, &b.Frequency)
}

func parseStatisticsSettings(cfg *config.Config, reader *bufio.Reader) error {
	s := &cfg.StatisticSettings
	fmt.Printf("Enter the annual risk free rate, eg 0.03. Default %v\n", s.RiskFreeRate)
	if err := parseDecimal(reader, &s.RiskFreeRate); err != nil {
		return err
	}
	fmt.Println("Run the bootstrap t-test against the benchmark? y/n")
	yn := quickParse(reader)
	s.Bootstrap = yn == "" || yn == y || yn == yes
	if !s.Bootstrap {
		return nil
	}
	fmt.Printf("How many bootstrap samples? Default %d\n", s.Samples)
	if err := parseInt(reader, &s.Samples); err != nil {
		return err
	}
	fmt.Printf("Enter the test risk level. Default %v\n", s.Alpha)
	return parseDecimal(reader, &s.Alpha)
}

func parseDate(reader *bufio.Reader) (time.Time, error) {
	v := quickParse(reader)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, v)
}

func parseInt(reader *bufio.Reader, dst *int) error {
	v := quickParse(reader)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = i
	return nil
}

func parseDecimal(reader *bufio.Reader, dst *decimal.Decimal) error {
	v := quickParse(reader)
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func parseFrequency(reader *bufio.Reader, dst *rebalance.Frequency) error {
	v := quickParse(reader)
	if v == "" {
		return nil
	}
	f, err := rebalance.ParseFrequency(v)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

func quickParse(reader *bufio.Reader) string {
	customSettingField, err := reader.ReadString('\n')
	if err != nil {
		fatal(err)
	}
	return strings.TrimSpace(customSettingField)
}

func fatal(err error) {
	log.Errorln(log.ConfigMgr, err)
	os.Exit(1)
}
