package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/api"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/config"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/data"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/engine"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/report"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/common/file"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
	"github.com/urfave/cli/v2"
)

const defaultListenAddress = "localhost:9050"

var (
	configPath string
	logLevel   string
	logFile    string
)

func main() {
	app := &cli.App{
		Name:                 "backtester",
		Usage:                "cross-sectional momentum portfolio backtester",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "the strategy config file, JSON or YAML",
				Required:    true,
				Destination: &configPath,
				EnvVars:     []string{config.EnvPrefix + "_CONFIG"},
			},
			&cli.StringFlag{
				Name:        "loglevel",
				Value:       "INFO|WARN|ERROR",
				Usage:       "levels to log, joined by |",
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "logfile",
				Usage:       "also log to this rotating file",
				Destination: &logFile,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "runs the configured strategy and prints its evaluation",
				Action: runStrategy,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: "text",
						Usage: "report format: text, json or html",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "write the report to this file instead of stdout",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "serves strategy runs over the configured universe through HTTP",
				Action: serve,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: defaultListenAddress,
						Usage: "the address to listen on",
					},
				},
			},
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if closeErr := log.CloseLogger(); closeErr != nil {
		fmt.Fprintln(os.Stderr, closeErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config and universe and prepares the backtester
func setup() (*config.Config, *engine.Backtester, error) {
	cfg, err := config.ReadConfigFromFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err = setupLogger(cfg.StrategySettings.Verbose); err != nil {
		return nil, nil, err
	}
	if err = cfg.RequireDataPath(); err != nil {
		return nil, nil, err
	}
	path := cfg.DataSettings.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(configPath), path)
	}
	in, err := data.Load(path)
	if err != nil {
		return nil, nil, err
	}
	u, err := universe.New(in, cfg.UniverseSettings())
	if err != nil {
		return nil, nil, err
	}
	if u, err = u.Slice(cfg.DataSettings.StartDate, cfg.DataSettings.EndDate); err != nil {
		return nil, nil, err
	}
	b, err := engine.New(u, engine.WithBenchmarkSettings(cfg.Benchmark()))
	if err != nil {
		return nil, nil, err
	}
	return cfg, b, nil
}

func setupLogger(verbose bool) error {
	c := log.GenDefaultSettings()
	c.Level = logLevel
	if verbose {
		c.Level += "|DEBUG"
	}
	if logFile != "" {
		c.Output += "|file"
		c.LoggerFileConfig.FileName = logFile
	}
	return log.SetupGlobalLogger(&c)
}

func runStrategy(c *cli.Context) error {
	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	cfg, b, err := setup()
	if err != nil {
		return err
	}
	res, err := b.RunStrategy(cfg.EngineSettings())
	if err != nil {
		return err
	}
	rep, err := b.EvaluateContext(c.Context, res, cfg.BenchmarkSettings.Name, cfg.Statistics())
	if err != nil {
		return err
	}
	set, err := b.Benchmarks()
	if err != nil {
		return err
	}
	d, err := report.New(res, set, cfg.BenchmarkSettings.Name, rep)
	if err != nil {
		return err
	}
	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := file.Writer(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err = d.Write(out, format); err != nil {
		return err
	}
	if out != os.Stdout {
		log.Infof(log.Backtester, "report written to %s", out.Name())
	}
	return nil
}

func serve(c *cli.Context) error {
	fmt.Print(common.ASCIILogo)
	cfg, b, err := setup()
	if err != nil {
		return err
	}
	srv, err := api.New(b, cfg.EngineSettings(), cfg.BenchmarkSettings.Name, cfg.Statistics())
	if err != nil {
		return err
	}
	previous := log.SetCustomLogHook(srv.LogHook())
	defer log.SetCustomLogHook(previous)
	return srv.ListenAndServe(c.Context, c.String("listen"))
}
