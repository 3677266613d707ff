package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/api"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/config"
	"github.com/urfave/cli/v2"
)

const defaultTimeout = time.Minute * 5

var (
	host    string
	timeout time.Duration
)

var idFlag = &cli.StringFlag{
	Name:     "id",
	Usage:    "the run id",
	Required: true,
}

func jsonOutput(body []byte) {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", " "); err != nil {
		fmt.Print(string(body))
		return
	}
	fmt.Println(out.String())
}

// request sends a request to the backtester server and returns the body of a
// successful response
func request(c *cli.Context, method, path string, body any) ([]byte, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(host, "/")+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e api.ErrorResponse
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("%s: %s", resp.Status, e.Error)
		}
		return nil, fmt.Errorf("%s: %s", resp.Status, respBody)
	}
	return respBody, nil
}

var submitRunCommand = &cli.Command{
	Name:      "submitrun",
	Usage:     "runs the strategy of a config file on the server",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "path",
			Usage:    "the strategy config file",
			Required: true,
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := config.ReadConfigFromFile(c.String("path"))
		if err != nil {
			return err
		}
		resp, err := request(c, http.MethodPost, "/v1/runs", api.RunRequest{
			Settings:   cfg.EngineSettings(),
			Benchmark:  cfg.BenchmarkSettings.Name,
			Statistics: cfg.Statistics(),
		})
		if err != nil {
			return err
		}
		jsonOutput(resp)
		return nil
	},
}

var listRunsCommand = &cli.Command{
	Name:  "listruns",
	Usage: "lists all runs held by the server",
	Action: func(c *cli.Context) error {
		resp, err := request(c, http.MethodGet, "/v1/runs", nil)
		if err != nil {
			return err
		}
		jsonOutput(resp)
		return nil
	},
}

var getRunCommand = &cli.Command{
	Name:  "getrun",
	Usage: "shows the summary of a run",
	Flags: []cli.Flag{idFlag},
	Action: func(c *cli.Context) error {
		resp, err := request(c, http.MethodGet, "/v1/runs/"+url.PathEscape(c.String("id")), nil)
		if err != nil {
			return err
		}
		jsonOutput(resp)
		return nil
	},
}

var getReportCommand = &cli.Command{
	Name:  "getreport",
	Usage: "prints the evaluation report of a finished run",
	Flags: []cli.Flag{
		idFlag,
		&cli.StringFlag{
			Name:  "format",
			Value: "text",
			Usage: "text, json or html",
		},
	},
	Action: func(c *cli.Context) error {
		path := "/v1/runs/" + url.PathEscape(c.String("id")) + "/report?format=" + url.QueryEscape(c.String("format"))
		resp, err := request(c, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		fmt.Print(string(resp))
		return nil
	},
}

var clearRunCommand = &cli.Command{
	Name:  "clearrun",
	Usage: "removes a run that is not running",
	Flags: []cli.Flag{idFlag},
	Action: func(c *cli.Context) error {
		if _, err := request(c, http.MethodDelete, "/v1/runs/"+url.PathEscape(c.String("id")), nil); err != nil {
			return err
		}
		fmt.Printf("run %s cleared\n", c.String("id"))
		return nil
	},
}

var clearAllRunsCommand = &cli.Command{
	Name:  "clearallruns",
	Usage: "removes every run that is not running",
	Action: func(c *cli.Context) error {
		resp, err := request(c, http.MethodDelete, "/v1/runs", nil)
		if err != nil {
			return err
		}
		jsonOutput(resp)
		return nil
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "btcli"
	app.EnableBashCompletion = true
	app.Usage = "command line interface for the backtester HTTP server"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "host",
			Value:       "http://localhost:9050",
			Usage:       "the backtester server to connect to",
			Destination: &host,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Value:       defaultTimeout,
			Usage:       "the context timeout value for requests",
			Destination: &timeout,
		},
	}
	app.Commands = []*cli.Command{
		submitRunCommand,
		listRunsCommand,
		getRunCommand,
		getReportCommand,
		clearRunCommand,
		clearAllRunsCommand,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
