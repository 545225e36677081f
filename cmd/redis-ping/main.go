// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Command redis-ping is a small diagnostic CLI built on respclient: it
// connects to a server, issues PING (or an arbitrary command given with
// -cmd), and prints the reply. It exists to exercise the library end to
// end the way a caller would, not as a general-purpose redis-cli clone.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nishisan-dev/respclient"
)

func main() {
	url := flag.String("url", "redis://localhost:6379", "redis:// or rediss:// connection URL")
	configPath := flag.String("config", "", "path to a YAML options file (overrides -url)")
	cmd := flag.String("cmd", "PING", "command to run, space-separated (e.g. 'GET mykey')")
	timeout := flag.Duration("timeout", 5*time.Second, "overall command timeout")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	opts, err := loadOptions(*configPath, *url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading options: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		opts.Logging.Level = *logLevel
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := respclient.New(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error connecting: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	fields := strings.Fields(*cmd)
	if len(fields) == 0 {
		fmt.Fprintln(os.Stderr, "empty -cmd")
		os.Exit(1)
	}

	args := make([]respclient.Arg, len(fields)-1)
	for i, f := range fields[1:] {
		args[i] = respclient.Str(f)
	}

	reply, err := client.Do(ctx, fields[0], args...)
	if err != nil {
		if errReply, ok := respclient.IsErrorReply(err); ok {
			fmt.Fprintf(os.Stderr, "server error: %s\n", errReply.Line)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "command failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(reply.String())
}

func loadOptions(configPath, url string) (respclient.Options, error) {
	if configPath != "" {
		return respclient.LoadOptions(configPath)
	}
	return respclient.ParseURL(url)
}
