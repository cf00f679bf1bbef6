// tracefwd 读取 trace-hook 事件流，把调用记录转发到本地 collector.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version 构建时通过 ldflags 注入.
var version = "dev"

// flags 命令行参数.
type flags struct {
	configPath  string
	onlyError   bool
	endpoint    string
	input       string
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "tracefwd",
		Short: "Forward function call trace records to a local collector",
		Long: `tracefwd reads trace-hook events (one JSON object per line) and POSTs
each entry/exit record to the collector as JSON. In only-error mode
only records carrying an exception are forwarded.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "config file (yaml, json or toml; env: TRACEFWD_*)")
	cmd.Flags().BoolVar(&f.onlyError, "only-error", false, "forward only records that raised an exception")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "collector URL (default http://localhost:9596)")
	cmd.Flags().StringVarP(&f.input, "input", "i", "-", "event stream file, - for stdin")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "tracefwd:", err)
		os.Exit(1)
	}
}
