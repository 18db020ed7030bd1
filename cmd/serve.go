package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tipscope/internal/config"
	"github.com/KaramelBytes/tipscope/internal/dashboard"
	"github.com/KaramelBytes/tipscope/internal/server"
)

var (
	srvAddr       string
	srvDelimiter  string
	srvSheetName  string
	srvSheetIndex int
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the dashboard outputs as JSON and PNG over HTTP",
	Long: `Start an HTTP server holding one dashboard session. Selection changes are
PUT to /api/selection/{category,field,cell}; derived outputs are read from
/api/heatmap, /api/bars and /api/scatter. If the table fails to load the
server still starts and data endpoints answer 503.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		path := dataPath(args)
		topt, err := loaderOptions(cmd, srvDelimiter, srvSheetName, srvSheetIndex)
		if err != nil {
			return err
		}
		layout, err := c.Layout()
		if err != nil {
			return err
		}
		sess, err := dashboard.Open(path, topt, layout, logger)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: serving without data: %v\n", err)
		} else {
			st, err := c.Selection()
			if err != nil {
				return err
			}
			if err := sess.Select(st); err != nil {
				return err
			}
		}

		addr := c.ListenAddr
		if srvAddr != "" {
			addr = srvAddr
		}
		if addr == "" {
			addr = config.DefaultListenAddr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx, addr, server.New(sess, logger).Handler(), logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (overrides listen_addr)")
	serveCmd.Flags().StringVar(&srvDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	serveCmd.Flags().StringVar(&srvSheetName, "sheet-name", "", "XLSX: sheet name to load")
	serveCmd.Flags().IntVar(&srvSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}
