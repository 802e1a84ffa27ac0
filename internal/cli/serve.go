package cli

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"itinera/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve plan generation over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pl, err := a.planner()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				a.cfg.HTTP.Addr = addr
			}
			if !a.cfg.Log.Verbose {
				gin.SetMode(gin.ReleaseMode)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s\n", a.cfg.HTTP.Addr)
			srv := server.New(pl, server.Options{Addr: a.cfg.HTTP.Addr, RequestTimeout: a.cfg.HTTP.RequestTimeout})
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
