package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/config"
	"github.com/ugparu/kahawai/rate"
	"github.com/ugparu/kahawai/session"
	"github.com/ugparu/kahawai/status"
	"github.com/ugparu/kahawai/transport"
	"github.com/ugparu/kahawai/utils/logger"
	"github.com/ugparu/kahawai/utils/sdp"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kahawai",
		Short:         "Shared media transport setup for ST 2110 encode and decode sessions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) (err error) {
			if cfg, err = config.Load(cfgFile); err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			lvl, err := logger.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			logger.Init(lvl)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn or error")

	root.AddCommand(newClassifyCmd(), newSDPCmd(), newServeCmd())
	return root
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify RATE...",
		Short: "Map frame rates such as 30000/1001 or 25 onto supported transport rates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed bool
			for _, arg := range args {
				r, err := kahawai.ParseRational(arg)
				if err != nil {
					return err
				}
				fps, err := rate.Classify(r)
				if err != nil {
					failed = true
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\t%v\n", arg, fps, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", arg, fps)
			}
			if failed {
				return errors.New("some rates are not supported")
			}
			return nil
		},
	}
}

func newSDPCmd() *cobra.Command {
	var (
		v       sdp.Video
		name    string
		source  string
		rateStr string
	)
	cmd := &cobra.Command{
		Use:   "sdp",
		Short: "Print an ST 2110-20 session description for the configured port",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if rateStr == "" {
				rateStr = cfg.Session.FrameRate
			}
			if source == "" {
				source = cfg.Transport.LocalAddr
			}
			if v.Rate, err = kahawai.ParseRational(rateStr); err != nil {
				return err
			}
			out, err := sdp.Generate(sdp.Session{Name: name, Source: source}, []sdp.Video{v})
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "session name")
	cmd.Flags().StringVar(&source, "source", "", "source IPv4 address, defaults to transport.local_addr")
	cmd.Flags().StringVar(&v.Destination, "dest", "239.0.0.1", "destination IPv4 address")
	cmd.Flags().IntVar(&v.Port, "port", 20000, "destination UDP port")
	cmd.Flags().IntVar(&v.Width, "width", 1920, "frame width")
	cmd.Flags().IntVar(&v.Height, "height", 1080, "frame height")
	cmd.Flags().StringVar(&rateStr, "rate", "", "frame rate, defaults to session.frame_rate")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Bring the transport up for the configured sessions and serve status until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, transport.Default(), prometheus.DefaultGatherer)
		},
	}
}

// sessionManager is the part of transport.Manager serve drives.
type sessionManager interface {
	session.Acquirer
	status.Snapshotter
	Teardown() error
	String() string
}

// serve opens the configured sessions on m and holds them until ctx is done
// or the status server dies. Sessions are closed before m is torn down, also
// when opening fails halfway.
func serve(ctx context.Context, conf *config.Config, m sessionManager, gatherer prometheus.Gatherer) (err error) {
	frameRate, err := conf.Session.Rate()
	if err != nil {
		return err
	}

	// Teardown belongs to the shutdown path, not to the last release.
	defer func() {
		if tErr := m.Teardown(); tErr != nil {
			logger.Errorf(m, "Teardown failed: %v", tErr)
			err = errors.Join(err, tErr)
		}
	}()

	var sessions []*session.Session
	defer func() {
		for _, s := range sessions {
			if cErr := s.Close(); cErr != nil {
				logger.Errorf(s, "Close failed: %v", cErr)
				err = errors.Join(err, cErr)
			}
		}
	}()

	open := func(kind session.Kind, n int) error {
		for range n {
			s := session.New(kind, m, conf.Transport, frameRate)
			if oErr := s.Open(); oErr != nil {
				return oErr
			}
			sessions = append(sessions, s)
		}
		return nil
	}
	if err = open(session.Encode, conf.Session.Encoders); err != nil {
		return err
	}
	if err = open(session.Decode, conf.Session.Decoders); err != nil {
		return err
	}

	var dead <-chan struct{}
	if conf.Status.Listen != "" {
		srv := status.New(conf.Status.Listen, m, gatherer)
		go srv.Start()
		defer srv.Close()
		dead = srv.Dead()
	}

	logger.Infof(m, "Serving %d sessions", len(sessions))
	select {
	case <-ctx.Done():
		logger.Infof(m, "Shutting down: %v", context.Cause(ctx))
	case <-dead:
		logger.Warning(m, "Status server stopped")
	}
	return nil
}
