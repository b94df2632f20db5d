// Command coordinator follows a user's bids and contracts from the terminal.
//
//	coordinator --role client rows
//	coordinator --role client watch
//	coordinator --role freelancer transition <contract-id> <action> [message]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"linksphere/internal/client"
	"linksphere/internal/config"
	"linksphere/internal/coordinator"
	"linksphere/internal/domain/entities"
	"linksphere/internal/domain/lifecycle"
	"linksphere/internal/infrastructure/events"
	"linksphere/internal/infrastructure/logging"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand once the root has set it up.
type app struct {
	role   string
	cfg    *config.Config
	logger zerolog.Logger
	api    *client.Client
	coord  *coordinator.Coordinator
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "coordinator",
		Short:             "Follow bids, contracts and payments from the terminal",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.coord != nil {
				a.coord.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.role, "role", "client", "acting role: client or freelancer")
	root.AddCommand(a.rowsCmd(), a.watchCmd(), a.transitionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	role, err := entities.ParseRole(a.role)
	if err != nil {
		return err
	}

	a.api = client.New(cfg.APIBaseURL, client.StaticToken(cfg.APIToken), client.WithTimeout(cfg.RequestTimeout))
	a.coord = coordinator.New(a.api, coordinator.Options{
		Role:    role,
		Retries: cfg.ReconcileRetries,
		Delay:   cfg.ReconcileDelay,
		Logger:  a.logger,
	})
	return a.coord.Refresh(cmd.Context())
}

func (a *app) rowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rows",
		Short: "Print every bid with its contract, payment status and actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printRows(cmd.OutOrStdout(), a.coord)
		},
	}
}

func (a *app) transitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transition <contract-id> <action> [message]",
		Short: "Apply a lifecycle action to a contract",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contract, err := a.coord.Transition(cmd.Context(), args[0], lifecycle.Action(args[1]), strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), contract)
		},
	}
}

// watchCmd bridges the server's event stream into a local bus that the
// coordinator reconciles from, printing the projected view after each event.
func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream payment events and print the view after each one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			bus := events.NewBus(a.cfg.EventBufferSize, a.logger)
			defer bus.Close()

			printer := bus.Subscribe(nil)
			go a.coord.Start(ctx, bus)
			go func() {
				for ev := range printer.C {
					a.logger.Info().Str("contract_id", ev.ContractID).Str("payment_type", string(ev.PaymentType)).Msg("payment received")
					_ = printRows(out, a.coord)
				}
			}()

			if err := printRows(out, a.coord); err != nil {
				return err
			}
			return a.api.StreamPaymentEvents(ctx, nil, bus.PublishPaymentSuccess)
		},
	}
}

type rowView struct {
	BidID         string   `json:"bid_id"`
	BidStatus     string   `json:"bid_status"`
	ContractID    string   `json:"contract_id,omitempty"`
	Status        string   `json:"status,omitempty"`
	PaymentStatus string   `json:"payment_status"`
	Pending       bool     `json:"pending,omitempty"`
	Stale         bool     `json:"stale,omitempty"`
	Actions       []string `json:"actions"`
}

func printRows(w io.Writer, coord *coordinator.Coordinator) error {
	rows := coord.Rows()
	out := make([]rowView, 0, len(rows))
	for _, r := range rows {
		v := rowView{
			BidID:         r.Bid.ID,
			BidStatus:     string(r.Bid.Status),
			PaymentStatus: string(r.PaymentStatus),
			Pending:       r.Pending,
			Stale:         r.Stale,
			Actions:       make([]string, 0, len(r.Actions)),
		}
		if r.Contract != nil {
			v.ContractID = r.Contract.ID
			v.Status = string(r.Contract.Status)
		}
		for _, a := range r.Actions {
			v.Actions = append(v.Actions, string(a))
		}
		out = append(out, v)
	}
	return printJSON(w, out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
