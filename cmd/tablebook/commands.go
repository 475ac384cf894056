package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"tablebook/internal/modules/booking"
	"tablebook/internal/modules/notification"
)

func rootCommand(a *app) *Command {
	return &Command{
		Name:    "tablebook",
		Summary: "Book restaurant tables and follow what happens to them.",
		Subcommands: []*Command{
			registerCommand(a),
			loginCommand(a),
			logoutCommand(a),
			bookingsCommand(a),
			bookCommand(a),
			cancelCommand(a),
			watchCommand(a),
		},
	}
}

func registerCommand(a *app) *Command {
	var email string
	return &Command{
		Name:    "register",
		Summary: "Create an account and log in",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
			fs.StringVar(&email, "email", "", "account email (prompted when empty)")
			return fs
		},
		Run: func(args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			email, err := a.askIfEmpty(email, "Email")
			if err != nil {
				return err
			}
			password, err := a.console.Password(a.ctx, "Password")
			if err != nil {
				return err
			}
			confirm, err := a.console.Password(a.ctx, "Confirm password")
			if err != nil {
				return err
			}

			if err := a.auth.Register(a.ctx, email, password, confirm); err != nil {
				return err
			}
			a.console.Printf("Account created; you are logged in.\n")
			return nil
		},
	}
}

func loginCommand(a *app) *Command {
	var email string
	return &Command{
		Name:    "login",
		Summary: "Log in and remember the session",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVar(&email, "email", "", "account email (prompted when empty)")
			return fs
		},
		Run: func(args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			email, err := a.askIfEmpty(email, "Email")
			if err != nil {
				return err
			}
			password, err := a.console.Password(a.ctx, "Password")
			if err != nil {
				return err
			}

			if err := a.auth.Login(a.ctx, email, password); err != nil {
				return err
			}
			a.console.Printf("Logged in as %s.\n", email)
			return nil
		},
	}
}

func logoutCommand(a *app) *Command {
	return &Command{
		Name:    "logout",
		Summary: "Forget the stored session",
		Run: func(args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			if err := a.auth.Logout(a.ctx); err != nil {
				return err
			}
			a.console.Printf("Logged out.\n")
			return nil
		},
	}
}

func bookingsCommand(a *app) *Command {
	return &Command{
		Name:    "bookings",
		Summary: "List your bookings, newest first",
		Run: func(args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			if err := a.board.Refresh(a.ctx); err != nil {
				return err
			}
			a.console.RenderBookings(a.board.Bookings(), time.Now())
			return nil
		},
	}
}

func bookCommand(a *app) *Command {
	var in booking.CreateBookingInput
	return &Command{
		Name:    "book",
		Summary: "Request a table",
		Usage:   "tablebook book --date YYYY-MM-DD --time HH:mm [--party N]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("book", pflag.ContinueOnError)
			fs.StringVar(&in.Date, "date", "", "local date, YYYY-MM-DD (prompted when empty)")
			fs.StringVar(&in.Time, "time", "", "local time, HH:mm (prompted when empty)")
			fs.StringVar(&in.PartySize, "party", "2", "number of guests")
			return fs
		},
		Run: func(args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			var err error
			if in.Date, err = a.askIfEmpty(in.Date, "Date (YYYY-MM-DD)"); err != nil {
				return err
			}
			if in.Time, err = a.askIfEmpty(in.Time, "Time (HH:mm)"); err != nil {
				return err
			}

			created, err := a.board.Create(a.ctx, in)
			if err != nil {
				return err
			}
			a.console.Printf("Booking created. It stays pending until the restaurant handles it.\n")
			a.console.RenderBooking(*created)
			return nil
		},
	}
}

func cancelCommand(a *app) *Command {
	var yes bool
	return &Command{
		Name:    "cancel",
		Summary: "Cancel a booking",
		Usage:   "tablebook cancel <booking-id> [--yes]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("cancel", pflag.ContinueOnError)
			fs.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("cancel takes exactly one booking id")
			}
			id := args[0]

			if err := a.connect(); err != nil {
				return err
			}
			if err := a.board.Refresh(a.ctx); err != nil {
				return err
			}

			b, ok := a.board.Get(id)
			if !ok {
				return booking.ErrBookingNotFound
			}
			now := time.Now()
			if !booking.IsCancellable(b, now) {
				return &booking.RefusalError{BookingID: id, Reason: booking.CancellationRefusalReason(b, now)}
			}

			a.console.RenderBooking(b)
			if !yes {
				ok, err := a.console.Confirm(a.ctx, "Cancel this booking?")
				if err != nil {
					return err
				}
				if !ok {
					a.console.Printf("Kept.\n")
					return nil
				}
			}

			cancelled, err := a.board.Cancel(a.ctx, id, time.Now())
			if err != nil {
				return err
			}
			a.console.Printf("Cancelled.\n")
			a.console.RenderBooking(*cancelled)
			return nil
		},
	}
}

func watchCommand(a *app) *Command {
	var interval time.Duration
	return &Command{
		Name:    "watch",
		Summary: "Show bookings and pop up notifications as they arrive",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("watch", pflag.ContinueOnError)
			fs.DurationVar(&interval, "interval", a.cfg.PollInterval, "time between notification polls")
			return fs
		},
		Run: func(args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			if _, err := a.auth.RequireToken(a.ctx); err != nil {
				return err
			}

			view := &bookingView{board: a.board, app: a}
			if err := view.Refresh(a.ctx); err != nil {
				return err
			}

			loop := notification.NewLoop(notification.Deps{
				Tokens:    a.auth,
				Fetcher:   a.api,
				Acker:     a.api,
				Refresher: view,
				Presenter: a.console,
			}, notification.Config{
				Interval:     interval,
				FetchTimeout: a.cfg.FetchTimeout,
			}, a.log)

			a.console.Printf("Watching for notifications every %s. Press Ctrl+C to stop.\n", interval)
			loop.Run(a.ctx)
			loop.Wait()
			return nil
		},
	}
}

// bookingView refreshes the board and reprints it.
type bookingView struct {
	board *booking.Board
	app   *app
}

func (v *bookingView) Refresh(ctx context.Context) error {
	if err := v.board.Refresh(ctx); err != nil {
		return err
	}
	v.app.console.RenderBookings(v.board.Bookings(), time.Now())
	return nil
}

func (a *app) askIfEmpty(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return a.console.Ask(a.ctx, label)
}
