package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/punchclock/internal/config"
	"github.com/sadopc/punchclock/internal/server"
	"github.com/sadopc/punchclock/internal/store"
	"github.com/sadopc/punchclock/internal/tracking"
	"github.com/sadopc/punchclock/internal/tui"
)

func main() {
	var (
		serve       = flag.Bool("serve", false, "run the HTTP API instead of the terminal UI")
		addr        = flag.String("addr", "", "listen address for -serve (default $ADDR or :8080)")
		userID      = flag.Int64("user", 0, "act as this user id")
		verbose     = flag.Bool("v", false, "debug logging")
		initCompany = flag.String("init-company", "", "create a company with an admin user and exit")
		initUser    = flag.String("init-user", "Admin", `admin name for -init-company ("First Last")`)
		printToken  = flag.Bool("token", false, "print a bearer token for -user and exit")
	)
	flag.Parse()

	if err := run(*serve, *addr, *userID, *verbose, *initCompany, *initUser, *printToken); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(serve bool, addr string, userID int64, verbose bool, initCompany, initUser string, printToken bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	if printToken {
		if userID == 0 {
			return errors.New("-token needs -user")
		}
		tok, err := server.IssueToken([]byte(cfg.JWTSecret), userID, cfg.TokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	}

	// The terminal UI owns stdout, so it logs to a file.
	logOut := io.Writer(os.Stdout)
	if !serve && initCompany == "" {
		f, err := openLogFile()
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	svc := tracking.NewService(st, st, cfg.Location(), log)

	switch {
	case initCompany != "":
		return bootstrap(ctx, st, initCompany, initUser)
	case serve:
		if addr == "" {
			addr = cfg.Addr
		}
		return serveHTTP(ctx, server.New(svc, log, []byte(cfg.JWTSecret)), addr, log)
	}

	if userID == 0 {
		return errors.New("-user is required for the terminal UI")
	}
	caller, err := svc.Identify(ctx, userID)
	if err != nil {
		return fmt.Errorf("user %d: %w", userID, err)
	}
	p := tea.NewProgram(tui.NewApp(svc, caller), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func openLogFile() (*os.File, error) {
	path, err := xdg.StateFile(filepath.Join("punchclock", "punchclock.log"))
	if err != nil {
		return nil, fmt.Errorf("resolve log path: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func serveHTTP(ctx context.Context, s *server.Server, addr string, log *slog.Logger) error {
	srv := s.HTTPServer(addr)
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// bootstrap creates a company with time tracking enabled and one admin
// allowed to view everyone's entries.
func bootstrap(ctx context.Context, st *store.Store, company, admin string) error {
	c, err := st.CreateCompany(ctx, company, true)
	if err != nil {
		return err
	}
	first, last, _ := strings.Cut(strings.TrimSpace(admin), " ")
	u, err := st.CreateUser(ctx, store.User{
		CompanyID:           c.ID,
		FirstName:           first,
		LastName:            strings.TrimSpace(last),
		JobTitle:            "Administrator",
		CanViewTimeTracking: true,
	})
	if err != nil {
		return err
	}
	fmt.Printf("company %d (%s)\nuser %d (%s)\n", c.ID, c.Name, u.ID, u.FullName())
	return nil
}
