package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minimall/minimall/config"
	"github.com/minimall/minimall/internal/app"
	"github.com/minimall/minimall/internal/shopapi"
	"github.com/minimall/minimall/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	confFile = flag.String("c", "minimall.yml", "config file")
	initDb   = flag.Bool("initdb", false, "drop and re-create all tables, then seed")
	showVer  = flag.Bool("v", false, "print version and exit")
)

var (
	// set via -ldflags at build time
	BuildVersion = "dev"
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("minimall %s\n", BuildVersion)
		return
	}

	cfile := *confFile
	if _, err := os.Stat(cfile); err != nil {
		cfile = ""
	}
	cfg, err := config.LoadConfig(cfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	a := app.NewApplication(cfg)
	a.Init(cfg)
	defer a.Release()

	if *initDb {
		a.InitDb()
		zap.S().Info("database initialized")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.StartBackgroundJobs(ctx)

	ws := webserver.Init(a)
	shopapi.Register()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ws.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ws.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("server exited: %v", err)
	}
}
