package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/harubang/fengshui-site/auth"
	"github.com/harubang/fengshui-site/backend"
	"github.com/harubang/fengshui-site/internal/config"
	"github.com/harubang/fengshui-site/server"
)

const sessionCleanupInterval = time.Hour

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return fmt.Errorf("config.New %w", err)
	}
	displayAppname(c.GetAppName())

	factory := backend.NewFactory(c)
	defer factory.Close()

	client := factory.Get()
	if client == nil {
		return fmt.Errorf("backend client unavailable: %w", factory.Err())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Process-level auth observer: mirrors sign-in/sign-out events into a
	// state snapshot and logs them for the site operator.
	observer := auth.NewObserver(client.WithCookies(backend.NewMemoryCookies()), client.Events)
	observer.Start(ctx)
	defer observer.Stop()

	go cleanupSessions(ctx, client)

	siteServer, err := server.New(c, factory)
	if err != nil {
		return fmt.Errorf("server.New %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: siteServer}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// cleanupSessions drops expired sessions on a fixed interval until ctx ends.
func cleanupSessions(ctx context.Context, client *backend.Client) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Auth.CleanupExpiredSessions(ctx); err != nil {
				log.Printf("Session cleanup failed: %v\n", err)
			}
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
