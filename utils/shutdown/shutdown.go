package shutdown

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type Server interface {
	Shutdown(ctx context.Context) error
}

// WaitForShutdown blocks until SIGINT or SIGTERM, drains srv and then runs
// cleanups in reverse order.
func WaitForShutdown(srv Server, timeout time.Duration, cleanups ...func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("Shutting down server... Received signal: %v", sig)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := srv.Shutdown(ctx)

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	if err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server gracefully stopped.")
}
