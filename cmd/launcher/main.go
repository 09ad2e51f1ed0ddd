package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/hetulpatel/sqlchat/internal/config"
)

func main() {
	dir := config.ExecutableDir()
	if err := os.Chdir(dir); err != nil {
		fmt.Printf("Error running frontend: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Starting Quick Commerce Price Comparison Frontend...")
	fmt.Println("Press Ctrl+C to stop")

	cmd := exec.CommandContext(ctx, frontendBinary(dir), os.Args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }

	err := cmd.Run()
	if ctx.Err() != nil {
		fmt.Println("\nFrontend stopped.")
		return
	}
	if err != nil {
		fmt.Printf("Error running frontend: %v\n", err)
		code := 1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			code = exitErr.ExitCode()
		}
		os.Exit(code)
	}
}

// frontendBinary prefers FRONTEND_BIN, then a frontend binary next to the
// launcher, then whatever is on PATH.
func frontendBinary(dir string) string {
	if bin := os.Getenv("FRONTEND_BIN"); bin != "" {
		return bin
	}
	name := "frontend"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	local := filepath.Join(dir, name)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	return name
}
