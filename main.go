package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

type procConfig struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

const assetsDir = "web"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	build := []procConfig{
		{
			Name: "build-ui-wasm",
			Args: []string{"go", "build", "-o", filepath.Join(assetsDir, "main.wasm"), "./cmd/ui-wasm"},
			Env:  []string{"GOOS=js", "GOARCH=wasm"},
		},
	}
	serve := []procConfig{
		{
			Name: "ui",
			Args: []string{
				"go", "run", "./cmd/ui-server",
				"-listen", "127.0.0.1:4173",
				"-assets", assetsDir,
				"-log-level", "debug",
			},
		},
	}

	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", assetsDir, err)
		os.Exit(1)
	}
	if err := runAll(ctx, build); err != nil {
		fmt.Fprintf(os.Stderr, "gbpl-site build failed: %v\n", err)
		os.Exit(1)
	}
	if err := copyWasmExec(assetsDir); err != nil {
		fmt.Fprintf(os.Stderr, "gbpl-site: %v\n", err)
	}
	if err := runAll(ctx, serve); err != nil {
		fmt.Fprintf(os.Stderr, "gbpl-site exited with error: %v\n", err)
		os.Exit(1)
	}
}

// copyWasmExec places the toolchain's wasm_exec.js next to main.wasm.
func copyWasmExec(dir string) error {
	out, err := exec.Command("go", "env", "GOROOT").Output()
	if err != nil {
		return fmt.Errorf("locate GOROOT: %w", err)
	}
	root := strings.TrimSpace(string(out))
	for _, rel := range []string{"lib/wasm/wasm_exec.js", "misc/wasm/wasm_exec.js"} {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		return os.WriteFile(filepath.Join(dir, "wasm_exec.js"), data, 0o644)
	}
	return fmt.Errorf("wasm_exec.js not found under %s", root)
}

func runAll(ctx context.Context, procs []procConfig) error {
	if len(procs) == 0 {
		return fmt.Errorf("no processes configured")
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(procs))

	for _, cfg := range procs {
		wg.Add(1)
		go func(cfg procConfig) {
			defer wg.Done()
			cmd := exec.CommandContext(ctx, cfg.Args[0], cfg.Args[1:]...)
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if cfg.Dir != "" {
				cmd.Dir = cfg.Dir
			}
			if len(cfg.Env) > 0 {
				cmd.Env = append(append([]string{}, os.Environ()...), cfg.Env...)
			}
			if err := cmd.Start(); err != nil {
				errCh <- fmt.Errorf("%s start: %w", cfg.Name, err)
				return
			}
			if err := cmd.Wait(); err != nil {
				// If the context was cancelled, treat the exit as expected.
				select {
				case <-ctx.Done():
					return
				default:
				}
				errCh <- fmt.Errorf("%s exited: %w", cfg.Name, err)
			}
		}(cfg)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		shutdownDelay := time.After(2 * time.Second)
		select {
		case <-done:
		case <-shutdownDelay:
		}
	case err := <-errCh:
		return err
	case <-done:
	}
	return nil
}
