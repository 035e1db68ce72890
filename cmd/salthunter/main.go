// Command salthunter mines CREATE2 deployment salts whose derived contract
// address matches user-supplied patterns.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaultedge/salthunter/internal/config"
	"github.com/vaultedge/salthunter/internal/logging"
	"github.com/vaultedge/salthunter/internal/ui"
	"github.com/vaultedge/salthunter/pkg/create2"
	"github.com/vaultedge/salthunter/pkg/search"
)

const (
	version    = "0.1"
	updateRate = 250 * time.Millisecond
)

var flags struct {
	deployer     string
	bytecodeFile string
	patternsFile string
	output       string
	attempts     uint64
	threads      int
	verbose      bool
	jsonLogs     bool
}

func main() {
	root := &cobra.Command{
		Use:           "salthunter",
		Short:         "CREATE2 vanity salt generator for CreateX deployments",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	root.Flags().StringVar(&flags.deployer, "deployer", "", "address that will call the factory")
	root.Flags().StringVar(&flags.bytecodeFile, "bytecode-file", "", "path to the bytecode JSON record")
	root.Flags().StringVar(&flags.patternsFile, "patterns-file", "", "path to the patterns JSON file")
	root.Flags().StringVar(&flags.output, "output", "", "output file for found salts (default ./output/vanity-salts-create2_<ts>.json)")
	root.Flags().Uint64Var(&flags.attempts, "attempts", 1_000_000, "total trial budget")
	root.Flags().IntVar(&flags.threads, "threads", 0, "worker count (0 = one per CPU core)")
	root.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	root.Flags().BoolVar(&flags.jsonLogs, "json-logs", false, "emit logs as JSON")

	for _, f := range []string{"deployer", "bytecode-file", "patterns-file"} {
		cobra.CheckErr(root.MarkFlagRequired(f))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "salthunter: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logging.Setup("salthunter", flags.verbose, flags.jsonLogs)

	deployer, err := config.ParseDeployer(flags.deployer)
	if err != nil {
		return err
	}

	bytecode, err := config.LoadBytecode(flags.bytecodeFile)
	if err != nil {
		return err
	}
	codeHash, err := bytecode.CodeHash()
	if err != nil {
		return err
	}

	specs, err := config.LoadPatterns(flags.patternsFile)
	if err != nil {
		return err
	}
	patterns, err := search.CompileMatchers(specs)
	if err != nil {
		return err
	}

	output, err := resolveOutputPath(flags.output)
	if err != nil {
		return err
	}

	log.Info("configuration loaded",
		"contract", bytecode.ContractName,
		"deployer", deployer.Hex(),
		"codeHash", codeHash.Hex(),
		"patterns", len(patterns),
		"output", output)

	engine := search.New(search.Config{
		Context:  create2.NewContext(deployer, codeHash),
		Patterns: patterns,
		Budget:   flags.attempts,
		Workers:  flags.threads,
		Output:   output,
		Logger:   log,
	})

	workers := flags.threads
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	ui.PrintBanner(version)
	ui.PrintSearchInfo(bytecode.ContractName, deployer.Hex(), patterns, flags.attempts, workers)

	// Progress rendering runs beside the engine, polling its stats.
	renderDone := make(chan struct{})
	renderStop := make(chan struct{})
	go func() {
		defer close(renderDone)
		ticker := time.NewTicker(updateRate)
		defer ticker.Stop()
		frame := 0
		for {
			select {
			case <-ticker.C:
				ui.PrintProgress(engine.Stats(), flags.attempts, frame)
				frame++
			case <-renderStop:
				return
			}
		}
	}()

	start := time.Now()
	summary, runErr := engine.Run(ctx)
	close(renderStop)
	<-renderDone
	ui.ClearLine()

	ui.PrintSummary(summary, output, time.Since(start), engine.Stats().Attempts)

	// An interrupt is a first-class exit, not a failure: the summary flush
	// already happened inside the engine.
	if errors.Is(runErr, context.Canceled) {
		log.Info("search interrupted", "results", len(summary.Results))
		return nil
	}
	return runErr
}

// resolveOutputPath appends a timestamp to the output file name so repeated
// runs never clobber each other, and ensures the parent directory exists.
func resolveOutputPath(path string) (string, error) {
	ts := time.Now().UTC().Format("2006-01-02_150405")
	if path == "" {
		path = filepath.Join("output", fmt.Sprintf("vanity-salts-create2_%s.json", ts))
	} else {
		dir, base := filepath.Split(path)
		ext := filepath.Ext(base)
		stem := base[:len(base)-len(ext)]
		if ext == "" {
			ext = ".json"
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, ts, ext))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	return path, nil
}
