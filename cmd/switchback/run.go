package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/switchback"
	fileadapter "github.com/aretw0/switchback/internal/adapters/file"
	redisadapter "github.com/aretw0/switchback/internal/adapters/redis"
	"github.com/aretw0/switchback/internal/cli"
	"github.com/aretw0/switchback/pkg/domain"
	"github.com/aretw0/switchback/pkg/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Walk a graph end to end with simulated nodes",
	Long: `Executes the newest graph description for an entrypoint with simulated
node functions: every node follows its first declared transition. This
traces the happy path of a graph without any implementation code, and
the process exits with the exit code the terminal node declares.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWalkthrough(cmd); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("entry", "", "Entrypoint to run")
	runCmd.Flags().String("redis", "", "Redis address for recording run history (optional)")
	runCmd.Flags().String("record-dir", "", "Directory for file-based run history (optional)")
	runCmd.Flags().String("run-id", "", "Run identifier (default: generated)")
	_ = runCmd.MarkFlagRequired("entry")
}

// runRecorder persists one run's history; both the Redis and the file
// recorder satisfy it.
type runRecorder interface {
	SaveResult(ctx context.Context, result *domain.RunResult) error
}

func runWalkthrough(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entry, _ := cmd.Flags().GetString("entry")
	redisAddr, _ := cmd.Flags().GetString("redis")
	recordDir, _ := cmd.Flags().GetString("record-dir")
	runID, _ := cmd.Flags().GetString("run-id")
	if runID == "" {
		runID = uuid.NewString()
	}

	logger := appLogger(cmd)
	reporter := cli.NewReporter()

	path, err := cli.FindLatestGraph(graphsDir(cmd), entry)
	if err != nil {
		return err
	}

	wb := switchback.New(switchback.WithLogger(logger))
	graph, err := wb.Load(path)
	if err != nil {
		return err
	}
	registerSimulation(wb, graph)

	observer := func(node, state string, _ any) {
		reporter.Infof("%s -> %s", node, state)
	}
	var recorder runRecorder
	switch {
	case redisAddr != "":
		redisRec := redisadapter.New(redisAddr, "", 0, redisadapter.WithLogger(logger))
		recorder = redisRec
		observer = runner.Composite(observer, redisRec.Observer(ctx, runID))

		// Redis also serializes concurrent runs of the same entrypoint.
		locker := redisadapter.NewLocker(redisRec.Client(), "")
		unlock, err := locker.Acquire(ctx, entry, 10*time.Minute)
		if err != nil {
			return fmt.Errorf("cannot run %s: %w", entry, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				logger.Warn("failed to release run lock", "entrypoint", entry, "err", err)
			}
		}()
	case recordDir != "":
		fileRec := fileadapter.New(recordDir, fileadapter.WithLogger(logger))
		recorder = fileRec
		observer = runner.Composite(observer, fileRec.Observer(runID))
	}

	result, err := wb.Run(ctx, graph, runner.WithRunID(runID), runner.WithObserver(observer))
	if err != nil {
		return err
	}

	if recorder != nil {
		if err := recorder.SaveResult(ctx, result); err != nil {
			logger.Warn("failed to persist run result", "err", err)
		}
	}

	if result.IsSuccess() {
		reporter.Successf("run %s finished at %s after %d iteration(s)", result.RunID, result.ExitState(), result.Iterations)
	} else {
		reporter.Failf("run %s finished at %s after %d iteration(s)", result.RunID, result.ExitState(), result.Iterations)
	}
	if code := result.ExitCode(); code != 0 {
		os.Exit(code)
	}
	return nil
}

// registerSimulation fills the workbench registry with stand-in functions:
// each node reports the first transition its graph declares, so a run traces
// the graph's primary path.
func registerSimulation(wb *switchback.Workbench, graph *domain.TransitionGraph) {
	reg := wb.Registry()
	reg.RegisterStart(graph.StartNode, func(ctx context.Context) (any, domain.Outcome) {
		return map[string]any{"simulated": true}, firstOutcome(graph, graph.StartNode)
	})
	for _, node := range graph.Nodes {
		if node.IsExit {
			reg.RegisterExit(node.Name, func(ctx context.Context, state any) any {
				return state
			})
			continue
		}
		// The start node is also registered as a regular node, in case a
		// cycle routes back to it.
		name := node.Name
		reg.RegisterNode(name, func(ctx context.Context, state any) (any, domain.Outcome) {
			return state, firstOutcome(graph, name)
		})
	}
}

func firstOutcome(graph *domain.TransitionGraph, node string) domain.Outcome {
	states := graph.StatesFrom(node)
	if len(states) == 0 {
		return domain.Success("")
	}
	parts := strings.SplitN(states[0], domain.StateSeparator, 2)
	if len(parts) != 2 {
		return domain.Success("")
	}
	return domain.Outcome{Type: parts[0], Detail: parts[1]}
}
