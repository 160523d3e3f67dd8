// Command rrtplan runs the RRT*-with-APF-bias planner against a PNG
// occupancy map from the command line, writing periodic checkpoints and a
// final summary table.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/basemotion/rrtapf/config"
	"github.com/basemotion/rrtapf/envadapter/raster"
	"github.com/basemotion/rrtapf/logging"
	"github.com/basemotion/rrtapf/pose"
	"github.com/basemotion/rrtapf/rrtplan"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger := logging.NewDevelopment()
	if err := mainWithArgs(ctx, os.Args[1:], logger); err != nil {
		logger.CErrorf(ctx, "rrtplan: %v", err)
		os.Exit(1)
	}
}

func mainWithArgs(ctx context.Context, args []string, logger *logging.Logger) error {
	app := &cli.App{
		Name:  "rrtplan",
		Usage: "plan a path across a PNG occupancy map with RRT*-with-APF",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "map", Required: true, Usage: "path to occupancy PNG"},
			&cli.StringFlag{Name: "config", Required: true, Usage: "path to planner config JSON"},
			&cli.Float64Flag{Name: "start-x", Required: true},
			&cli.Float64Flag{Name: "start-y", Required: true},
			&cli.Float64Flag{Name: "goal-x", Required: true},
			&cli.Float64Flag{Name: "goal-y", Required: true},
			&cli.IntFlag{Name: "iterations", Value: 2000},
			&cli.Int64Flag{Name: "seed", Value: 1},
			&cli.StringFlag{Name: "checkpoint-dir", Value: "./checkpoints"},
			&cli.StringFlag{Name: "run-name", Usage: "checkpoint basename; a random one is generated if omitted"},
			&cli.StringFlag{Name: "log-file", Usage: "rotate logs to this file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			return run(ctx, c, logger)
		},
	}
	return app.RunContext(ctx, append([]string{"rrtplan"}, args...))
}

func run(ctx context.Context, c *cli.Context, logger *logging.Logger) error {
	if logFile := c.String("log-file"); logFile != "" {
		appender, closer := logging.NewFileAppender(logFile)
		defer closer.Close()
		logging.StartPeriodicSync(ctx, appender, 5*time.Second)
		logger = logging.New(appender, zapcore.InfoLevel)
	}

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("rrtplan: invalid config: %w", err)
	}

	adapter, err := raster.New(c.String("map"), raster.Options{
		MetersPerPixel: cfg.MetersPerPixel,
		AgentRadius:    cfg.AgentRadius,
		NearThreshold:  cfg.NearThreshold,
		Rand:           rand.New(rand.NewSource(c.Int64("seed"))),
	})
	if err != nil {
		return err
	}

	runName := c.String("run-name")
	if runName == "" {
		runName = uuid.NewString()
	}

	start := pose.New(c.Float64("start-x"), 0, c.Float64("start-y"))
	goal := pose.New(c.Float64("goal-x"), 0, c.Float64("goal-y"))

	planner, err := rrtplan.NewPlanner(cfg, adapter, logger, c.String("checkpoint-dir"), runName, start, goal, uint64(c.Int64("seed")))
	if err != nil {
		return err
	}

	planner.VisualizeFunc = func(iteration int, path []pose.Pose, bestCost float64) {
		status := color.YellowString("searching")
		if len(path) > 0 {
			status = color.GreenString("path found")
		}
		logger.CInfof(ctx, "iteration %d: %s, best cost %.3f", iteration, status, bestCost)
	}

	if err := planner.Run(ctx, c.Int("iterations")); err != nil {
		return fmt.Errorf("rrtplan: %w", err)
	}

	printSummary(planner, runName)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rrtplan: reading config: %w", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("rrtplan: parsing config: %w", err)
	}
	return config.Decode(raw)
}

func printSummary(planner *rrtplan.Planner, runName string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"run", "path found", "best cost", "waypoints"})

	path := planner.BestPath()
	waypointStrs := lo.Map(path, func(p pose.Pose, _ int) string { return p.Key() })

	t.AppendRow(table.Row{runName, planner.PathFound(), fmt.Sprintf("%.3f", planner.BestCost()), len(waypointStrs)})
	t.Render()

	if !planner.PathFound() {
		color.Red("no path to goal found")
		return
	}
	color.Green("path found with %d waypoints", len(waypointStrs))
}
