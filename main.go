package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/chazu/bramble/pkg/scenario"
	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	svgPath    string
	seed       uint64
	iterations int
	linearScan bool
	timeout    time.Duration
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "bramble [command] (flags)",
	Short: "rapidly-exploring random tree planner for scripted scenes",
	Long:  ``,
}

var runCmd = &cobra.Command{
	Use:   "run <scene.zy>",
	Short: "grow a tree over a scene and report the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runScene,
}

var checkCmd = &cobra.Command{
	Use:   "check <scene.zy>...",
	Short: "evaluate scenes without planning",
	Args:  cobra.MinimumNArgs(1),
	RunE:  checkScenes,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(runCmd, checkCmd)

	for _, cmd := range []*cobra.Command{runCmd, checkCmd} {
		cmd.Flags().DurationVar(
			&timeout, "timeout", scenario.EvalTimeout, "limit on scene script evaluation")
	}
	runCmd.Flags().StringVar(
		&svgPath, "svg", "", "write a drawing of the run to this file")
	runCmd.Flags().Uint64Var(
		&seed, "seed", scenario.DefaultSeed, "override the scene's sampler seed")
	runCmd.Flags().IntVarP(
		&iterations, "iterations", "n", 0, "override the scene's iteration count (0 keeps it)")
	runCmd.Flags().BoolVar(
		&linearScan, "linear-scan", false, "steer against every obstacle instead of indexed candidates")
	runCmd.Flags().BoolVarP(
		&verbose, "verbose", "v", false, "log planner summaries")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScene(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	app := NewApp()
	app.engine.SetTimeout(timeout)
	if verbose {
		app.Logger = log.Default()
	}

	opts := PlanOptions{Iterations: iterations, LinearScan: linearScan}
	if cmd.Flags().Changed("seed") {
		opts.Seed = &seed
	}
	if svgPath != "" {
		f, err := os.Create(svgPath)
		if err != nil {
			return err
		}
		defer f.Close()
		opts.SVG = f
	}

	res := app.PlanWith(string(source), opts)
	if len(res.Errors) > 0 {
		return reportErrors(cmd.ErrOrStderr(), args[0], res.Errors)
	}
	printSummary(cmd.OutOrStdout(), res)
	return nil
}

func checkScenes(cmd *cobra.Command, args []string) error {
	eng := scenario.NewEngine()
	eng.SetTimeout(timeout)

	tbl := tablewriter.NewWriter(cmd.OutOrStdout())
	tbl.SetHeader([]string{"Scene", "Dim", "Obstacles", "Iterations", "Steps", "Sampler"})
	failed := false
	for _, path := range args {
		source, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sc, evalErrs, err := eng.Evaluate(string(source))
		if err != nil {
			return errors.Wrap(err, path)
		}
		if len(evalErrs) > 0 {
			for _, e := range evalErrs {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, e)
			}
			failed = true
			continue
		}
		tbl.Append([]string{
			path,
			strconv.Itoa(sc.Dim()),
			strconv.Itoa(len(sc.Obstacles)),
			strconv.Itoa(sc.Iterations),
			strconv.Itoa(sc.Steps),
			string(sc.Sampler),
		})
	}
	tbl.Render()
	if failed {
		return errors.New("some scenes failed to evaluate")
	}
	return nil
}

func reportErrors(w io.Writer, path string, errs []EvalErrorData) error {
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(w, "%s:%d: %s\n", path, e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "%s: %s\n", path, e.Message)
		}
	}
	return errors.Newf("%s: %d error(s)", path, len(errs))
}

func printSummary(w io.Writer, res PlanResult) {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }

	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Metric", "Value"})
	tbl.Append([]string{"dimension", strconv.Itoa(res.Dim)})
	tbl.Append([]string{"obstacles", strconv.Itoa(res.Obstacles)})
	tbl.Append([]string{"seed", strconv.FormatUint(res.Seed, 10)})
	tbl.Append([]string{"iterations", strconv.Itoa(res.Iterations)})
	tbl.Append([]string{"nodes", strconv.Itoa(res.Nodes)})
	tbl.Append([]string{"goal reached", strconv.FormatBool(res.Reached)})
	tbl.Append([]string{"goal distance", f(res.GoalDistance)})
	if res.Reached {
		tbl.Append([]string{"path nodes", strconv.Itoa(len(res.Path))})
		tbl.Append([]string{"path length", f(res.PathLength)})
	}
	tbl.Append([]string{"advance mean", f(res.Advance.Mean)})
	tbl.Append([]string{"advance p50", f(res.Advance.P50)})
	tbl.Append([]string{"advance p90", f(res.Advance.P90)})
	tbl.Append([]string{"advance max", f(res.Advance.Max)})
	tbl.Append([]string{"stalled steps", strconv.Itoa(res.Advance.Stalled)})
	tbl.Append([]string{"elapsed", res.Elapsed.String()})
	tbl.Render()
}
