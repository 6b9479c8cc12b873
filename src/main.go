package main

import (
	"fmt"
	"sparselife/src/universe"
	"sparselife/src/view"
	"time"

	"github.com/integrii/flaggy"
)

//the headless run must finish even if the universe never stabilizes
const defHeadlessMaxSteps = 1000

type EnvOptions struct {
	interactive bool
	randomData  bool
	template    string
}

func main() {
	eo, uo := initOptions()

	var stateCh chan universe.Status

	if !eo.interactive {
		uo.StopWhenStable = true
		if uo.MaxSteps == 0 {
			uo.MaxSteps = defHeadlessMaxSteps
		}
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the universe status
	}

	u := universe.NewSparseUniverse(uo, stateCh)

	if eo.randomData {
		u.SettleWithRandomData()
	} else {
		u.SettleTemplate(eo.template)
	}

	if eo.interactive {
		v := view.NewViewTerminal()
		u.RegisterViewer(v)
		u.Run()
		v.Start()
		u.Close()
	} else {
		v := view.NewConsoleOut()
		u.RegisterViewer(v)
		v.Start()

		startTime := time.Now()
		u.Run()
		for {
			st := <-stateCh
			if st.RunningMode == universe.RunningStateFinished {
				totalTime := time.Since(startTime).Round(time.Millisecond)
				fmt.Printf("Finished, iteration is: %v, total running time: %v\n", st.IterationNum, totalTime)
				break
			}
		}
		u.Close()
		close(stateCh)
	}

}

func initOptions() (eo *EnvOptions, uo *universe.Options) {

	o := universe.DefaultUniverseOptions
	uo = &o
	eo = &EnvOptions{template: "sample"}
	var seed int
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&uo.Columns, "x", "columns", "Columns of the visible grid")
	flaggy.Int(&uo.Rows, "y", "rows", "Rows of the visible grid")
	flaggy.Int(&uo.CellSize, "c", "cellSize", "Cell size in window units")
	flaggy.Duration(&uo.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&uo.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 is unlimited")
	flaggy.Int(&uo.Workers, "k", "workers", "Workers computing one generation")
	flaggy.Int(&seed, "d", "seed", "Seed of the random data")
	flaggy.Bool(&uo.StartPaused, "p", "paused", "Start paused")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.randomData, "r", "random", "Settle with random data")
	flaggy.String(&eo.template, "t", "template", "Seeding template [blinker|block|glider|sample]")

	flaggy.Parse()

	if seed != 0 {
		uo.Seed = uint64(seed)
	}
	if uo.Columns <= 0 || uo.Rows <= 0 || uo.CellSize <= 0 {
		flaggy.ShowHelpAndExit("the visible grid and the cell size must be positive")
	}

	if !eo.interactive {
		flaggy.ShowHelp("")
	}

	return
}
