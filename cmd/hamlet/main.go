package main

import (
	"fmt"
	"math"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lhoste/hamlet/internal/catalog"
	"github.com/lhoste/hamlet/internal/scenario"
	"github.com/lhoste/hamlet/internal/sim"
)

var (
	dataDir      string
	scenarioFile string
	quiet        bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hamlet",
		Short: "Hamlet Economy Simulator",
		Long: `A headless runner for the Hamlet city-builder economy core.
It replays a scripted scenario (placements, upgrades, demolitions,
sales) against the tick engine and reports the resulting economy.`,
		Run: runScenario,
	}

	rootCmd.Flags().StringVarP(&dataDir, "data", "d", "data", "Path to catalog data directory")
	rootCmd.Flags().StringVarP(&scenarioFile, "scenario", "s", "", "Path to YAML scenario file (required)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Minimal output")
	_ = rootCmd.MarkFlagRequired("scenario")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runScenario(cmd *cobra.Command, args []string) {
	titleColor := color.New(color.FgCyan, color.Bold)
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgYellow)

	if !quiet {
		titleColor.Println("\n╭───────────────────────────╮")
		titleColor.Println("│  Hamlet                   │")
		titleColor.Println("│  Economy Simulator        │")
		titleColor.Println("╰───────────────────────────╯")
		fmt.Println()
	}

	cat, err := catalog.Load(dataDir)
	if err != nil {
		color.Red("Error loading catalog: %v", err)
		os.Exit(1)
	}

	script, err := scenario.Load(scenarioFile)
	if err != nil {
		color.Red("Error loading scenario: %v", err)
		os.Exit(1)
	}

	if !quiet {
		infoColor.Printf("📦 Loaded %d resources, %d buildings\n",
			len(cat.Resources()), len(cat.Buildings()))
		infoColor.Printf("📄 Scenario: %d ticks, %d scripted actions\n\n",
			script.Ticks, len(script.Actions))
	}

	var cyclesCompleted int
	simulation, outcomes, err := runTracked(script, cat, &cyclesCompleted)
	if err != nil {
		color.Red("Scenario failed: %v", err)
		os.Exit(1)
	}

	if !quiet {
		printOutcomes(outcomes)
	}

	successColor.Printf("✓ Ran %d ticks, %d processor cycles completed\n\n",
		simulation.TickCount(), cyclesCompleted)

	printResources(cat, simulation)
	printBuildings(cat, simulation)
}

// runTracked runs the scenario with a cycle-completion counter attached.
func runTracked(script *scenario.Scenario, cat *catalog.Catalog, cycles *int) (*sim.Simulation, []scenario.Outcome, error) {
	simulation, outcomes, err := scenario.RunWith(script, cat, func(s *sim.Simulation) {
		s.Subscribe(func(e sim.Event) {
			if e.Kind() == sim.KindCycleCompleted {
				*cycles++
			}
		})
	})
	return simulation, outcomes, err
}

func printOutcomes(outcomes []scenario.Outcome) {
	okColor := color.New(color.FgGreen)
	failColor := color.New(color.FgRed)

	for _, o := range outcomes {
		if o.OK {
			okColor.Printf("   [tick %4d] %s\n", o.Tick, o.Detail)
		} else {
			failColor.Printf("   [tick %4d] %s failed: %s\n", o.Tick, o.Action.Op, o.Detail)
		}
	}
	fmt.Println()
}

func printResources(cat *catalog.Catalog, simulation *sim.Simulation) {
	rates := simulation.Rates()

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Resource", "Quantity", "Cap", "Net /s"}),
	)
	for _, r := range cat.Resources() {
		cap := simulation.Caps().Cap(r)
		capStr := "∞"
		if !math.IsInf(cap, 1) {
			capStr = fmt.Sprintf("%.0f", cap)
		}
		row := []string{
			cat.DisplayName(r),
			fmt.Sprintf("%.1f", simulation.Ledger().Get(r)),
			capStr,
			fmt.Sprintf("%+.2f", rates.Net(r)),
		}
		_ = table.Append(row)
	}
	_ = table.Render()
}

func printBuildings(cat *catalog.Catalog, simulation *sim.Simulation) {
	if simulation.Registry().Count() == 0 {
		return
	}

	fmt.Println()
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Building", "Level", "Position", "State"}),
	)
	for i, b := range simulation.Registry().Buildings() {
		def := cat.Building(b.Type)
		state := "—"
		if def.IsProcessor() {
			if st, ok := simulation.Processors().State(b.ID); ok {
				state = st.State.String()
				switch st.State {
				case sim.Running:
					state = fmt.Sprintf("Running %.0f%%", st.Progress*100)
				case sim.Stalled:
					state = "Stalled: " + st.StallReason
				}
			}
		}
		row := []string{
			fmt.Sprintf("%d", i),
			def.Name,
			fmt.Sprintf("%d", b.DisplayLevel()),
			fmt.Sprintf("(%d,%d)", b.Row, b.Col),
			state,
		}
		_ = table.Append(row)
	}
	_ = table.Render()
}
