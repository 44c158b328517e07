package main

import (
	"fmt"
	"os"
	"time"

	buildh "github.com/pierrepo/buildh"
	"github.com/pierrepo/buildh/traj/ztrj"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	trajFile   string
	lipid      string
	defFile    string
	outBase    string
	opxBase    string
	recipeFile string
	plotFile   string
	begin      float64
	end        float64
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "buildh [topology.pdb]",
		Short: "rebuild united-atom hydrogens and compute order parameters",
		Long: `buildh rebuilds the hydrogens of a united-atom lipid system from the
positions of its heavy atoms, and computes the deuterium order parameter of
every carbon-hydrogen bond listed in a definition file. It can also write
the reconstructed system out as a new topology and trajectory.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}
	rootCmd.Flags().StringVarP(&trajFile, "traj", "x", "", "trajectory file (ztrj); topology frames are used if absent")
	rootCmd.Flags().StringVarP(&lipid, "lipid", "l", "POPC", "residue name of the lipid to rebuild")
	rootCmd.Flags().StringVarP(&defFile, "defop", "d", "", "order parameter definition file (required)")
	rootCmd.Flags().StringVarP(&outBase, "out", "o", "OP_buildH", "base name of the output reports")
	rootCmd.Flags().StringVar(&opxBase, "opx", "", "base name for the reconstructed topology and trajectory; requires the definition file to cover every rebuilt hydrogen")
	rootCmd.Flags().StringVar(&recipeFile, "recipe", "", "reconstruction recipe (yaml); overrides the builtin table")
	rootCmd.Flags().StringVar(&plotFile, "plot", "", "save an order parameter profile figure to this file")
	rootCmd.Flags().Float64VarP(&begin, "begin", "b", -1, "first time to process, in ps")
	rootCmd.Flags().Float64VarP(&end, "end", "e", -1, "last time to process, in ps")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.MarkFlagRequired("defop")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func run(cmd *cobra.Command, args []string) error {
	log := newLogger()
	start := time.Now()

	recipe, err := loadRecipe(log)
	if err != nil {
		return err
	}
	def, err := buildh.ReadOPDefFile(defFile)
	if err != nil {
		return err
	}
	log.Info().Str("file", defFile).Int("bonds", len(def.Bonds)).Msg("read definition file")

	mol, err := buildh.PDBFileRead(args[0])
	if err != nil {
		return err
	}
	log.Info().Str("file", args[0]).Int("atoms", mol.Len()).Int("frames", mol.LenFrames()).Msg("read topology")

	var traj buildh.Traj
	var timed buildh.TimedTraj
	if trajFile != "" {
		zr, h, err := ztrj.New(trajFile)
		if err != nil {
			return err
		}
		defer zr.Close()
		if zr.Len() != mol.Len() {
			return fmt.Errorf("topology has %d atoms but trajectory frames have %d", mol.Len(), zr.Len())
		}
		traj = zr
		if h.Frames > 0 {
			timed = zr
		} else if begin >= 0 || end >= 0 {
			return fmt.Errorf("trajectory %s carries no frame count: cannot select a time window", trajFile)
		}
		log.Info().Str("file", trajFile).Int("frames", h.Frames).Float64("dt", h.Dt).Msg("opened trajectory")
	} else {
		traj = mol
		timed = mol
	}

	first, last := 0, -1
	if timed != nil {
		first, last, err = buildh.CheckSlice(timed, begin, end)
		if err != nil {
			return err
		}
		log.Debug().Int("first", first).Int("last", last).Msg("frame window")
	}

	var comp buildh.FrameComputer
	var full *buildh.FullBuilder
	var fast *buildh.FastBuilder
	if opxBase != "" {
		var out *ztrj.ZtrjW
		nframes := 0
		if last > 0 {
			nframes = last - first
		}
		//the output topology is known only after NewFull, so the writer is
		//created right after it
		full, err = buildh.NewFull(mol.Topology, recipe, def, nil)
		if err != nil {
			return err
		}
		t0, dt := 0.0, 0.0
		if timed != nil {
			var tfirst float64
			tfirst, _, dt = timed.TimeSpan()
			t0 = tfirst + float64(first)*dt
		}
		out, err = ztrj.NewWriter(opxBase+".ztrj", full.OutTopology().Len(), &ztrj.Header{T0: t0, Dt: dt, Frames: nframes})
		if err != nil {
			return err
		}
		defer out.Close()
		full.SetOut(out)
		comp = full
		log.Info().Str("base", opxBase).Int("atoms", full.OutTopology().Len()).Msg("writing reconstructed system")
	} else {
		fast, err = buildh.NewFast(mol.Topology, recipe, def)
		if err != nil {
			return err
		}
		comp = fast
	}

	n, err := buildh.Run(traj, comp, first, last)
	if err != nil {
		return err
	}
	log.Info().Int("frames", n).Dur("elapsed", time.Since(start)).Msg("processed trajectory")

	var acc *buildh.Accumulator
	if full != nil {
		acc = full.OP()
		if err := buildh.PDBFileWrite(opxBase+".pdb", full.OutTopology(), full.OutCoords()); err != nil {
			return err
		}
	} else {
		acc = fast.OP()
	}
	if err := acc.WriteReportFile(outBase); err != nil {
		return err
	}
	log.Info().Str("base", outBase).Msg("wrote order parameter reports")

	if plotFile != "" {
		if err := buildh.OPProfile(acc, lipid+" order parameters", plotFile); err != nil {
			return err
		}
		log.Info().Str("file", plotFile).Msg("wrote profile figure")
	}
	return nil
}

func loadRecipe(log zerolog.Logger) (*buildh.Recipe, error) {
	if recipeFile != "" {
		r, err := buildh.ReadRecipeFile(recipeFile)
		if err != nil {
			return nil, err
		}
		log.Info().Str("file", recipeFile).Str("resname", r.ResName).Int("carbons", r.Len()).Msg("read recipe")
		return r, nil
	}
	r, ok := buildh.Recipes()[lipid]
	if !ok {
		return nil, fmt.Errorf("no builtin recipe for lipid %s: supply one with --recipe", lipid)
	}
	return r, nil
}
