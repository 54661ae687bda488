package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/samuelfneumann/mazemouse/experiment"
	"github.com/samuelfneumann/mazemouse/experiment/tracker"
	"github.com/samuelfneumann/mazemouse/experiment/trackers"
	"github.com/samuelfneumann/mazemouse/render"
	"github.com/samuelfneumann/mazemouse/utils/matutils"
	"github.com/samuelfneumann/mazemouse/utils/progressbar"
	"github.com/samuelfneumann/mazemouse/watch"
)

// Data files written by train and read by render
const (
	returnFile  = "return.bin"
	lengthFile  = "length.bin"
	successFile = "success.bin"
)

func main() {
	log.SetPrefix("mazemouse: ")
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return errors.New("missing subcommand; try 'train', 'play', " +
			"'watch', or 'render'")
	}

	subcommand := os.Args[1]
	switch subcommand {
	case "train":
		return runTrain(os.Args[2:])
	case "play":
		return runPlay(os.Args[2:])
	case "watch":
		return runWatch(os.Args[2:])
	case "render":
		return runRender(os.Args[2:])
	default:
		return fmt.Errorf("unknown subcommand %q", subcommand)
	}
}

// sessionFlags are the flags shared by subcommands that create an
// experiment
type sessionFlags struct {
	config *string
	width  *int
	height *int
	seed   *uint64
	load   *string
}

func addSessionFlags(fs *flag.FlagSet) sessionFlags {
	return sessionFlags{
		config: fs.String("config", "", "JSON experiment config file"),
		width:  fs.Int("width", 0, "maze width, overrides config"),
		height: fs.Int("height", 0, "maze height, overrides config"),
		seed:   fs.Uint64("seed", 0, "seed, overrides config"),
		load:   fs.String("load", "", "Q-table to start from"),
	}
}

// experimentConfig loads the experiment config and applies the flags
// that were set
func (s sessionFlags) experimentConfig(fs *flag.FlagSet) (experiment.Config,
	error) {
	c := experiment.DefaultConfig()
	if *s.config != "" {
		var err error
		if c, err = experiment.LoadConfig(*s.config); err != nil {
			return experiment.Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			c.EnvConf.Width = *s.width
		case "height":
			c.EnvConf.Height = *s.height
		case "seed":
			c.EnvConf.Seed = *s.seed
		}
	})
	return c, nil
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	session := addSessionFlags(fs)
	episodes := fs.Int("episodes", 0, "number of training episodes, "+
		"overrides config")
	out := fs.String("out", "qtable.json", "file to save the Q-table to")
	dataDir := fs.String("data", "", "directory to save per-episode data to")
	curve := fs.String("curve", "", "file to plot the learning curve to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := session.experimentConfig(fs)
	if err != nil {
		return err
	}
	if *episodes > 0 {
		c.MaxEpisodes = *episodes
	}
	if c.MaxEpisodes < 1 {
		return fmt.Errorf("episodes must be positive (got %d)", c.MaxEpisodes)
	}
	c.EpisodePause = 0

	if *dataDir != "" {
		if err := os.MkdirAll(*dataDir, 0o755); err != nil {
			return fmt.Errorf("could not create data directory: %w", err)
		}
	}
	ret := trackers.NewReturn(filepath.Join(*dataDir, returnFile))
	length := trackers.NewEpisodeLength(filepath.Join(*dataDir, lengthFile))
	success := trackers.NewSuccess(filepath.Join(*dataDir, successFile))

	e, err := c.CreateExp(ret, length, success)
	if err != nil {
		return err
	}
	if *session.load != "" && !e.LoadTable(*session.load) {
		return fmt.Errorf("could not load Q-table %v", *session.load)
	}

	log.Printf("train config => size=%dx%d episodes=%d seed=%d α=%.2f "+
		"γ=%.2f ε=%.2f", c.EnvConf.Width, c.EnvConf.Height, c.MaxEpisodes,
		c.EnvConf.Seed, c.AgentConf.LearningRate, c.AgentConf.Discount,
		c.AgentConf.Epsilon)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bar := progressbar.New(os.Stdout, 40, c.MaxEpisodes)
	for done := false; !done; {
		if ctx.Err() != nil {
			log.Printf("interrupted after %d episodes", e.Generation())
			break
		}
		done = e.RunEpisode()

		bar.Increment()
		bar.SetStatus("ε = %.3f  |  states = %d", e.Agent().Epsilon(),
			e.Agent().Table().Len())
		bar.Display()
	}
	bar.Finish()

	fmt.Println(trackers.Summarize(ret.Data(), length.Data(), success.Data()))
	for i, entry := range e.Leaderboard().Entries() {
		fmt.Printf("%2d. %v\n", i+1, entry)
	}
	fmt.Println(e.Agent().Table().SizeReport())

	if err := e.SaveTable(*out); err != nil {
		return err
	}
	if *dataDir != "" {
		if err := e.Save(); err != nil {
			return err
		}
	}
	if *curve != "" {
		if err := render.Curve(ret.Data(), length.Data(), *curve); err != nil {
			return err
		}
	}
	return nil
}

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	session := addSessionFlags(fs)
	image := fs.String("png", "", "file to render the greedy episode to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *session.load == "" {
		return errors.New("play requires a Q-table; set -load")
	}

	c, err := session.experimentConfig(fs)
	if err != nil {
		return err
	}

	e, err := c.CreateExp()
	if err != nil {
		return err
	}
	if !e.LoadTable(*session.load) {
		return fmt.Errorf("could not load Q-table %v", *session.load)
	}

	env := e.Environment()
	step := env.CurrentTimeStep()
	greedy := e.Agent().TargetPolicy()

	var ret float64
	for last := false; !last; {
		step, last, err = env.Step(greedy.SelectAction(step.Observation))
		if err != nil {
			return err
		}
		ret += step.Reward
	}

	fmt.Println(env.Grid())
	fmt.Printf("end=%v steps=%d cells=%d return=%.2f\n", step.EndType(),
		step.Number, env.Mouse().Steps(), ret)

	if *image != "" {
		return render.Maze(env.Grid(), env.Mouse(), nil, *image)
	}
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	session := addSessionFlags(fs)
	addr := fs.String("addr", "localhost:8080", "address to serve on")
	interval := fs.Duration("interval", 50*time.Millisecond,
		"time between batches of steps")
	steps := fs.Int("steps", 1, "steps per batch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := session.experimentConfig(fs)
	if err != nil {
		return err
	}
	c.MaxEpisodes = 0

	e, err := c.CreateExp()
	if err != nil {
		return err
	}
	if *session.load != "" && !e.LoadTable(*session.load) {
		return fmt.Errorf("could not load Q-table %v", *session.load)
	}

	server, err := watch.New(e, *interval, *steps)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpServer := &http.Server{Addr: *addr, Handler: server.Handler()}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(),
			time.Second)
		defer cancel()
		httpServer.Shutdown(shutdown)
	}()
	go func() {
		if err := server.Drive(ctx); err != nil &&
			!errors.Is(err, context.Canceled) {
			log.Printf("drive: %v", err)
		}
	}()

	log.Printf("streaming steps at ws://%v/stream", *addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err,
		http.ErrServerClosed) {
		return err
	}
	return nil
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	session := addSessionFlags(fs)
	dataDir := fs.String("data", "", "directory of per-episode data to plot")
	curve := fs.String("curve", "curve.png", "file to plot the learning "+
		"curve to")
	mazeImage := fs.String("maze", "", "file to render the maze and "+
		"learned values of -load to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dataDir != "" {
		returns, err := tracker.LoadData(filepath.Join(*dataDir, returnFile))
		if err != nil {
			return err
		}
		lengths, err := tracker.LoadData(filepath.Join(*dataDir, lengthFile))
		if err != nil {
			return err
		}
		if err := render.Curve(returns, lengths, *curve); err != nil {
			return err
		}
	}

	if *mazeImage == "" {
		return nil
	}
	c, err := session.experimentConfig(fs)
	if err != nil {
		return err
	}
	e, err := c.CreateExp()
	if err != nil {
		return err
	}
	if *session.load != "" && !e.LoadTable(*session.load) {
		return fmt.Errorf("could not load Q-table %v", *session.load)
	}

	values := e.ValueMap()
	fmt.Println(matutils.FormatValueMap(values, 1))
	return render.Maze(e.Environment().Grid(), nil, values, *mazeImage)
}
