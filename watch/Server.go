// Package watch serves a live stream of an experiment's steps over a
// websocket and accepts commands that control the experiment
package watch

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/samuelfneumann/mazemouse/experiment"
	"github.com/samuelfneumann/mazemouse/render"
	"github.com/samuelfneumann/mazemouse/state"
)

// Command names accepted from clients
const (
	Pause     = "pause"
	Resume    = "resume"
	Reset     = "reset"
	ResetBest = "resetBest"
	NewMaze   = "newMaze"
	Manual    = "manual"
	Auto      = "auto"
	Move      = "move"
)

// Command is a request from a client to control the experiment. Action
// is only used by Move.
type Command struct {
	Name   string       `json:"command"`
	Action state.Action `json:"action"`

	reply chan []byte
}

// snapshot is the internal command that renders the current maze
const snapshot = "snapshot"

// subscriberBuffer is the number of steps buffered per client before
// steps are dropped for that client
const subscriberBuffer = 256

// Server drives an experiment from a single goroutine, stepping it
// StepsPerTick times every Interval, and streams every StepResult as
// JSON to connected websocket clients
type Server struct {
	session      *experiment.Online
	interval     time.Duration
	stepsPerTick int
	logger       *log.Logger

	commands chan Command
	paused   bool

	mu          sync.Mutex
	subscribers map[chan experiment.StepResult]struct{}
}

// New returns a new Server driving session
func New(session *experiment.Online, interval time.Duration,
	stepsPerTick int) (*Server, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("new: interval must be positive")
	}
	if stepsPerTick < 1 {
		return nil, fmt.Errorf("new: steps per tick must be > 0")
	}

	s := &Server{
		session:      session,
		interval:     interval,
		stepsPerTick: stepsPerTick,
		logger:       log.New(os.Stderr, "watch: ", log.LstdFlags),
		commands:     make(chan Command),
		subscribers:  make(map[chan experiment.StepResult]struct{}),
	}
	session.AddListener(s.broadcast)
	return s, nil
}

// SetLogger sets the logger that the Server reports to
func (s *Server) SetLogger(l *log.Logger) {
	s.logger = l
}

// Handler returns the HTTP handler of the Server. The step stream and
// commands are served at /stream and a rendering of the current maze
// at /maze.png.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/stream", websocket.Handler(s.stream))
	mux.HandleFunc("/maze.png", s.mazeImage)
	return mux
}

// Drive steps the experiment until ctx is cancelled or the episode
// limit is reached. Drive must be running for commands and snapshots
// to be served.
func (s *Server) Drive(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd := <-s.commands:
			s.apply(cmd)

		case <-ticker.C:
			if s.paused || s.session.Manual() {
				continue
			}
			if s.session.Done() {
				return nil
			}
			s.session.RunSteps(s.stepsPerTick)
		}
	}
}

// Send sends cmd to the driving goroutine, returning false if ctx is
// cancelled first
func (s *Server) Send(ctx context.Context, cmd Command) bool {
	select {
	case s.commands <- cmd:
		return true
	case <-ctx.Done():
		return false
	}
}

// apply applies a command between steps of the experiment
func (s *Server) apply(cmd Command) {
	switch cmd.Name {
	case Pause:
		s.paused = true
	case Resume:
		s.paused = false
	case Reset:
		s.session.ResetAgent(false)
	case ResetBest:
		s.session.ResetAgent(true)
	case NewMaze:
		if err := s.session.NewMaze(); err != nil {
			s.logger.Printf("apply: %v", err)
		}
	case Manual:
		s.session.SetManual(true)
	case Auto:
		s.session.SetManual(false)
	case Move:
		s.session.ManualStep(cmd.Action)
	case snapshot:
		cmd.reply <- s.render()
	default:
		s.logger.Printf("apply: unknown command %q", cmd.Name)
	}
}

// render renders the current maze as a PNG
func (s *Server) render() []byte {
	env := s.session.Environment()
	img, err := render.DrawMaze(env.Grid(), env.Mouse(),
		s.session.ValueMap())
	if err != nil {
		s.logger.Printf("render: %v", err)
		return nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.logger.Printf("render: could not encode image: %v", err)
		return nil
	}
	return buf.Bytes()
}

// broadcast sends a step to every subscriber, dropping it for
// subscribers that are not keeping up
func (s *Server) broadcast(result experiment.StepResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subscribers {
		select {
		case ch <- result:
		default:
		}
	}
}

func (s *Server) subscribe() chan experiment.StepResult {
	ch := make(chan experiment.StepResult, subscriberBuffer)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan experiment.StepResult) {
	s.mu.Lock()
	delete(s.subscribers, ch)
	s.mu.Unlock()
}

// stream streams steps to a websocket client and forwards its commands
// to the driving goroutine
func (s *Server) stream(ws *websocket.Conn) {
	defer ws.Close()
	ctx, cancel := context.WithCancel(ws.Request().Context())
	defer cancel()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	go func() {
		defer cancel()
		for {
			var cmd Command
			if err := websocket.JSON.Receive(ws, &cmd); err != nil {
				return
			}
			if cmd.Name == snapshot {
				continue
			}
			cmd.reply = nil
			if !s.Send(ctx, cmd) {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case result := <-ch:
			if err := websocket.JSON.Send(ws, result); err != nil {
				s.logger.Printf("stream: %v", err)
				return
			}
		}
	}
}

// mazeImage serves a PNG rendering of the current maze
func (s *Server) mazeImage(w http.ResponseWriter, r *http.Request) {
	reply := make(chan []byte, 1)
	if !s.Send(r.Context(), Command{Name: snapshot, reply: reply}) {
		http.Error(w, "server stopped", http.StatusServiceUnavailable)
		return
	}

	var img []byte
	select {
	case img = <-reply:
	case <-r.Context().Done():
		return
	}
	if img == nil {
		http.Error(w, "could not render maze", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(img); err != nil {
		s.logger.Printf("mazeImage: %v", err)
	}
}
