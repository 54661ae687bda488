package watch

import (
	"context"
	"image/png"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/samuelfneumann/mazemouse/experiment"
)

func newServer(t *testing.T) (*Server, *experiment.Online) {
	t.Helper()
	c := experiment.DefaultConfig()
	c.MaxEpisodes = 0
	c.EnvConf.Width, c.EnvConf.Height = 9, 9

	session, err := c.CreateExp()
	if err != nil {
		t.Fatal(err)
	}
	session.SetLogger(log.New(io.Discard, "", 0))

	s, err := New(session, time.Millisecond, 5)
	if err != nil {
		t.Fatal(err)
	}
	s.SetLogger(log.New(io.Discard, "", 0))
	return s, session
}

func TestNewErrors(t *testing.T) {
	c := experiment.DefaultConfig()
	session, err := c.CreateExp()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(session, 0, 1); err == nil {
		t.Errorf("new: expected error for zero interval")
	}
	if _, err := New(session, time.Second, 0); err == nil {
		t.Errorf("new: expected error for zero steps per tick")
	}
}

func TestStream(t *testing.T) {
	s, _ := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	go s.Drive(ctx)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/stream"
	ws, err := websocket.Dial(url, "", ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	for i := 0; i < 3; i++ {
		var result experiment.StepResult
		if err := websocket.JSON.Receive(ws, &result); err != nil {
			t.Fatalf("receive: %v", err)
		}
		if !result.Action.Valid() || result.Steps < 1 {
			t.Errorf("stream: unexpected step %+v", result)
		}
	}

	if err := websocket.JSON.Send(ws, Command{Name: Pause}); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/maze.png")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mazeImage: want status 200, have %v", resp.Status)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("mazeImage: could not decode image: %v", err)
	}
	if img.Bounds().Dx() != 9*24 {
		t.Errorf("mazeImage: want width %d, have %d", 9*24, img.Bounds().Dx())
	}
}

func TestApplyCommands(t *testing.T) {
	s, session := newServer(t)
	session.RunSteps(20)

	s.apply(Command{Name: Pause})
	if !s.paused {
		t.Errorf("apply: pause should pause the server")
	}
	s.apply(Command{Name: Resume})
	if s.paused {
		t.Errorf("apply: resume should resume the server")
	}

	s.apply(Command{Name: Manual})
	if !session.Manual() {
		t.Fatalf("apply: manual should enable manual control")
	}
	var moved bool
	session.AddListener(func(r experiment.StepResult) { moved = r.Manual })
	s.apply(Command{Name: Move, Action: 1})
	if !moved {
		t.Errorf("apply: move should step manually")
	}
	s.apply(Command{Name: Auto})
	if session.Manual() {
		t.Errorf("apply: auto should disable manual control")
	}

	s.apply(Command{Name: Reset})
	if session.Table().Len() != 0 {
		t.Errorf("apply: reset should clear the table")
	}
	s.apply(Command{Name: NewMaze})
	if session.Environment().CurrentTimeStep().Number != 0 {
		t.Errorf("apply: newMaze should start a new episode")
	}
}
