package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/asset"
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/oomph-ac/locomotion/worker"
	"github.com/oomph-ac/locomotion/world"
	"github.com/sirupsen/logrus"
)

const (
	tickRate = 60
	ticks    = 10 * tickRate
)

// The following program runs a scripted character through a small course: it
// runs, sprints, crouches, jumps onto a step and ragdolls. A second character
// replays the moves the first one sends, the way a server would.
func main() {
	settingsPath, meshPath := "locomotion.toml", ""
	if len(os.Args) > 1 {
		settingsPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		meshPath = os.Args[2]
	}

	lg := logrus.New()
	lg.Formatter = &logrus.TextFormatter{ForceColors: true, FullTimestamp: true}
	lg.Level = logrus.InfoLevel
	if os.Getenv("LOCOMOTION_DEBUG") != "" {
		lg.Level = logrus.DebugLevel
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			lg.Errorf("unable to initialize sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	s, err := readSettings(settingsPath, lg)
	if err != nil {
		lg.Fatal(err)
	}
	conf, err := s.CharacterConfig(lg)
	if err != nil {
		lg.Fatal(err)
	}
	if meshPath != "" {
		mesh, err := asset.LoadMesh(meshPath)
		if err != nil {
			lg.Fatal(err)
		}
		lg.Infof("loaded mesh %s with %d bodies", mesh.Name, mesh.Len())
		conf.Mesh = mesh.Mesh
	}

	w := world.NewFlat(lg, 0, 10000)
	w.AddBox(cube.Box(600, 0, -500, 1000, 30, 500))
	conf.Location = mgl64.Vec3{0, s.Character.HalfHeight + 2.15, 0}

	client := character.New(w, conf)
	conf.Mesh = nil
	server := character.New(w, conf)

	pool := worker.NewPool(2, lg)
	defer pool.Close()
	bridge := prediction.NewAsyncBridge(pool, character.AsyncStep, 8, lg)

	const dt = 1.0 / tickRate
	for tick := range ticks {
		in := script(client, tick)

		bridge.ProcessAsyncOutput(client)
		m := client.RecordMove(float64(tick)*dt, dt, in)
		bridge.Submit(prediction.FillAsyncInput(client, dt))

		var data prediction.MoveData
		data.ClientFillNetworkMoveData(m)
		if err := replay(server, data.Encode(), m); err != nil {
			lg.Errorf("tick %d: %v", tick, err)
		}

		if tick%tickRate == 0 {
			report(lg, tick, client, server)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := bridge.Wait(ctx); err != nil {
		lg.Warnf("async sub-steps still running: %v", err)
	}
	bridge.ProcessAsyncOutput(client)
	report(lg, ticks, client, server)
}

// readSettings loads the settings file, writing the defaults first if it does
// not exist yet.
func readSettings(path string, lg *logrus.Logger) (settings.Settings, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := settings.SaveDefault(path); err != nil {
			return settings.Settings{}, err
		}
		lg.Infof("wrote default settings to %s", path)
	}
	return settings.Load(path)
}

// script returns the input of tick and changes the intent of c on the way.
func script(c *character.Character, tick int) character.Input {
	second := tick / tickRate
	in := character.Input{Acceleration: mgl64.Vec3{1, 0, 0}}
	switch {
	case tick == 0:
		c.SetDesiredGait(locomotion.GaitRunning)
	case tick == 2*tickRate:
		c.SetDesiredGait(locomotion.GaitSprinting)
	case tick == 4*tickRate:
		c.SetDesiredGait(locomotion.GaitWalking)
		c.SetDesiredStance(locomotion.StanceCrouching)
	case tick == 5*tickRate:
		c.SetDesiredStance(locomotion.StanceStanding)
		c.SetDesiredGait(locomotion.GaitRunning)
	case tick == 5*tickRate+30:
		in.Jump = true
	case tick == 7*tickRate:
		c.StartRagdolling()
	case tick == 9*tickRate:
		c.StopRagdolling()
	}
	if second == 8 {
		in.Acceleration = mgl64.Vec3{}
	}
	return in
}

// replay decodes the move data sent by the client and replays the move on the
// server character.
func replay(server *character.Character, payload []byte, m *prediction.SavedMove) error {
	data, err := prediction.DecodeMoveData(payload)
	if err != nil {
		return err
	}
	server.ApplyMoveData(&data)

	server.ReplayMove(&prediction.SavedMove{
		Base:           m.Base,
		RotationMode:   server.RotationMode(),
		Stance:         server.Stance(),
		MaxAllowedGait: server.MaxAllowedGait(),
		WantsToLie:     server.WantsToLie(),
	})
	return nil
}

func report(lg *logrus.Logger, tick int, client, server *character.Character) {
	st := client.State()
	lg.WithFields(logrus.Fields{
		"tick":     tick,
		"mode":     st.Mode.Name(),
		"stance":   st.Stance.Name(),
		"gait":     st.Gait.Name(),
		"action":   st.Action.Name(),
		"location": fmt.Sprintf("%.1f %.1f %.1f", client.Location().X(), client.Location().Y(), client.Location().Z()),
		"drift":    fmt.Sprintf("%.3f", client.Location().Sub(server.Location()).Len()),
	}).Info("client state")

	if lg.IsLevelEnabled(logrus.DebugLevel) {
		if snap, err := asset.Snapshot(st, client.PhysicalAnimation()); err == nil {
			lg.Debugf("snapshot: %s", snap)
		}
	}
}
