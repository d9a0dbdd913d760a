package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/irfansharif/armsim/internal/app"
	"github.com/irfansharif/armsim/internal/palette"
	"github.com/irfansharif/armsim/internal/render"
	"github.com/irfansharif/armsim/internal/scene"
)

var (
	scenePath = flag.String("scene", "", "YAML scene to load (empty for a bare workspace)")
	width     = flag.Int("width", 1280, "initial window width")
	height    = flag.Int("height", 960, "initial window height")
)

func init() {
	// OpenGL contexts are tied to specific OS threads - let's pin to just one.
	runtime.LockOSThread()
}

func makeTitle(fps float64, avgFrameTime float64, application *app.App, renderStats render.Stats) string {
	r := application.Robot
	return fmt.Sprintf("armsim (%.1f FPS, %.2fms/frame, L1 %.1f, L2 %.1f, %d obstacles, %d hit, animation %s, %d triangles, %.2fms/prepare, %.2fµs/draw)",
		fps,
		avgFrameTime,
		r.L1(),
		r.L2(),
		application.Obstacles.Len(),
		len(application.Hits()),
		application.Animator.State(),
		renderStats.Triangles,
		renderStats.LastPrepareTimeMs,
		renderStats.LastDrawTimeUs,
	)
}

func main() {
	flag.Parse()

	logger, runtimeLogger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	sc := scene.Default(float64(*width), float64(*height))
	if *scenePath != "" {
		if sc, err = scene.LoadFile(*scenePath); err != nil {
			logger.Fatal("failed to load scene", zap.String("path", *scenePath), zap.Error(err))
		}
	}
	robot, obstacles, err := sc.Build(logger.Named("robot"))
	if err != nil {
		logger.Fatal("failed to build scene", zap.Error(err))
	}

	if err := glfw.Init(); err != nil {
		logger.Fatal("failed to initialize GLFW", zap.Error(err))
	}
	defer glfw.Terminate()

	// Configure GLFW window hints - use OpenGL 4.1.
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(*width, *height, "armsim", nil, nil)
	if err != nil {
		logger.Fatal("failed to create window", zap.Error(err))
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		logger.Fatal("failed to initialize OpenGL", zap.Error(err))
	}

	renderer, err := render.NewRenderer(logger.Named("render"))
	if err != nil {
		logger.Fatal("failed to create renderer", zap.Error(err))
	}
	defer renderer.Delete()

	pal := palette.Default()
	if s, ok := seed(logger); ok {
		pal = palette.Random(rand.New(rand.NewSource(s)))
	}

	cw, ch := window.GetFramebufferSize()
	application := app.NewApp(robot, obstacles, app.NewView(cw, ch), pal, logger.Named("app"))
	defer application.Close()

	eventHandlers := NewEventHandlers(window, application, renderer, logger)
	eventHandlers.updateRendererView()

	background := palette.Floats(pal[palette.Background])
	frameCount, frameTimeSum := 0, 0.0
	lastFPSUpdate := time.Now()

	// Main loop.
	for !window.ShouldClose() {
		frameStart := time.Now()

		eventHandlers.handleContinuousPanning()
		application.Tick()
		if application.TakeDirty() {
			if err := renderer.Prepare(application.Frame()); err != nil {
				logger.Error("failed to prepare frame", zap.Error(err))
			}
		}

		w, h := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(background[0], background[1], background[2], background[3])
		gl.Clear(gl.COLOR_BUFFER_BIT)

		renderer.Draw()
		window.SwapBuffers()
		glfw.PollEvents()

		frameTime := time.Since(frameStart).Seconds() * 1000.0 // ms
		frameTimeSum += frameTime

		frameCount++
		now := time.Now()
		if now.Sub(lastFPSUpdate) >= time.Second {
			fps := float64(frameCount) / now.Sub(lastFPSUpdate).Seconds()
			avgFrameTime := frameTimeSum / float64(frameCount)
			frameCount, frameTimeSum = 0, 0.0
			lastFPSUpdate = now

			renderStats := renderer.Stats()
			window.SetTitle(makeTitle(fps, avgFrameTime, application, renderStats))

			runtimeLogger.Info("frame statistics",
				zap.Float64("fps", fps),
				zap.Float64("ms-per-frame", avgFrameTime),
				zap.Int("triangles", renderStats.Triangles),
				zap.Int("uploads", renderStats.Uploads),
				zap.Int("buffer-grows", renderStats.Grows),
				zap.Float64("gpu-mib", float64(renderStats.GPUBytes)/(1024.0*1024.0)),
				zap.Float64("prepare-ms", renderStats.LastPrepareTimeMs),
				zap.Float64("draw-us", renderStats.LastDrawTimeUs),
			)
		}
	}
}

// seed returns the palette seed from ARMSIM_SEED, if set.
func seed(logger *zap.Logger) (int64, bool) {
	seedStr := os.Getenv("ARMSIM_SEED")
	if seedStr == "" {
		return 0, false
	}
	s, err := strconv.ParseInt(seedStr, 10, 64)
	if err != nil {
		logger.Fatal("invalid ARMSIM_SEED value", zap.String("value", seedStr), zap.Error(err))
	}
	return s, true
}
