// Package window runs the particle field in a desktop window with ebiten.
package window

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // slide decoders
	_ "image/png"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Particle-Field/internal/config"
	"github.com/Garsondee/Particle-Field/internal/field"
	"github.com/Garsondee/Particle-Field/internal/slideshow"
	"github.com/Garsondee/Particle-Field/internal/view"
)

const (
	hudLineH = 14
	hudCharW = 7 // basicfont.Face7x13 advance
	hudPad   = 6

	slideW = 320
	slideH = 180
)

// Game is both the ebiten.Game and the view.Host for one window. Every
// method except Reload runs on ebiten's game goroutine.
type Game struct {
	view.Listeners

	ctx    context.Context
	cfg    config.Config
	logger *log.Logger

	v       *view.View
	surf    Surface
	dark    bool
	w, h    int
	resized bool
	quit    bool

	cursorX, cursorY int
	showHUD          bool
	hud              []string // last drawn HUD lines
	hudFace          *text.GoXFace
	events           *EventLog
	frame            int

	reloads chan config.Config

	slidePaths []string
	slides     []*ebiten.Image
	show       *slideshow.Slideshow
}

// NewGame prepares a window for cfg. Nothing touches the GPU until the first
// Update, when the field is mounted.
func NewGame(ctx context.Context, cfg config.Config, logger *log.Logger) *Game {
	return &Game{
		ctx:     ctx,
		cfg:     cfg,
		logger:  logger,
		dark:    cfg.Dark(),
		w:       cfg.Window.Width,
		h:       cfg.Window.Height,
		showHUD: true,
		hudFace: text.NewGoXFace(basicfont.Face7x13),
		events:  NewEventLog(),
		reloads: make(chan config.Config, 1),
	}
}

// SetSlides registers slide image paths to cycle in the corner overlay.
func (g *Game) SetSlides(paths []string) { g.slidePaths = paths }

// Run opens the window and blocks until it is closed or ctx is cancelled.
func Run(g *Game) error {
	ebiten.SetWindowSize(g.cfg.Window.Width, g.cfg.Window.Height)
	ebiten.SetWindowTitle(g.cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(g.cfg.FPS)

	err := ebiten.RunGame(g)
	if g.v != nil {
		g.v.Stop()
	}
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	return nil
}

// Reload hands a new config to the game goroutine. Only the latest pending
// config is kept. Safe to call from any goroutine.
func (g *Game) Reload(cfg config.Config) {
	for {
		select {
		case g.reloads <- cfg:
			return
		default:
			select {
			case <-g.reloads:
			default:
			}
		}
	}
}

// view.Host

func (g *Game) Surface() (field.Surface, error) { return &g.surf, nil }
func (g *Game) Viewport() (int, int) { return g.w, g.h }
func (g *Game) Dark() bool { return g.dark }
func (g *Game) ToggleTheme() { g.dark = !g.dark }

// Elements returns the on-screen panels; particles glow around them. It is
// called with the view locked, so it only reads cached state.
func (g *Game) Elements() []field.Rect {
	var out []field.Rect
	if g.events.Len() > 0 {
		out = append(out, g.events.Bounds(g.w, g.h))
	}
	if g.showHUD {
		lines := g.hud
		if lines == nil {
			lines = hudLines(view.Stats{}, 0)
		}
		out = append(out, g.hudBounds(lines))
	}
	if len(g.slidePaths) > 0 {
		out = append(out, g.slideBounds())
	}
	return out
}

// ebiten.Game

func (g *Game) Update() error {
	if g.quit || g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if g.v == nil {
		g.mount()
	}

	select {
	case cfg := <-g.reloads:
		g.apply(cfg)
	default:
	}

	if g.resized {
		g.resized = false
		g.Emit(view.Event{Kind: view.EventResize, Width: g.w, Height: g.h})
		g.events.Addf(g.frame, "resize", "%dx%d", g.w, g.h)
	}
	g.handleInput()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.dark {
		screen.Fill(color.Black)
	} else {
		screen.Fill(color.White)
	}
	now := time.Now()
	if g.v != nil && g.v.Frame(now) && g.surf.Image() != nil {
		screen.DrawImage(g.surf.Image(), nil)
	}
	g.drawSlides(screen, now)
	if g.events.Len() > 0 {
		g.events.Draw(screen, g.dark)
	}
	if g.showHUD {
		g.drawHUD(screen)
	}
	g.frame++
}

// Layout tracks the outside size; the resize event fires on the next Update.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.resized = true
	}
	return outsideWidth, outsideHeight
}

func (g *Game) mount() {
	g.v = view.Mount(g, view.OptionsFrom(g.cfg), g.logger)
	g.loadSlides()
	g.events.Addf(g.frame, "mount", "%s %d", g.cfg.VariantKind(), g.cfg.Count)
}

func (g *Game) loadSlides() {
	for _, img := range g.slides {
		img.Deallocate()
	}
	g.slides = g.slides[:0]
	for _, p := range g.slidePaths {
		img, _, err := ebitenutil.NewImageFromFile(p)
		if err != nil {
			g.logger.Warn("skipping slide", "path", p, "err", err)
			continue
		}
		g.slides = append(g.slides, img)
	}
	g.show = slideshow.New(len(g.slides), g.cfg.Window.SlideInterval.Duration, g.cfg.Window.SlideFade.Duration)
}

func (g *Game) apply(cfg config.Config) {
	prevSlides := g.cfg.Window.Slides
	g.cfg = cfg
	g.dark = cfg.Dark()
	g.v.Remount(view.OptionsFrom(cfg))
	if cfg.Window.Slides != prevSlides {
		if err := g.setSlideDir(cfg.Window.Slides); err != nil {
			g.logger.Warn("slides not reloaded", "dir", cfg.Window.Slides, "err", err)
			g.show = slideshow.New(len(g.slides), cfg.Window.SlideInterval.Duration, cfg.Window.SlideFade.Duration)
		} else {
			g.events.Addf(g.frame, "slides", "%d from %s", len(g.slidePaths), cfg.Window.Slides)
		}
	} else {
		g.show = slideshow.New(len(g.slides), cfg.Window.SlideInterval.Duration, cfg.Window.SlideFade.Duration)
	}
	ebiten.SetTPS(cfg.FPS)
	g.events.Addf(g.frame, "reload", "%s %d", cfg.VariantKind(), cfg.Count)
}

// setSlideDir replaces the slides with the images in dir; an empty dir
// removes them. The slide box may appear or vanish, so views re-read the
// panels.
func (g *Game) setSlideDir(dir string) error {
	var paths []string
	if dir != "" {
		p, err := slideshow.LoadDir(dir)
		if err != nil {
			return err
		}
		paths = p
	}
	g.slidePaths = paths
	g.loadSlides()
	g.Emit(view.Event{Kind: view.EventScroll})
	return nil
}

// handleInput forwards the cursor and wheel and processes key toggles.
func (g *Game) handleInput() {
	mx, my := ebiten.CursorPosition()
	if mx != g.cursorX || my != g.cursorY {
		g.cursorX, g.cursorY = mx, my
		g.Emit(view.Event{Kind: view.EventPointer, X: float64(mx), Y: float64(my)})
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.Emit(view.Event{Kind: view.EventScroll})
	}

	// T: toggle theme.
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.v.ToggleTheme()
		g.events.Addf(g.frame, "theme", "%s", themeName(g.dark))
	}
	// H: toggle HUD. The panel set changed, so views re-read it.
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
		g.Emit(view.Event{Kind: view.EventScroll})
	}
	// C: copy the active config.
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if err := clipboard.WriteAll(g.cfg.String()); err != nil {
			g.logger.Warn("copy config failed", "err", err)
			g.events.Add(g.frame, "copy", "failed")
		} else {
			g.events.Add(g.frame, "copy", "config copied")
		}
	}
	// R: reseed the field.
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		opts := view.OptionsFrom(g.cfg)
		opts.Seed = 0
		g.v.Remount(opts)
		g.events.Add(g.frame, "reseed", "")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.quit = true
	}
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func hudLines(st view.Stats, fps float64) []string {
	return []string{
		fmt.Sprintf("%s  %d particles  %.0f fps", st.Variant, st.Particles, fps),
		fmt.Sprintf("frame %d  glowing %d  %dx%d", st.Frames, st.Last.Glowing, st.Width, st.Height),
		"[T] theme  [H] HUD  [C] copy config",
		"[R] reseed  [Esc] quit",
	}
}

// hudBounds is the HUD box in the bottom-left corner.
func (g *Game) hudBounds(lines []string) field.Rect {
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	w := float64(maxLen*hudCharW + hudPad*2)
	h := float64(len(lines)*hudLineH + hudPad*2)
	return field.Rect{Left: 4, Top: float64(g.h) - h - 4, Right: 4 + w, Bottom: float64(g.h) - 4}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	var st view.Stats
	if g.v != nil {
		st = g.v.Stats()
	}
	lines := hudLines(st, ebiten.ActualFPS())
	g.hud = lines
	b := g.hudBounds(lines)

	bg, fg := color.RGBA{R: 6, G: 8, B: 12, A: 210}, color.RGBA{R: 220, G: 228, B: 240, A: 255}
	if !g.dark {
		bg, fg = color.RGBA{R: 240, G: 240, B: 244, A: 220}, color.RGBA{R: 40, G: 40, B: 50, A: 255}
	}
	vector.FillRect(screen, float32(b.Left), float32(b.Top), float32(b.Width()), float32(b.Height()), bg, false)
	vector.StrokeRect(screen, float32(b.Left), float32(b.Top), float32(b.Width()), float32(b.Height()),
		1.0, color.RGBA{R: 66, G: 135, B: 245, A: 160}, false)

	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(b.Left+hudPad, b.Top+hudPad+float64(i*hudLineH))
		op.ColorScale.ScaleWithColor(fg)
		text.Draw(screen, line, g.hudFace, op)
	}
}

// slideBounds is the slideshow box in the bottom-right corner.
func (g *Game) slideBounds() field.Rect {
	r := float64(g.w - 8)
	b := float64(g.h - 8)
	return field.Rect{Left: r - slideW, Top: b - slideH, Right: r, Bottom: b}
}

func (g *Game) drawSlides(screen *ebiten.Image, now time.Time) {
	if g.show == nil || len(g.slides) == 0 {
		return
	}
	i, alpha := g.show.Visible(now)
	if i < 0 || alpha <= 0 {
		return
	}
	img := g.slides[i]
	b := g.slideBounds()
	vector.FillRect(screen, float32(b.Left), float32(b.Top), slideW, slideH, color.RGBA{R: 24, G: 24, B: 27, A: 255}, false)

	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	// Cover the box, cropping whichever axis overflows.
	scale := max(float64(slideW)/float64(iw), float64(slideH)/float64(ih))
	sub := img.SubImage(coverCrop(iw, ih, scale)).(*ebiten.Image)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(b.Left, b.Top)
	op.ColorScale.ScaleAlpha(float32(alpha))
	screen.DrawImage(sub, op)
}

// coverCrop returns the centred source region of an iw x ih image that
// fills the slide box at scale.
func coverCrop(iw, ih int, scale float64) image.Rectangle {
	cw := min(iw, int(float64(slideW)/scale+0.5))
	ch := min(ih, int(float64(slideH)/scale+0.5))
	x0 := (iw - cw) / 2
	y0 := (ih - ch) / 2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}
