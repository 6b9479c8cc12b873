package view

import (
	"bytes"
	"fmt"
	"log"
	"sparselife/src/universe"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

type ConsoleUI struct {
	u        universe.Universe
	g        *gocui.Gui
	k        []keyBindings
	fillers  map[universe.Color]string
	template int
}

var (
	runningStateDescr = map[universe.RunningState]string{
		universe.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
		universe.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		universe.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
	pausedDescr = aurora.Colorize("paused", aurora.YellowFg).String()
)

//scroll step for the arrow keys and the mouse wheel
const scrollStep = 1

func NewViewTerminal() *ConsoleUI {

	var err error
	t := ConsoleUI{
		fillers: map[universe.Color]string{
			universe.ColorLive: aurora.Green("█").BgBrightGreen().String(),
			universe.ColorDead: "░",
		},
	}

	t.g, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln(err)
	}

	t.g.Mouse = true
	t.k = []keyBindings{
		{gocui.KeyCtrlC, "^C", "Exit", t.cmdQuit, ""},
		{gocui.KeySpace, "SPACE", "Pause/Play", t.cmdTogglePause, ""},
		{gocui.KeyEsc, "ESC", "Clear", t.cmdClear, ""},
		{'n', "N", "Next step", t.cmdNextRound, ""},
		{'w', "W", "Settle with random", t.cmdSettleWithRandom, ""},
		{'t', "T", "Next template", t.cmdNextTemplate, ""},
		{gocui.KeyArrowUp, "↑", "Scroll up", t.scrollCmd(-scrollStep, universe.AxisY), ""},
		{gocui.KeyArrowDown, "↓", "Scroll down", t.scrollCmd(scrollStep, universe.AxisY), ""},
		{gocui.KeyArrowLeft, "←", "Scroll left", t.scrollCmd(-scrollStep, universe.AxisX), ""},
		{gocui.KeyArrowRight, "→", "Scroll right", t.scrollCmd(scrollStep, universe.AxisX), ""},
		{gocui.MouseWheelUp, "WHEEL", "Scroll vertical", t.scrollCmd(-scrollStep, universe.AxisY), "battlefield"},
		{gocui.MouseWheelDown, "", "", t.scrollCmd(scrollStep, universe.AxisY), "battlefield"},
		{gocui.MouseLeft, "LMB", "Spawn a cell", t.cmdSpawn, "battlefield"},
		{gocui.MouseRight, "RMB", "Remove a cell", t.cmdKill, "battlefield"},
	}
	t.g.SetManagerFunc(t.layout)

	t.initKeyBindings(t.k)

	return &t
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			log.Panicln(err)
		}
	}
}

func (t *ConsoleUI) Register(u universe.Universe) {
	t.u = u
}

func (t *ConsoleUI) Start() {
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
	t.g.Close()
}

func (t *ConsoleUI) Refresh() {
	t.renderField()
	t.renderConfiguration()
	t.renderStatus()
}

func (t *ConsoleUI) renderField() {

	t.g.Update(func(g *gocui.Gui) error {
		v, e := g.View("battlefield")
		if e != nil {
			return e
		}
		v.Clear()

		vp := t.u.Viewport()
		maxW, maxH := v.Size()
		crop := vp.Columns > maxW || vp.Rows > maxH

		var b bytes.Buffer

		for row := 0; row < vp.Rows; row++ {
			//discard the data outside the view area
			if row >= maxH {
				break
			}
			//line feed char
			if row != 0 {
				b.WriteByte(10)
			}
			if crop && row == (maxH-1) {
				b.WriteString(aurora.Red("The visible grid is larger than the viewing area").BgBlack().String())
				break
			}
			for col := 0; col < vp.Columns && col < maxW; col++ {
				b.WriteString(t.fillers[t.u.ColorAt(col, row)])
			}
		}
		_, _ = fmt.Fprint(v, b.String())
		return nil
	})
}

func (t *ConsoleUI) renderStatus() {
	s := t.u.Status()
	vp := t.u.Viewport()
	t.g.Update(func(g *gocui.Gui) error {
		if v, e := t.g.View("status"); e == nil {
			v.Clear()
			mode := runningStateDescr[s.RunningMode]
			if s.Paused {
				mode = pausedDescr
			}
			_, _ = fmt.Fprintln(v, t.renderProp("Step", "%v", s.IterationNum))
			_, _ = fmt.Fprintln(v, t.renderProp("Live Cells", "%v", s.LiveCells))
			_, _ = fmt.Fprintln(v, t.renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
			_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", mode))
			_, _ = fmt.Fprintln(v, t.renderProp("Scroll", "%v, %v", vp.ScrollX, vp.ScrollY))
		}
		return nil
	})
}

func (t *ConsoleUI) renderConfiguration() {
	//it needs to call Update when calls from goroutine
	t.g.Update(func(g *gocui.Gui) error {
		c := t.u.Options()
		if v, e := g.View("configuration"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, t.renderProp("Visible grid", "%v x %v", c.Columns, c.Rows))
			_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", c.Interval))
			_, _ = fmt.Fprintln(v, t.renderProp("Workers", "%v", c.Advanced["Workers"]))
			if c.MaxSteps != 0 {
				_, _ = fmt.Fprintln(v, t.renderProp("Iterations", "%v steps", c.MaxSteps))
			}
		}
		return nil
	})
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {

	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("battlefield")
		return nil

	} else {
		if _, err := t.headerLayout(g, 3, "This is \"The Life\" on the unbounded plane"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
		t.renderConfiguration()
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
		t.renderStatus()
	}

	if v, err := g.SetView("battlefield", leftColumnWidth+1, 3, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Battle Field"
		v.Frame = true
	}
	t.renderField()

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		v.Wrap = true
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		first := true
		for _, k := range t.k {
			if k.name == "" {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		if maxX < len(text) {
			panic(fmt.Sprintf("Terminal width is too small: %v", maxX))
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", (maxX-len(text))/2)+text)
	}
	return
}

//windowPoint converts the cursor position of the view to the window position
//one terminal char shows one cell
func (t *ConsoleUI) windowPoint(v *gocui.View) universe.Point {
	cx, cy := v.Cursor()
	cs := t.u.Viewport().CellSize
	return universe.Point{X: cx * cs, Y: cy * cs}
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdNextRound(_ *gocui.View) error {
	t.u.Step()
	return nil
}

func (t *ConsoleUI) cmdTogglePause(_ *gocui.View) error {
	t.u.TogglePause()
	return nil
}

func (t *ConsoleUI) cmdClear(_ *gocui.View) error {
	t.u.Clear()
	return nil
}

func (t *ConsoleUI) cmdSettleWithRandom(_ *gocui.View) error {
	t.u.SettleWithRandomData()
	return nil
}

func (t *ConsoleUI) cmdNextTemplate(_ *gocui.View) error {
	names := t.u.Templates()
	if len(names) == 0 {
		return nil
	}
	t.u.SettleTemplate(names[t.template%len(names)])
	t.template++
	return nil
}

func (t *ConsoleUI) scrollCmd(delta int32, axis universe.Axis) func(v *gocui.View) error {
	return func(_ *gocui.View) error {
		t.u.Scroll(delta, axis)
		return nil
	}
}

func (t *ConsoleUI) cmdSpawn(v *gocui.View) error {
	t.u.SpawnAt(t.windowPoint(v))
	return nil
}

func (t *ConsoleUI) cmdKill(v *gocui.View) error {
	t.u.KillAt(t.windowPoint(v))
	return nil
}
