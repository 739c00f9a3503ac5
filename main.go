package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/sqweek/dialog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"famicore/apu"
	"famicore/bus"
	"famicore/cartridge"
	"famicore/controller"
	"famicore/cpu"
	"famicore/ppu"
)

var controllerKeys = map[ebiten.Key]int{
	ebiten.KeyX:     controller.ButtonA,
	ebiten.KeyZ:     controller.ButtonB,
	ebiten.KeyA:     controller.ButtonSelect,
	ebiten.KeyS:     controller.ButtonStart,
	ebiten.KeyUp:    controller.ButtonUp,
	ebiten.KeyDown:  controller.ButtonDown,
	ebiten.KeyLeft:  controller.ButtonLeft,
	ebiten.KeyRight: controller.ButtonRight,
}

// soundStream adapts the audio unit's sample buffer to ebiten's pull-based
// player.
type soundStream struct {
	apu *apu.APU
}

func (s *soundStream) Read(p []byte) (int, error) {
	return s.apu.ReadSamples(p)
}

type Game struct {
	nes  *bus.Bus
	cpu  *cpu.CPU
	ppu  *ppu.PPU
	pad1 *controller.Controller

	scale       int
	running     bool
	showDebug   bool
	mapAsm      map[uint16]cpu.Disassembly
	defaultFont font.Face
	gameScreen  *ebiten.Image
}

func (g *Game) Update() error {
	var buttons [8]bool
	for _, key := range inpututil.AppendPressedKeys(nil) {
		if idx, ok := controllerKeys[key]; ok {
			buttons[idx] = true
		}
	}
	g.pad1.SetButtons(buttons)

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.running = !g.running
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showDebug = !g.showDebug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.nes.Reset()
		g.cpu.Reset()
	}

	if !g.running {
		return nil
	}

	// One video frame per update: step instructions and fan their cycle
	// cost out to the rest of the machine until the picture generator
	// hands over a finished frame.
	for {
		cycles, err := g.cpu.Step()
		if err != nil {
			return fmt.Errorf("execution stopped: %w", err)
		}
		g.nes.Tick(cycles)
		if g.nes.FrameReady() {
			break
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.gameScreen.WritePixels(g.ppu.Frame().Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.gameScreen, op)

	if g.showDebug {
		g.drawCPUState(screen, 8, 20)
		g.drawCode(screen, 8, 180, 10)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.FrameWidth * g.scale, ppu.FrameHeight * g.scale
}

func numToHex(n int, d int) string {
	format := "%0" + strconv.Itoa(d) + "X"
	return fmt.Sprintf(format, n)
}

var (
	white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	green = color.RGBA{G: 0xFF, A: 0xFF}
	red   = color.RGBA{R: 0xFF, A: 0xFF}
	cyan  = color.RGBA{G: 0xFF, B: 0xFF, A: 0xFF}
)

func (g *Game) getDefaultFont() font.Face {
	if g.defaultFont != nil {
		return g.defaultFont
	}
	tt, err := opentype.Parse(fonts.MPlus1pRegular_ttf)
	if err != nil {
		log.Fatal(err)
	}
	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    8,
		DPI:     144,
		Hinting: font.HintingNone,
	})
	if err != nil {
		log.Fatal(err)
	}
	g.defaultFont = face
	return g.defaultFont
}

func (g *Game) drawString(screen *ebiten.Image, x, y int, str string, clr color.RGBA) {
	text.Draw(screen, str, g.getDefaultFont(), x, y, clr)
}

func (g *Game) drawCPUState(screen *ebiten.Image, x, y int) {
	g.drawString(screen, x, y, "STATUS:", white)
	flags := []struct {
		name string
		flag cpu.CPUFlag
	}{
		{"N", cpu.N}, {"V", cpu.V}, {"U", cpu.U}, {"B", cpu.B},
		{"D", cpu.D}, {"I", cpu.I}, {"Z", cpu.Z}, {"C", cpu.C},
	}
	for i, f := range flags {
		clr := red
		if g.cpu.Flag(f.flag) {
			clr = green
		}
		g.drawString(screen, x+70+i*12, y, f.name, clr)
	}

	lineSize := 20
	g.drawString(screen, x, y+lineSize, fmt.Sprintf("PC: $%s", numToHex(int(g.cpu.PC()), 4)), white)
	g.drawString(screen, x, y+lineSize*2, fmt.Sprintf("A: $%s  X: $%s  Y: $%s",
		numToHex(int(g.cpu.A()), 2), numToHex(int(g.cpu.X()), 2), numToHex(int(g.cpu.Y()), 2)), white)
	g.drawString(screen, x, y+lineSize*3, fmt.Sprintf("SP: $%s", numToHex(int(g.cpu.SP()), 2)), white)
	g.drawString(screen, x, y+lineSize*4, fmt.Sprintf("Dot: %d  Scanline: %d", g.ppu.Cycle(), g.ppu.Scanline()), white)
}

// drawCode lists the disassembly around the program counter, current
// instruction highlighted.
func (g *Game) drawCode(screen *ebiten.Image, x, y, nLines int) {
	line, ok := g.mapAsm[g.cpu.PC()]
	if !ok {
		return
	}
	lineSize := 20
	lineY := y + (nLines>>1)*lineSize

	g.drawString(screen, x, lineY, line.Instruction, cyan)
	next := line
	for dy := lineY + lineSize; dy < y+nLines*lineSize; dy += lineSize {
		next, ok = g.mapAsm[next.NextAddr]
		if !ok {
			break
		}
		g.drawString(screen, x, dy, next.Instruction, white)
	}

	prev := line
	for dy := lineY - lineSize; dy > y; dy -= lineSize {
		prev, ok = g.mapAsm[prev.PreviousAddr]
		if !ok {
			break
		}
		g.drawString(screen, x, dy, prev.Instruction, white)
	}
}

func main() {
	romPath := flag.String("rom", "", "path to an iNES ROM image")
	scale := flag.Int("scale", 3, "window scale factor")
	mute := flag.Bool("mute", false, "disable audio output")
	flag.Parse()

	path := *romPath
	if path == "" {
		chosen, err := dialog.File().Filter("ROM image", "nes").Load()
		if err != nil {
			log.Fatalf("no ROM selected: %v", err)
		}
		path = chosen
	}

	cart, err := cartridge.Load(path)
	if err != nil {
		log.Fatalf("loading %s: %v", path, err)
	}

	soundChip := apu.New()
	picture := ppu.New()
	pad1 := controller.New()
	console := bus.New(cart, picture, soundChip, pad1, controller.New())
	processor := cpu.New(console)

	console.Reset()
	processor.Reset()

	if !*mute {
		audioContext := audio.NewContext(apu.SampleRate)
		player, err := audioContext.NewPlayer(&soundStream{apu: soundChip})
		if err != nil {
			log.Printf("audio disabled: %v", err)
		} else {
			player.Play()
		}
	}

	game := &Game{
		nes:        console,
		cpu:        processor,
		ppu:        picture,
		pad1:       pad1,
		scale:      *scale,
		running:    true,
		mapAsm:     processor.Disassemble(0x8000, 0xFFFF),
		gameScreen: ebiten.NewImage(ppu.FrameWidth, ppu.FrameHeight),
	}

	ebiten.SetWindowSize(ppu.FrameWidth*(*scale), ppu.FrameHeight*(*scale))
	ebiten.SetWindowTitle("famicore")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
