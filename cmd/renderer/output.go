package main

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"glint/objectio"
	"glint/rgbimage"

	"github.com/golang/glog"
	"golang.org/x/term"
)

type encoder struct {
	contentType string
	encode      func(*rgbimage.RGBImage, io.Writer) error
}

var encoders = map[string]encoder{
	".png":  {contentType: "image/png", encode: rgbimage.WritePNG},
	".rgbf": {contentType: "application/octet-stream", encode: rgbimage.WriteRGBImage},
}

func encoderFor(loc objectio.Location) (encoder, error) {
	name := loc.Path
	if loc.IsRemote() {
		name = loc.Object
	}

	ext := strings.ToLower(path.Ext(name))
	enc, ok := encoders[ext]
	if !ok {
		return encoder{}, fmt.Errorf("unknown output format %q for %s; want .png or .rgbf", ext, loc)
	}
	return enc, nil
}

// progressReporter draws a progress bar when w is a terminal, and logs at
// V(1) otherwise.
type progressReporter struct {
	w        io.Writer
	terminal bool
	width    int
	lastPct  int
}

func newProgressReporter(f *os.File) *progressReporter {
	p := &progressReporter{w: f, lastPct: -1}
	if fd := int(f.Fd()); term.IsTerminal(fd) {
		p.terminal = true
		if cols, _, err := term.GetSize(fd); err == nil {
			p.width = cols
		}
	}
	return p
}

func (p *progressReporter) Report(done, total int) {
	if total == 0 {
		return
	}
	pct := 100 * done / total
	if pct == p.lastPct {
		return
	}
	p.lastPct = pct

	if p.terminal {
		fmt.Fprintf(p.w, "\r%s", progressLine(done, total, p.width))
		return
	}
	if glog.V(1) {
		glog.Infof("Rendered %d/%d rows", done, total)
	}
}

func (p *progressReporter) Finish() {
	if p.terminal && p.lastPct >= 0 {
		fmt.Fprintf(p.w, "\n")
	}
}

// progressLine renders "[####    ] 12/34 35%", fitted to width columns.  The
// bar is dropped when width is too small to hold it.
func progressLine(done, total, width int) string {
	counts := fmt.Sprintf("%d/%d %d%%", done, total, 100*done/total)

	barWidth := width - len(counts) - 3
	if barWidth > 50 {
		barWidth = 50
	}
	if barWidth < 10 {
		return counts
	}

	filled := barWidth * done / total
	return "[" + strings.Repeat("#", filled) + strings.Repeat(" ", barWidth-filled) + "] " + counts
}
