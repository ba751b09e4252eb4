// Package logview prints the JSON log files written by internal/log in a compact form.
package logview

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"
)

const timeLayout = "06-01-02 15:04:05.000000"

// Entry is one decoded log line.
type Entry map[string]interface{}

var (
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	fieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

var levelStyles = map[string]lipgloss.Style{
	"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
}

// Viewer tails every *.log file of a directory.
type Viewer struct {
	dir       string
	filter    string
	w         io.Writer
	useColor  bool
	positions map[string]int64
}

// NewViewer creates a Viewer printing entries that contain filter, case-insensitively.
func NewViewer(dir, filter string, w io.Writer, useColor bool) *Viewer {
	return &Viewer{
		dir:       dir,
		filter:    strings.ToLower(filter),
		w:         w,
		useColor:  useColor,
		positions: make(map[string]int64),
	}
}

// Scan prints the entries appended to each log file since the previous Scan. A file
// that shrank is read again from the start.
func (v *Viewer) Scan() error {
	files, err := filepath.Glob(filepath.Join(v.dir, "*.log"))
	if err != nil {
		return fmt.Errorf("failed to list log files: %w", err)
	}
	sort.Strings(files)
	for _, path := range files {
		if err := v.scanFile(path); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewer) scanFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", filepath.Base(path), err)
	}
	pos := v.positions[path]
	if stat.Size() < pos {
		fmt.Fprintln(v.w, v.style(filepath.Base(path)+" has been truncated, starting from beginning", noteStyle))
		pos = 0
	}
	if _, err := file.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek in %s: %w", filepath.Base(path), err)
	}

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			// a partial last line is read again once it is complete
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		}
		pos += int64(len(line))

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		formatted := FormatEntry(entry, v.useColor)
		if v.filter == "" || strings.Contains(strings.ToLower(FormatEntry(entry, false)), v.filter) {
			fmt.Fprintln(v.w, formatted)
		}
	}
	v.positions[path] = pos
	return nil
}

// Follow prints existing entries, then new ones as the files change, until ctx is done.
func (v *Viewer) Follow(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(v.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", v.dir, err)
	}
	if err := v.Scan(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Ext(ev.Name) != ".log" {
				continue
			}
			if err := v.scanFile(ev.Name); err != nil {
				fmt.Fprintln(v.w, v.style(err.Error(), noteStyle))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(v.w, v.style("watch error: "+err.Error(), noteStyle))
		}
	}
}

func (v *Viewer) style(s string, st lipgloss.Style) string {
	if !v.useColor {
		return s
	}
	return st.Render(s)
}

// FormatEntry renders "time LEVEL msg" followed by one indented line per other field,
// in key order.
func FormatEntry(entry Entry, useColor bool) string {
	render := func(s string, st lipgloss.Style) string {
		if !useColor {
			return s
		}
		return st.Render(s)
	}

	timestamp, _ := entry["time"].(string)
	level, _ := entry["level"].(string)
	msg, _ := entry["msg"].(string)
	level = strings.ToUpper(level)

	if t, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
		timestamp = t.Format(timeLayout)
	}
	levelStyle, ok := levelStyles[level]
	if !ok {
		levelStyle = lipgloss.NewStyle()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", render(timestamp, timeStyle), render(fmt.Sprintf("%-5s", level), levelStyle), msg)

	keys := make([]string, 0, len(entry))
	for k := range entry {
		if k != "time" && k != "level" && k != "msg" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n    %s %v", render(k+":", fieldStyle), entry[k])
	}
	return b.String()
}
