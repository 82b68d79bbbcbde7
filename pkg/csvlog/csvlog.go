// Package csvlog appends temperature samples to one CSV file per calendar
// day. Files are named temp_YYYY_MM_DD.csv and hold lines of the form
//
//	HH:MM:SS, <temp>, <C|F>
//
// Every append opens the file, writes a single line and closes it again.
package csvlog

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

const (
	filePrefix = "temp_"
	fileSuffix = ".csv"
	dayLayout  = "2006_01_02"
	timeLayout = "15:04:05"
)

// FileName returns the log file name for the day containing t.
func FileName(t time.Time) string {
	return filePrefix + t.Format(dayLayout) + fileSuffix
}

// FormatLine renders a sample as a log line, including the trailing newline.
func FormatLine(s temperature.Sample) string {
	return s.Time.Format(timeLayout) + ", " + temperature.FormatTemp(s.Temp) + ", " + s.Unit.String() + "\n"
}

// Logger writes samples into dir.
type Logger struct {
	dir string
}

func New(dir string) *Logger {
	return &Logger{dir: dir}
}

func (l *Logger) Dir() string { return l.dir }

// Path returns the file a sample taken at t is appended to.
func (l *Logger) Path(t time.Time) string {
	return filepath.Join(l.dir, FileName(t))
}

// Append writes one line for s to the file of the sample's day and returns
// the line written.
func (l *Logger) Append(s temperature.Sample) (string, error) {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create log dir %s", l.dir)
	}
	line := FormatLine(s)
	path := l.Path(s.Time)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", path)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return "", errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", path)
	}
	return line, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time time.Time
	Temp float64
	Unit temperature.Unit
}

// ReadFile parses a daily log. The date is taken from the file name; malformed
// lines are skipped.
func ReadFile(path string) ([]Entry, error) {
	day, ok := ParseDay(filepath.Base(path))
	if !ok {
		return nil, errors.Errorf("not a daily log file: %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		e, ok := parseLine(day, sc.Text())
		if ok {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return entries, errors.Wrapf(err, "read %s", path)
	}
	return entries, nil
}

func parseLine(day time.Time, line string) (Entry, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Entry{}, false
	}
	clock, err := time.Parse(timeLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return Entry{}, false
	}
	temp, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Entry{}, false
	}
	unit, err := temperature.ParseUnit(parts[2])
	if err != nil {
		return Entry{}, false
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, time.Local)
	return Entry{Time: at, Temp: temp, Unit: unit}, true
}

// ParseDay extracts the calendar day from a log file name.
func ParseDay(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	d := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	t, err := time.ParseInLocation(dayLayout, d, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ListDays returns the YYYY_MM_DD keys of the logs in dir, newest first.
func ListDays(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	var days []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if t, ok := ParseDay(e.Name()); ok {
			days = append(days, t.Format(dayLayout))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days, nil
}

// DayPath returns the log path for a YYYY_MM_DD key.
func DayPath(dir, day string) string {
	return filepath.Join(dir, filePrefix+day+fileSuffix)
}
