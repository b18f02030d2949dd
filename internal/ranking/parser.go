package ranking

import (
	"strconv"
	"strings"
)

const trendMarkers = "+-*"

var unitMultipliers = map[byte]float64{
	'B': 1,
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
	'P': 1 << 50,
}

// Parse extracts process rows from ranking utility output, keeping the
// order in which they were emitted. Lines that do not look like a row
// are skipped.
func Parse(output string) []ProcessUsage {
	processes := make([]ProcessUsage, 0)
	for _, line := range strings.Split(output, "\n") {
		if p, ok := ParseRow(line); ok {
			processes = append(processes, p)
		}
	}
	return processes
}

// ParseRow parses a single "<pid> <command...> <amount><unit>[trend]" line
func ParseRow(line string) (ProcessUsage, bool) {
	line = strings.TrimSpace(line)

	pidEnd := leadingDigits(line)
	if pidEnd == 0 || pidEnd == len(line) || !isSpace(line[pidEnd]) {
		return ProcessUsage{}, false
	}

	rest := strings.TrimSpace(line[pidEnd:])
	sep := strings.LastIndexAny(rest, " \t")
	if sep < 0 {
		return ProcessUsage{}, false
	}

	bytes, ok := parseUsage(rest[sep+1:])
	if !ok {
		return ProcessUsage{}, false
	}

	command := trimTrend(strings.TrimSpace(rest[:sep]))
	if command == "" {
		return ProcessUsage{}, false
	}

	// an out of range pid keeps the row with pid 0
	pid, err := strconv.Atoi(line[:pidEnd])
	if err != nil {
		pid = 0
	}

	return ProcessUsage{
		PID:         pid,
		Command:     command,
		MemoryBytes: bytes,
	}, true
}

// parseUsage reads tokens like "512M", "1.5G+" or "976K-"
func parseUsage(token string) (float64, bool) {
	token = strings.TrimRight(token, trendMarkers)
	if len(token) < 2 || !isDigit(token[0]) {
		return 0, false
	}

	multiplier, ok := unitMultipliers[upper(token[len(token)-1])]
	if !ok {
		return 0, false
	}

	digits := strings.Map(func(r rune) rune {
		if r == '.' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, token[:len(token)-1])

	amount, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}

	return amount * multiplier, true
}

// trimTrend drops a trailing, space separated run of trend markers
func trimTrend(command string) string {
	sep := strings.LastIndexAny(command, " \t")
	if sep < 0 {
		return command
	}
	if last := command[sep+1:]; last != "" && strings.Trim(last, trendMarkers) == "" {
		return strings.TrimSpace(command[:sep])
	}
	return command
}

func leadingDigits(s string) int {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
