package hopper

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// fieldLineLimit bounds how far into the document the bold metadata fields
// are recognized (spec.md §6: "fields recognized from the first 20 lines").
const fieldLineLimit = 20

var (
	priorityRe = regexp.MustCompile(`(?i)^\*\*Priority:\*\*\s*(\S+)`)
	complexRe  = regexp.MustCompile(`(?i)^\*\*Complexity:\*\*\s*(\S+)`)
	tagsRe     = regexp.MustCompile(`(?i)^\*\*Tags:\*\*\s*(.+)$`)
	phaseRe    = regexp.MustCompile(`(?i)^\*\*Suggested Phase:\*\*\s*(\S+)`)
	estimateRe = regexp.MustCompile(`(?i)^\*\*Estimate:\*\*\s*(.+)$`)
	titleRe    = regexp.MustCompile(`^#\s+(.+)$`)
)

// ParseFile reads a hopper item's bold-field metadata (spec.md §6) plus a
// title (the first `# ` heading, if any) and the rest of the document as an
// opaque body. Like nebula's own phase-file parsing, this splits a
// structured header from free-form prose, though the header here is
// scanned line-by-line rather than delimited.
func ParseFile(path string) (*Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hopper: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("hopper: stat %s: %w", path, err)
	}

	item := &Item{Path: path, ModTime: info.ModTime()}
	var bodyLines []string
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if lineNum <= fieldLineLimit {
			if m := priorityRe.FindStringSubmatch(line); m != nil {
				item.Priority = Priority(m[1])
				continue
			}
			if m := complexRe.FindStringSubmatch(line); m != nil {
				item.Complexity = Complexity(m[1])
				continue
			}
			if m := tagsRe.FindStringSubmatch(line); m != nil {
				for _, tag := range strings.Split(m[1], ",") {
					tag = strings.TrimSpace(tag)
					if tag != "" {
						item.Tags = append(item.Tags, tag)
					}
				}
				continue
			}
			if m := phaseRe.FindStringSubmatch(line); m != nil {
				item.SuggestedPhase = m[1]
				continue
			}
			if m := estimateRe.FindStringSubmatch(line); m != nil {
				item.Estimate = strings.TrimSpace(m[1])
				continue
			}
			if item.Title == "" {
				if m := titleRe.FindStringSubmatch(line); m != nil {
					item.Title = strings.TrimSpace(m[1])
					continue
				}
			}
		}
		bodyLines = append(bodyLines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("hopper: scan %s: %w", path, err)
	}
	item.Body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	if item.Title == "" {
		item.Title = strings.TrimSuffix(baseName(path), ".md")
	}
	return item, nil
}

func baseName(path string) string {
	i := strings.LastIndexAny(path, "/\\")
	if i < 0 {
		return path
	}
	return path[i+1:]
}
