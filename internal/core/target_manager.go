package core

import (
	"bufio"
	"os"
	"strings"

	"github.com/aleister1102/pagecheck/internal/common/errorwrapper"
)

// TargetManager handles loading audit targets for batch runs.
type TargetManager struct{}

// NewTargetManager creates a new TargetManager.
func NewTargetManager() *TargetManager {
	return &TargetManager{}
}

// LoadTargetsFromFile reads one URL per line. Blank lines and lines starting with '#' are
// skipped; everything else is returned as written and validated by the auditor.
func (tm *TargetManager) LoadTargetsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to open targets file")
	}
	defer file.Close()

	var targets []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read targets file")
	}
	return targets, nil
}
