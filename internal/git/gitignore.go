package git

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// IsRepository checks if the current directory is inside a Git repository
func IsRepository() bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	return cmd.Run() == nil
}

// UpdateGitignore ensures that the given entries are present in .gitignore.
// If the current directory is not a Git repository, it prints a message and
// returns nil. Returns an error if .gitignore cannot be read or written.
func UpdateGitignore(entries []string) error {
	if !IsRepository() {
		fmt.Println("\nNote: Not inside a Git repository. If you initialize one later,")
		fmt.Printf("remember to add the following to your .gitignore: %s\n", strings.Join(entries, ", "))
		return nil
	}

	added, err := appendMissing(".gitignore", entries)
	if err != nil {
		return err
	}

	if len(added) > 0 {
		fmt.Printf("\n✓ Added the following entries to .gitignore: %s\n", strings.Join(added, ", "))
	} else {
		fmt.Println("\n✓ .gitignore already contains the necessary entries.")
	}
	fmt.Println("This prevents committing sensitive credentials and local database files.")

	return nil
}

// appendMissing appends the entries not already present in the file and
// returns the ones it added. A missing file is created; existing content is
// left intact, with a newline inserted first if the file did not end in one.
func appendMissing(path string, entries []string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	existing := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		existing[strings.TrimSpace(line)] = true
	}

	var block strings.Builder
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		block.WriteString("\n")
	}
	var added []string
	for _, entry := range entries {
		if existing[entry] {
			continue
		}
		block.WriteString(entry + "\n")
		added = append(added, entry)
	}
	if len(added) == 0 {
		return nil, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open or create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.WriteString(block.String()); err != nil {
		return nil, fmt.Errorf("failed to write to %s: %w", path, err)
	}
	return added, nil
}
