// Handles node installation, removal and template generation
package install

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"loracom/internal/global"
	"os"
	"strings"

	"golang.org/x/term"
)

// Read in installation static files at compile time
//
//go:embed static-files/*
var installationFiles embed.FS

// Full installation (idempotent)
func Run() {
	// Must run as root
	if os.Geteuid() != 0 {
		fmt.Fprintf(os.Stderr, "Installation must be run as root\n")
		os.Exit(1)
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"installing binary", installBinary},
		{"setting bash autocomplete", installBashAutocomplete},
		{"with template config", installConfig},
		{"with AppArmor profile", installAAProfile},
		{"with Systemd service", installService},
	}
	for _, step := range steps {
		err := step.run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error %s: %v\n", step.name, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Installation completed successfully\n")
}

// Full uninstall
func Remove() {
	// Only ask if in terminal
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if !confirm(os.Stdin, "Are you SURE you want to uninstall? (this will remove the configuration and history) (yes/no): ") {
			fmt.Printf("Aborting uninstall\n")
			return
		}
	}

	// Must run as root
	if os.Geteuid() != 0 {
		fmt.Fprintf(os.Stderr, "Uninstall must be run as root\n")
		os.Exit(1)
	}

	// Best effort, keep going on errors
	steps := []struct {
		name string
		run  func() error
	}{
		{"with AppArmor profile", uninstallAAProfile},
		{"with Systemd service", uninstallService},
		{"removing binary", uninstallBinary},
		{"removing bash autocomplete", uninstallBashAutocomplete},
		{"with template config", uninstallConfig},
	}
	for _, step := range steps {
		err := step.run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error %s: %v\n", step.name, err)
		}
	}

	// Cleanup state dir - best effort
	os.Remove(global.DefaultHistoryPath)
	os.Remove(global.DefaultHistoryPath + "-wal")
	os.Remove(global.DefaultHistoryPath + "-shm")
	os.Remove(global.DefaultStateDir)
}

// Prints question and reads a yes/no answer
func confirm(input io.Reader, question string) (yes bool) {
	fmt.Print(question)
	reader := bufio.NewReader(input)
	answer, _ := reader.ReadString('\n')
	yes = strings.ToLower(strings.TrimSpace(answer)) == "yes"
	return
}
