package install

import (
	"fmt"
	"loracom/internal/global"
	"os"
	"path/filepath"
)

const sysAutocompleteDir string = "/usr/share/bash-completion/completions"

// System completion dir when present, users home otherwise
func autocompletePath() (path string, system bool, err error) {
	_, err = os.Stat(sysAutocompleteDir)
	if err == nil {
		path = filepath.Join(sysAutocompleteDir, global.ProgBaseName)
		system = true
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		err = fmt.Errorf("failed to find user home directory: %w", err)
		return
	}
	path = filepath.Join(homeDir, ".bash_completion.d", global.ProgBaseName)
	return
}

func installBashAutocomplete() (err error) {
	autoCompleteFunc, err := installationFiles.ReadFile("static-files/autocomplete.sh")
	if err != nil {
		err = fmt.Errorf("unable to retrieve autocomplete file from embedded filesystem: %w", err)
		return
	}

	path, system, err := autocompletePath()
	if err != nil {
		return
	}
	if !system {
		err = os.MkdirAll(filepath.Dir(path), 0750)
		if err != nil {
			err = fmt.Errorf("failed to create user autocomplete dir: %w", err)
			return
		}
		fmt.Printf("System completion dir missing, installing bash completion at %s\n", path)
		fmt.Printf("Make sure ~/.bashrc sources ~/.bash_completion and ~/.bash_completion.d/*\n")
	}

	err = os.WriteFile(path, autoCompleteFunc, 0644)
	if err != nil {
		err = fmt.Errorf("failed to write autocompletion file: %w", err)
		return
	}
	return
}

func uninstallBashAutocomplete() (err error) {
	path, _, err := autocompletePath()
	if err != nil {
		return
	}

	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		err = fmt.Errorf("failed to remove autocompletion file: %w", err)
		return
	}
	err = nil

	fmt.Printf("Successfully removed shell autocompletion\n")
	return
}
