package install

import (
	"encoding/json"
	"fmt"
	"loracom/internal/global"
	"loracom/internal/node"
	"os"

	"golang.org/x/term"
)

func installConfig() (err error) {
	err = os.MkdirAll(global.DefaultConfigDir, 0755)
	if err != nil {
		err = fmt.Errorf("failed to create configuration directory: %w", err)
		return
	}
	err = os.MkdirAll(global.DefaultStateDir, 0750)
	if err != nil {
		err = fmt.Errorf("failed to create state directory: %w", err)
		return
	}

	// Don't overwrite existing
	_, err = os.Stat(global.DefaultConfigPath)
	if err == nil {
		// No terminal - no overwrite
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Printf("Existing configuration file present, not overwriting\n")
			return
		}

		question := fmt.Sprintf("Configuration file already exists at '%s'. Are you SURE you want to overwrite it? (yes/no): ",
			global.DefaultConfigPath)
		if !confirm(os.Stdin, question) {
			fmt.Printf("Not overwriting configuration file\n")
			return
		}
	}

	err = CreateTemplateConfig(global.DefaultConfigPath)
	if err != nil {
		return
	}

	fmt.Printf("Successfully wrote template configuration file to '%s'\n", global.DefaultConfigPath)
	return
}

func uninstallConfig() (err error) {
	err = os.RemoveAll(global.DefaultConfigDir)
	if err != nil && !os.IsNotExist(err) {
		return
	}
	err = nil

	fmt.Printf("Successfully removed configuration directory '%s'\n", global.DefaultConfigDir)
	return
}

// Writes the node template config, with a fresh link key, to filepath
func CreateTemplateConfig(filepath string) (err error) {
	if filepath == "" {
		err = fmt.Errorf("specify template file path via the --config/-c arguments")
		return
	}

	newCfg := node.TemplateConfig()
	newCfg.Radio.LinkKey, err = GenerateLinkKey()
	if err != nil {
		return
	}

	confBytes, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		err = fmt.Errorf("error marshaling new config: %w", err)
		return
	}
	confBytes = append(confBytes, []byte("\n")...)

	err = os.WriteFile(filepath, confBytes, 0600)
	if err != nil {
		err = fmt.Errorf("failed to write config to file: %w", err)
		return
	}
	return
}
