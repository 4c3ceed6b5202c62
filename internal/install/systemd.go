package install

import (
	"fmt"
	"loracom/internal/global"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Unit file with install paths substituted
func renderUnit() (unit []byte, err error) {
	template, err := installationFiles.ReadFile("static-files/loracom.service")
	if err != nil {
		err = fmt.Errorf("unable to retrieve unit file from embedded filesystem: %w", err)
		return
	}

	replacer := strings.NewReplacer(
		"$executableFilePath", global.DefaultBinaryPath,
		"$configFilePath", global.DefaultConfigPath,
		"$stateDirPath", global.DefaultStateDir,
	)
	unit = []byte(replacer.Replace(string(template)))
	return
}

// Runs systemctl, returning trimmed combined output
func systemctl(args ...string) (output string, err error) {
	raw, err := exec.Command("systemctl", args...).CombinedOutput()
	output = strings.TrimSpace(string(raw))
	if err != nil {
		err = fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, output)
	}
	return
}

func installService() (err error) {
	unitName := filepath.Base(global.DefaultUnitPath)

	unit, err := renderUnit()
	if err != nil {
		return
	}
	err = os.WriteFile(global.DefaultUnitPath, unit, 0644)
	if err != nil {
		return
	}

	_, err = systemctl("daemon-reload")
	if err != nil {
		return
	}

	// Disabled status is exit code 1
	status, err := systemctl("is-enabled", unitName)
	if err != nil && !strings.Contains(status, "disabled") {
		return
	}
	err = nil

	if strings.ToLower(status) != "enabled" {
		_, err = systemctl("enable", unitName)
		if err != nil {
			return
		}
	}

	fmt.Printf("Successfully installed Systemd service\n")
	fmt.Printf("  IMPORTANT: set the device id and radio in '%s' and start the service with 'systemctl start %s'\n",
		global.DefaultConfigPath, unitName)
	return
}

func uninstallService() (err error) {
	unitName := filepath.Base(global.DefaultUnitPath)

	// Disabled/not-found status is exit code != 0
	status, err := systemctl("is-enabled", unitName)
	if err != nil && !strings.Contains(status, "not-found") && !strings.Contains(status, "disabled") {
		return
	}
	err = nil

	if strings.ToLower(status) == "enabled" {
		_, err = systemctl("disable", unitName)
		if err != nil {
			return
		}
	}

	state, err := systemctl("show", unitName, "--property=ActiveState")
	if err != nil && !strings.Contains(state, "could not be found") {
		return
	}
	err = nil

	if strings.Contains(state, "active") && !strings.Contains(state, "inactive") {
		_, err = systemctl("stop", unitName)
		if err != nil {
			return
		}
	}

	err = os.Remove(global.DefaultUnitPath)
	if err != nil && !os.IsNotExist(err) {
		return
	}

	_, err = systemctl("daemon-reload")
	if err != nil {
		return
	}

	fmt.Printf("Successfully uninstalled systemd service\n")
	return
}
