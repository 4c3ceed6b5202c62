package install

import (
	"fmt"
	"loracom/internal/global"
	"os"
	"os/exec"
	"strings"
)

const (
	appArmorProfilePath string = "/etc/apparmor.d/" + global.DefaultAAProfName
	systemAAPath        string = "/sys/kernel/security/apparmor/profiles"
)

// Profile with install paths substituted
func renderAAProfile() (profile []byte, err error) {
	template, err := installationFiles.ReadFile("static-files/" + global.DefaultAAProfName)
	if err != nil {
		err = fmt.Errorf("unable to retrieve apparmor profile from embedded filesystem: %w", err)
		return
	}

	replacer := strings.NewReplacer(
		"=$executableFilePath", "="+global.DefaultBinaryPath,
		"=$configurationDirPath", "="+global.DefaultConfigDir,
		"=$progStateDirPath", "="+global.DefaultStateDir,
	)
	profile = []byte(replacer.Replace(string(template)))
	return
}

// If apparmor LSM is available on this system, install and load the profile
func installAAProfile() (err error) {
	profile, err := renderAAProfile()
	if err != nil {
		return
	}

	_, err = os.Stat(systemAAPath)
	if os.IsNotExist(err) {
		fmt.Printf("AppArmor not supported by this system\n")
		err = nil
		return
	} else if err != nil {
		err = fmt.Errorf("unable to check if AppArmor is supported by this system: %w", err)
		return
	}

	err = os.WriteFile(appArmorProfilePath, profile, 0644)
	if err != nil {
		err = fmt.Errorf("failed to write apparmor profile: %w", err)
		return
	}

	output, err := exec.Command("apparmor_parser", "-r", appArmorProfilePath).CombinedOutput()
	if err != nil {
		err = fmt.Errorf("failed to reload apparmor profile: %w: %s", err, string(output))
		return
	}

	fmt.Printf("Successfully installed AppArmor Profile\n")
	return
}

func uninstallAAProfile() (err error) {
	_, err = os.Stat(systemAAPath)
	if os.IsNotExist(err) {
		err = nil
		return
	} else if err != nil {
		err = fmt.Errorf("unable to check if AppArmor is supported by this system: %w", err)
		return
	}

	// Warn about confined apparmor profile for uninstall
	if strings.Contains(os.Args[0], global.DefaultBinaryPath) {
		fmt.Printf("WARNING: uninstall will fail if calling this binary from within the apparmor profile\n")
		fmt.Printf("  Run this command and retry the uninstall: 'apparmor_parser -R %s'\n", appArmorProfilePath)
	}

	output, err := exec.Command("apparmor_parser", "-R", appArmorProfilePath).CombinedOutput()
	if err != nil {
		if !strings.Contains(string(output), "not found, skipping") {
			err = fmt.Errorf("failed to disable apparmor profile: %w: %s", err, string(output))
			return
		}
		err = nil
	}

	err = os.Remove(appArmorProfilePath)
	if err != nil && !os.IsNotExist(err) {
		err = fmt.Errorf("failed to remove apparmor profile: %w", err)
		return
	}
	err = nil

	fmt.Printf("Successfully uninstalled AppArmor Profile\n")
	return
}
