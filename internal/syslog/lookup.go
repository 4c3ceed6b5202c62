package syslog

import (
	"fmt"
	"strconv"
	"strings"
)

var severityNames = [...]string{"emerg", "alert", "crit", "err", "warning", "notice", "info", "debug"}

var facilityNames = map[Facility]string{
	0: "kern", 1: "user", 2: "mail", 3: "daemon", 4: "auth", 5: "syslog", 6: "lpr", 7: "news",
	8: "uucp", 9: "cron", 10: "authpriv", 11: "ftp",
	16: "local0", 17: "local1", 18: "local2", 19: "local3",
	20: "local4", 21: "local5", 22: "local6", 23: "local7",
}

func (severity Severity) String() string {
	if int(severity) < len(severityNames) {
		return severityNames[severity]
	}
	return "severity(" + strconv.Itoa(int(severity)) + ")"
}

func (facility Facility) String() string {
	name, ok := facilityNames[facility]
	if ok {
		return name
	}
	return "facility(" + strconv.Itoa(int(facility)) + ")"
}

// Convert severity name to its code
func ParseSeverity(name string) (severity Severity, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for code, known := range severityNames {
		if known == name {
			severity = Severity(code)
			return
		}
	}
	err = fmt.Errorf("unknown severity name: %s", name)
	return
}

// Convert facility name to its code
func ParseFacility(name string) (facility Facility, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for code, known := range facilityNames {
		if known == name {
			facility = code
			return
		}
	}
	err = fmt.Errorf("unknown facility name: %s", name)
	return
}

// PRI value of a syslog header
func Priority(facility Facility, severity Severity) (pri int) {
	pri = int(facility)*8 + int(severity)
	return
}
