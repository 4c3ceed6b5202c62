// RFC 5424 severity and facility codes
package syslog

type Severity uint8
type Facility uint8

const (
	Emergency Severity = iota
	Alert
	Critical
	Error
	Warning
	Notice
	Informational
	Debug
)

const (
	Kern   Facility = 0
	User   Facility = 1
	Daemon Facility = 3
	Local0 Facility = 16
	Local7 Facility = 23
)
