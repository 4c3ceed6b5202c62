package server

import (
	"fmt"
	"net/http"
	"time"
)

// Reads starttime/endtime form values.
// Start is RFC3339 or a past relative duration (default last minute), end is RFC3339 or "now".
func parseTimeRange(clientRequest *http.Request, now time.Time) (start, end time.Time, err error) {
	rawStartTime := clientRequest.FormValue("starttime")
	switch {
	case rawStartTime == "":
		start = now.Add(-1 * time.Minute)
	case rawStartTime[0] == '-' || rawStartTime[0] == '+':
		dur, perr := time.ParseDuration(rawStartTime)
		if perr != nil {
			// Unparsable relative start falls back to the default window
			start = now.Add(-1 * time.Minute)
			break
		}
		if dur > 0 {
			err = fmt.Errorf("start time %q is in the future", rawStartTime)
			return
		}
		start = now.Add(dur)
	default:
		start, err = time.Parse(time.RFC3339Nano, rawStartTime)
		if err != nil {
			err = fmt.Errorf("invalid start time: %w", err)
			return
		}
	}

	rawEndTime := clientRequest.FormValue("endtime")
	if rawEndTime == "now" || rawEndTime == "" {
		end = now
	} else {
		end, err = time.Parse(time.RFC3339Nano, rawEndTime)
		if err != nil {
			err = fmt.Errorf("invalid end time: %w", err)
			return
		}
	}

	if end.Before(start) {
		err = fmt.Errorf("end time before start time")
	}
	return
}
