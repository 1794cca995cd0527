package rugpull

// Pump/dump phase thresholds, in percent per bar
const (
	pumpTriggerPct    = 10.0
	pumpContinuePct   = 5.0
	dumpTriggerPct    = -10.0
	dumpContinuePct   = -5.0
	pumpDumpCumPump   = 50.0
	pumpDumpCumDump   = -30.0
)

// pumpDumpResult summarizes pump and dump phases found in a change series
type pumpDumpResult struct {
	maxCumPump float64 // largest cumulative pump across phases, percent
	minCumDump float64 // most negative cumulative dump, percent
	cycleFired bool    // a >50% pump immediately answered by a <-30% dump
	inDump     bool    // series currently ends inside a dump phase
}

// scanPumpDump runs the phase state machine over bar-to-bar changes. A pump
// phase opens on a >10% bar and extends while bars stay above 5%; a dump
// phase opens on a <-10% bar and extends while bars stay below -5%. The
// cycle flag fires when a dump deeper than -30% follows a pump beyond +50%.
func scanPumpDump(changes []float64) pumpDumpResult {
	var res pumpDumpResult

	const (
		idle = iota
		pumping
		dumping
	)

	state := idle
	var cumPump, cumDump, lastPump float64

	closePump := func() {
		if cumPump > res.maxCumPump {
			res.maxCumPump = cumPump
		}
		lastPump = cumPump
		cumPump = 0
	}
	closeDump := func() {
		if cumDump < res.minCumDump {
			res.minCumDump = cumDump
		}
		if lastPump > pumpDumpCumPump && cumDump < pumpDumpCumDump {
			res.cycleFired = true
		}
		cumDump = 0
	}

	for _, change := range changes {
		switch state {
		case idle:
			if change > pumpTriggerPct {
				state = pumping
				cumPump = change
			} else if change < dumpTriggerPct {
				state = dumping
				cumDump = change
			} else {
				lastPump = 0
			}
		case pumping:
			if change > pumpContinuePct {
				cumPump += change
			} else if change < dumpTriggerPct {
				closePump()
				state = dumping
				cumDump = change
			} else {
				closePump()
				state = idle
			}
		case dumping:
			if change < dumpContinuePct {
				cumDump += change
			} else {
				closeDump()
				lastPump = 0
				if change > pumpTriggerPct {
					state = pumping
					cumPump = change
				} else {
					state = idle
				}
			}
		}
	}

	switch state {
	case pumping:
		closePump()
	case dumping:
		res.inDump = true
		closeDump()
	}

	return res
}
